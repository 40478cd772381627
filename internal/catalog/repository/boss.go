package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	catalogerrors "raidledger/internal/catalog/errors"
	"raidledger/pkg/config"
	"raidledger/pkg/model"
)

const (
	BossCollectionName = "Bosses"
)

type mongoBossRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type BossRepository interface {
	FindByID(ctx context.Context, id string) (*model.Boss, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Boss, error)
}

func NewMongoBossRepository(cfg *config.Config) BossRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBossRepository{
		cfg:        cfg,
		collection: db.Collection(BossCollectionName),
	}
}

func (r *mongoBossRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBossRepository) FindByID(ctx context.Context, id string) (*model.Boss, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var boss model.Boss
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&boss)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrBossNotFound
		}
		return nil, fmt.Errorf("failed to find boss: %w", err)
	}

	return &boss, nil
}

func (r *mongoBossRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Boss, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, objectID)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find bosses: %w", err)
	}
	defer cursor.Close(ctx)

	var bosses []*model.Boss
	if err = cursor.All(ctx, &bosses); err != nil {
		return nil, fmt.Errorf("failed to decode bosses: %w", err)
	}

	byID := make(map[string]*model.Boss, len(bosses))
	for _, boss := range bosses {
		byID[boss.ID] = boss
	}
	return byID, nil
}
