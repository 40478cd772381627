package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	catalogerrors "raidledger/internal/catalog/errors"
	"raidledger/pkg/config"
	"raidledger/pkg/model"
)

const (
	BossHealthCollectionName = "BossHealth"
)

type mongoHealthRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type HealthRepository interface {
	FindByPositionAndRound(ctx context.Context, position int, round int) (*model.BossHealth, error)
}

func NewMongoHealthRepository(cfg *config.Config) HealthRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHealthRepository{
		cfg:        cfg,
		collection: db.Collection(BossHealthCollectionName),
	}
}

func (r *mongoHealthRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoHealthRepository) FindByPositionAndRound(ctx context.Context, position int, round int) (*model.BossHealth, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"position":   position,
		"round_from": bson.M{"$lte": round},
		"round_to":   bson.M{"$gte": round},
	}

	var health model.BossHealth
	err := r.collection.FindOne(ctx, filter).Decode(&health)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: position %d round %d", catalogerrors.ErrHealthTableGap, position, round)
		}
		return nil, fmt.Errorf("failed to find boss health: %w", err)
	}

	return &health, nil
}
