package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	battleerrors "raidledger/internal/battle/errors"
	"raidledger/pkg/config"
	mongotx "raidledger/pkg/db/mongo"
	"raidledger/pkg/model"
)

const (
	EncounterCollectionName = "Encounters"
)

type mongoEncounterRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type EncounterRepository interface {
	Insert(ctx context.Context, encounter *model.Encounter) error
	FindByID(ctx context.Context, id string) (*model.Encounter, error)
	FindLatestByCorrelationKey(ctx context.Context, teamID string, correlationKey string) (*model.Encounter, error)
	FindLatestByBoss(ctx context.Context, teamID string, periodID string, bossID string) (*model.Encounter, error)
	ApplyDamage(ctx context.Context, id string, damage int64) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoEncounterRepository(cfg *config.Config) EncounterRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEncounterRepository{
		cfg:        cfg,
		collection: db.Collection(EncounterCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoEncounterRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoEncounterRepository) Insert(ctx context.Context, encounter *model.Encounter) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	encounter.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, encounter)
	if err != nil {
		return fmt.Errorf("failed to insert encounter: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		encounter.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEncounterRepository) FindByID(ctx context.Context, id string) (*model.Encounter, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", battleerrors.ErrInvalidID, id)
	}

	var encounter model.Encounter
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&encounter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, battleerrors.ErrEncounterNotFound
		}
		return nil, fmt.Errorf("failed to find encounter: %w", err)
	}

	return &encounter, nil
}

// FindLatestByCorrelationKey returns the newest encounter bound to the
// correlation key. Keys are reused across rounds in the original data, so
// the latest row is the live one.
func (r *mongoEncounterRepository) FindLatestByCorrelationKey(ctx context.Context, teamID string, correlationKey string) (*model.Encounter, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"team_id":         teamID,
		"correlation_key": correlationKey,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})

	var encounter model.Encounter
	err := r.collection.FindOne(ctx, filter, opts).Decode(&encounter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, battleerrors.ErrEncounterNotFound
		}
		return nil, fmt.Errorf("failed to find encounter by correlation key: %w", err)
	}

	return &encounter, nil
}

// FindLatestByBoss returns the highest-round encounter for a boss within
// a period.
func (r *mongoEncounterRepository) FindLatestByBoss(ctx context.Context, teamID string, periodID string, bossID string) (*model.Encounter, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"team_id":   teamID,
		"period_id": periodID,
		"boss_id":   bossID,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "round", Value: -1}, {Key: "_id", Value: -1}})

	var encounter model.Encounter
	err := r.collection.FindOne(ctx, filter, opts).Decode(&encounter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, battleerrors.ErrEncounterNotFound
		}
		return nil, fmt.Errorf("failed to find encounter by boss: %w", err)
	}

	return &encounter, nil
}

// ApplyDamage subtracts damage from current_health with a server-side
// saturating floor at zero. The pipeline update makes concurrent
// settlements order-independent; there is no read-modify-write window.
func (r *mongoEncounterRepository) ApplyDamage(ctx context.Context, id string, damage int64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", battleerrors.ErrInvalidID, id)
	}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"current_health": bson.M{
				"$max": bson.A{0, bson.M{"$subtract": bson.A{"$current_health", damage}}},
			},
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to apply damage: %w", err)
	}

	if result.MatchedCount == 0 {
		return battleerrors.ErrEncounterNotFound
	}

	return nil
}

func (r *mongoEncounterRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
