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
	PeriodCollectionName = "Periods"
)

type mongoPeriodRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type PeriodRepository interface {
	FindActive(ctx context.Context, now time.Time) (*model.Period, error)
}

func NewMongoPeriodRepository(cfg *config.Config) PeriodRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPeriodRepository{
		cfg:        cfg,
		collection: db.Collection(PeriodCollectionName),
	}
}

func (r *mongoPeriodRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPeriodRepository) FindActive(ctx context.Context, now time.Time) (*model.Period, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date_from": bson.M{"$lte": now},
		"date_to":   bson.M{"$gt": now},
	}

	var period model.Period
	err := r.collection.FindOne(ctx, filter).Decode(&period)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNoActivePeriod
		}
		return nil, fmt.Errorf("failed to find active period: %w", err)
	}

	return &period, nil
}
