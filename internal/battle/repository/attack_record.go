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
	"raidledger/pkg/model"
)

const (
	AttackRecordCollectionName = "AttackRecords"
)

type mongoAttackRecordRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type AttackRecordRepository interface {
	Insert(ctx context.Context, record *model.AttackRecord) error
	FindByID(ctx context.Context, id string) (*model.AttackRecord, error)
	FindByEncounterRound(ctx context.Context, teamID string, bossID string, round int) ([]*model.AttackRecord, error)
	FindAvailableCredits(ctx context.Context, teamID string, participantID string, periodID string) ([]*model.AttackRecord, error)
	ConsumeCredit(ctx context.Context, creditID string, consumingRecordID string) error
	CountSettledSince(ctx context.Context, teamID string, participantID string, since time.Time) (int64, error)
}

func NewMongoAttackRecordRepository(cfg *config.Config) AttackRecordRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAttackRecordRepository{
		cfg:        cfg,
		collection: db.Collection(AttackRecordCollectionName),
	}
}

func (r *mongoAttackRecordRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAttackRecordRepository) Insert(ctx context.Context, record *model.AttackRecord) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	record.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert attack record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAttackRecordRepository) FindByID(ctx context.Context, id string) (*model.AttackRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", battleerrors.ErrInvalidID, id)
	}

	var record model.AttackRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, battleerrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find attack record: %w", err)
	}

	return &record, nil
}

func (r *mongoAttackRecordRepository) FindByEncounterRound(ctx context.Context, teamID string, bossID string, round int) ([]*model.AttackRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"team_id": teamID,
		"boss_id": bossID,
		"round":   round,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find attack records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.AttackRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode attack records: %w", err)
	}

	return records, nil
}

// FindAvailableCredits lists the participant's unconsumed leftover
// credits in the period, oldest first.
func (r *mongoAttackRecordRepository) FindAvailableCredits(ctx context.Context, teamID string, participantID string, periodID string) ([]*model.AttackRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"team_id":          teamID,
		"participant_id":   participantID,
		"period_id":        periodID,
		"leftover_time":    bson.M{"$exists": true, "$ne": nil},
		"parent_credit_id": bson.M{"$exists": false},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find available credits: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.AttackRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode credits: %w", err)
	}

	return records, nil
}

// ConsumeCredit marks a credit consumed by setting parent_credit_id,
// conditional on it still being unset. Zero matches means a racing
// settlement already claimed it: ErrAlreadyConsumed.
func (r *mongoAttackRecordRepository) ConsumeCredit(ctx context.Context, creditID string, consumingRecordID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(creditID)
	if err != nil {
		return fmt.Errorf("%w: %s", battleerrors.ErrInvalidID, creditID)
	}

	filter := bson.M{
		"_id":              objectID,
		"leftover_time":    bson.M{"$exists": true, "$ne": nil},
		"parent_credit_id": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"parent_credit_id": consumingRecordID}}

	result := r.collection.FindOneAndUpdate(ctx, filter, update)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return battleerrors.ErrAlreadyConsumed
		}
		return fmt.Errorf("failed to consume credit: %w", err)
	}

	return nil
}

func (r *mongoAttackRecordRepository) CountSettledSince(ctx context.Context, teamID string, participantID string, since time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"team_id":        teamID,
		"participant_id": participantID,
		"created_at":     bson.M{"$gte": since},
		"attack_kind":    bson.M{"$ne": model.AttackCarry},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count settled attacks: %w", err)
	}

	return count, nil
}
