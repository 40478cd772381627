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
	BookingCollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByParticipant(ctx context.Context, teamID string, participantID string) (*model.Booking, error)
	FindByEncounter(ctx context.Context, encounterID string) ([]*model.Booking, error)
	SetDamage(ctx context.Context, id string, damage int64) error
	DeleteByParticipant(ctx context.Context, teamID string, participantID string) (*model.Booking, error)
	CountLive(ctx context.Context, teamID string, participantID string) (int64, error)
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingCollectionName),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Create inserts the booking. The unique index on (team_id, participant_id)
// makes concurrent double-booking impossible; callers translate the
// duplicate key error into their conflict type.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return err
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", battleerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, battleerrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByParticipant(ctx context.Context, teamID string, participantID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"team_id":        teamID,
		"participant_id": participantID,
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, battleerrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking by participant: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByEncounter(ctx context.Context, encounterID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"encounter_id": encounterID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings by encounter: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) SetDamage(ctx context.Context, id string, damage int64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", battleerrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{"damage": damage}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to set booking damage: %w", err)
	}

	if result.MatchedCount == 0 {
		return battleerrors.ErrBookingNotFound
	}

	return nil
}

// DeleteByParticipant removes the participant's live booking and returns
// it, so settlement can carry its fields into the ledger in one step.
func (r *mongoBookingRepository) DeleteByParticipant(ctx context.Context, teamID string, participantID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"team_id":        teamID,
		"participant_id": participantID,
	}

	var booking model.Booking
	err := r.collection.FindOneAndDelete(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, battleerrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to delete booking by participant: %w", err)
	}

	return &booking, nil
}

// CountLive counts the participant's live bookings. The unique index caps
// this at one.
func (r *mongoBookingRepository) CountLive(ctx context.Context, teamID string, participantID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"team_id":        teamID,
		"participant_id": participantID,
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count live bookings: %w", err)
	}

	return count, nil
}
