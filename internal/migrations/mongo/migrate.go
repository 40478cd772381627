package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"raidledger/internal/migrations/mongo/validators"
)

const (
	DB_NAME = "raidledger"
)

var (
	PeriodsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "date_from", Value: 1},
			{Key: "date_to", Value: 1},
		}},
	}

	BossesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "position", Value: 1}}},
	}

	BossHealthIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "position", Value: 1},
			{Key: "round_from", Value: 1},
			{Key: "round_to", Value: 1},
		}},
	}

	EncountersIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "team_id", Value: 1},
			{Key: "correlation_key", Value: 1},
			{Key: "_id", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "team_id", Value: 1},
			{Key: "period_id", Value: 1},
			{Key: "boss_id", Value: 1},
		}},
	}

	// The unique index is the whole one-live-booking guarantee. Nothing in
	// application code re-checks it.
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "team_id", Value: 1},
				{Key: "participant_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{
			{Key: "encounter_id", Value: 1},
			{Key: "created_at", Value: 1},
		}},
	}

	AttackRecordsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "team_id", Value: 1},
			{Key: "participant_id", Value: 1},
			{Key: "created_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "team_id", Value: 1},
			{Key: "boss_id", Value: 1},
			{Key: "round", Value: 1},
		}},
		{
			Keys: bson.D{
				{Key: "team_id", Value: 1},
				{Key: "participant_id", Value: 1},
				{Key: "period_id", Value: 1},
			},
			Options: options.Index().SetPartialFilterExpression(bson.M{
				"leftover_time": bson.M{"$exists": true},
			}),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client) error {
	db := client.Database(DB_NAME)
	fmt.Printf("🚀 Running Raidledger Mongo migrations on database: %s\n", DB_NAME)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Periods": {
			Indexes:   PeriodsIndexes,
			Validator: validators.PeriodValidator,
		},
		"Bosses": {
			Indexes:   BossesIndexes,
			Validator: validators.BossValidator,
		},
		"BossHealth": {
			Indexes:   BossHealthIndexes,
			Validator: validators.BossHealthValidator,
		},
		"Encounters": {
			Indexes:   EncountersIndexes,
			Validator: validators.EncounterValidator,
		},
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		"AttackRecords": {
			Indexes:   AttackRecordsIndexes,
			Validator: validators.AttackRecordValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
