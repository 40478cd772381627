package events

import (
	"context"
	"time"

	"raidledger/pkg/kafka"
	"raidledger/pkg/logger"
	"raidledger/pkg/model"
)

// Topic carries every battle event; consumers filter on the event-type
// header. Messages are keyed by team so per-team ordering holds.
const Topic = "raidledger.battle.events"

const DLQTopic = "raidledger.battle.events.dlq"

const SchemaVersion = "1"

// Event types.
const (
	TypeBookingCreated    = "booking.created"
	TypeBookingCancelled  = "booking.cancelled"
	TypeAttackSettled     = "attack.settled"
	TypeBossDefeated      = "boss.defeated"
	TypeEncounterAdvanced = "encounter.advanced"
)

type BookingCreated struct {
	TeamID         string           `json:"team_id"`
	ParticipantID  string           `json:"participant_id"`
	CorrelationKey string           `json:"correlation_key"`
	AttackKind     model.AttackKind `json:"attack_kind"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

type BookingCancelled struct {
	TeamID         string    `json:"team_id"`
	ParticipantID  string    `json:"participant_id"`
	CorrelationKey string    `json:"correlation_key"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type AttackSettled struct {
	TeamID         string           `json:"team_id"`
	ParticipantID  string           `json:"participant_id"`
	CorrelationKey string           `json:"correlation_key"`
	RecordID       string           `json:"record_id"`
	AttackKind     model.AttackKind `json:"attack_kind"`
	Damage         int64            `json:"damage"`
	Round          int              `json:"round"`
	Defeated       bool             `json:"defeated"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

type BossDefeated struct {
	TeamID         string    `json:"team_id"`
	CorrelationKey string    `json:"correlation_key"`
	BossID         string    `json:"boss_id"`
	Round          int       `json:"round"`
	LeftoverTime   *int      `json:"leftover_time,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type EncounterAdvanced struct {
	TeamID         string    `json:"team_id"`
	CorrelationKey string    `json:"correlation_key"`
	BossID         string    `json:"boss_id"`
	Round          int       `json:"round"`
	MaxHealth      int64     `json:"max_health"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher emits battle events. Publishing is fire-and-forget from the
// engine's point of view; it never participates in the settlement
// transaction.
type Publisher interface {
	Publish(ctx context.Context, eventType string, teamID string, correlationKey string, payload any)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, teamID string, correlationKey string, payload any) {
	msg := kafka.NewMessage().
		WithKey(teamID).
		WithValue(payload).
		WithEventID("").
		WithEventType(eventType).
		WithCorrelationID(correlationKey).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish battle event",
			"event_type", eventType,
			"team_id", teamID,
			"correlation_key", correlationKey,
			"error", err,
		)
	}
}

// NopPublisher discards events. Used when Kafka is not configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType string, teamID string, correlationKey string, payload any) {
}
