package model

import (
	"time"
)

// AttackRecord is the immutable ledger row produced by settlement. Damage,
// kind, round, and leftover time never change once inserted; only
// ParentCreditID may transition, exactly once, from unset to the ID of the
// record that consumed this row's leftover credit.
//
// Overkill damage is preserved verbatim here even though encounter health
// is clamped at zero; the ledger is the audit trail, the encounter is
// just live state.
type AttackRecord struct {
	ID              string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TeamID          string     `json:"team_id" bson:"team_id" validate:"required"`
	PeriodID        string     `json:"period_id" bson:"period_id" validate:"required,mongodb"`
	BossID          string     `json:"boss_id" bson:"boss_id" validate:"required,mongodb"`
	ParticipantID   string     `json:"participant_id" bson:"participant_id" validate:"required"`
	ParticipantName string     `json:"participant_name" bson:"participant_name" validate:"required,min=1,max=100"`
	Round           int        `json:"round" bson:"round" validate:"required,min=1"`
	AttackKind      AttackKind `json:"attack_kind" bson:"attack_kind" validate:"required,attack_kind"`
	Damage          int64      `json:"damage" bson:"damage" validate:"required,gt=0"`
	LeftoverTime    *int       `json:"leftover_time,omitempty" bson:"leftover_time,omitempty" validate:"omitempty,min=1"`
	ParentCreditID  *string    `json:"parent_credit_id,omitempty" bson:"parent_credit_id,omitempty" validate:"omitempty,mongodb"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsUnconsumedCredit reports whether the record still banks a redeemable
// leftover credit.
func (r *AttackRecord) IsUnconsumedCredit() bool {
	return r.LeftoverTime != nil && r.ParentCreditID == nil
}

// LeftoverCredit is the queryable view of an unconsumed credit, shaped for
// presentation to the participant choosing a carry booking.
type LeftoverCredit struct {
	RecordID     string     `json:"record_id"`
	BossID       string     `json:"boss_id"`
	BossName     string     `json:"boss_name"`
	AttackKind   AttackKind `json:"attack_kind"`
	LeftoverTime int        `json:"leftover_time"`
	EarnedAt     time.Time  `json:"earned_at"`
}
