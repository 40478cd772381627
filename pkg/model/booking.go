package model

import (
	"time"
)

// AttackKind classifies a reserved attack.
type AttackKind string

const (
	AttackPhysical AttackKind = "physical"
	AttackMagic    AttackKind = "magic"
	AttackCarry    AttackKind = "carry"
)

// Valid reports whether the kind is one of the three known attack kinds.
func (k AttackKind) Valid() bool {
	switch k {
	case AttackPhysical, AttackMagic, AttackCarry:
		return true
	}
	return false
}

// Booking is a participant's pending attack declaration against one
// encounter. At most one live booking exists per (team, participant); the
// uniqueness is enforced by a database index, not application checks.
// A booking never survives settlement: it is deleted the instant it
// settles or is cancelled.
//
// Damage is nil until the participant enters a value; zero is not a valid
// entered damage.
type Booking struct {
	ID              string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	EncounterID     string     `json:"encounter_id" bson:"encounter_id" validate:"required,mongodb"`
	TeamID          string     `json:"team_id" bson:"team_id" validate:"required"`
	ParticipantID   string     `json:"participant_id" bson:"participant_id" validate:"required"`
	ParticipantName string     `json:"participant_name" bson:"participant_name" validate:"required,min=1,max=100"`
	AttackKind      AttackKind `json:"attack_kind" bson:"attack_kind" validate:"required,attack_kind"`
	Damage          *int64     `json:"damage,omitempty" bson:"damage,omitempty" validate:"omitempty,gt=0"`
	LeftoverTime    *int       `json:"leftover_time,omitempty" bson:"leftover_time,omitempty" validate:"omitempty,min=1"`
	ParentCreditID  *string    `json:"parent_credit_id,omitempty" bson:"parent_credit_id,omitempty" validate:"omitempty,mongodb"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// IsCarry reports whether the booking redeems a leftover credit.
func (b *Booking) IsCarry() bool {
	return b.AttackKind == AttackCarry
}

// AttackUsage summarizes a participant's attack budget for the current
// day: how many non-carry attacks settled, how many bookings are live,
// and the configured daily cap.
type AttackUsage struct {
	Settled int64 `json:"settled"`
	Live    int64 `json:"live"`
	Limit   int   `json:"limit"`
}
