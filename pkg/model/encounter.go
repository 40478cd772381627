package model

import (
	"time"
)

// Encounter is the live instance of a boss fight at a given round, bound to
// one correlation key (the opaque identifier of its external display
// surface). Created when a slot is activated or a round advances; mutated
// only by damage application; never deleted.
type Encounter struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CorrelationKey string    `json:"correlation_key" bson:"correlation_key" validate:"required"`
	TeamID         string    `json:"team_id" bson:"team_id" validate:"required"`
	PeriodID       string    `json:"period_id" bson:"period_id" validate:"required,mongodb"`
	BossID         string    `json:"boss_id" bson:"boss_id" validate:"required,mongodb"`
	Round          int       `json:"round" bson:"round" validate:"required,min=1"`
	CurrentHealth  int64     `json:"current_health" bson:"current_health" validate:"min=0"`
	MaxHealth      int64     `json:"max_health" bson:"max_health" validate:"required,gt=0"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Defeated reports whether the boss has hit zero health. A defeated
// encounter still needs an explicit kill confirmation before the next
// round spawns.
func (e *Encounter) Defeated() bool {
	return e.CurrentHealth <= 0
}

// EncounterSnapshot bundles an encounter with its live bookings and the
// attacks already settled against its round, in display order.
type EncounterSnapshot struct {
	Encounter *Encounter      `json:"encounter"`
	Bookings  []*Booking      `json:"bookings"`
	Settled   []*AttackRecord `json:"settled"`
}
