package model

import (
	"time"
)

// BossSlots is the number of concurrent encounter slots a period runs.
const BossSlots = 5

// Period is one event window. Each period assigns one boss to each of the
// five encounter slots. Immutable once created.
type Period struct {
	ID       string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name     string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DateFrom time.Time `json:"date_from" bson:"date_from" validate:"required"`
	DateTo   time.Time `json:"date_to" bson:"date_to" validate:"required,gtfield=DateFrom"`
	BossIDs  []string  `json:"boss_ids" bson:"boss_ids" validate:"required,len=5,dive,required"`
}

// Contains reports whether now falls inside [DateFrom, DateTo).
func (p *Period) Contains(now time.Time) bool {
	return !now.Before(p.DateFrom) && now.Before(p.DateTo)
}

// BossIDAt returns the boss assigned to a 1-based slot position.
func (p *Period) BossIDAt(position int) (string, bool) {
	if position < 1 || position > len(p.BossIDs) {
		return "", false
	}
	return p.BossIDs[position-1], true
}
