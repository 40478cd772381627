package model

// Boss is static reference data describing one boss identity.
type Boss struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" bson:"description" validate:"max=500"`
	ImagePath   string `json:"image_path" bson:"image_path" validate:"omitempty,url"`
	Position    int    `json:"position" bson:"position" validate:"required,min=1,max=5"`
}

// BossHealth maps a (position, round range) pair to the health a fresh
// encounter spawns with. Ranges must tile without gaps for every position
// that will be played; a gap is a configuration error.
type BossHealth struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Position  int    `json:"position" bson:"position" validate:"required,min=1,max=5"`
	RoundFrom int    `json:"round_from" bson:"round_from" validate:"required,min=1"`
	RoundTo   int    `json:"round_to" bson:"round_to" validate:"required,gtefield=RoundFrom"`
	Health    int64  `json:"health" bson:"health" validate:"required,gt=0"`
}

// Covers reports whether the entry's round range includes the given round.
func (h *BossHealth) Covers(round int) bool {
	return round >= h.RoundFrom && round <= h.RoundTo
}
