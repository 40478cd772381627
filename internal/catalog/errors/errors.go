package errors

import "errors"

var (
	ErrNoActivePeriod = errors.New("no active period for the given time")

	ErrBossNotFound = errors.New("boss not found")

	// ErrHealthTableGap means no health entry covers the requested
	// (position, round) pair. The round ranges are supposed to tile; a
	// gap is a configuration error, not a player error.
	ErrHealthTableGap = errors.New("no health entry covers the requested position and round")

	ErrInvalidID = errors.New("invalid catalog ID format")
)
