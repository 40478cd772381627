package errors

import "errors"

var (
	ErrEncounterNotFound = errors.New("encounter not found")

	ErrBookingNotFound = errors.New("booking not found")

	ErrRecordNotFound = errors.New("attack record not found")

	// ErrAlreadyConsumed means the credit's parent_credit_id was set by a
	// racing settlement between listing and consuming. Benign; the
	// settlement that lost the race proceeds without the credit link.
	ErrAlreadyConsumed = errors.New("leftover credit already consumed")

	ErrInvalidID = errors.New("invalid battle ID format")
)
