package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error taxonomy surfaced to handlers. Every failure of a booking operation
// is one of these deterministic outcomes (or an unexpected store error);
// handlers match with errors.Is and translate to HTTP statuses. Operations
// never retry and never leave partial writes behind.
var (
	// ErrValidation covers missing or malformed required fields, bad
	// date/time formats and invalid field ordering (start >= end).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced doctor, patient or appointment is absent.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the requester does not own the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotAvailable means the requested time falls outside every
	// availability window of the doctor for that weekday.
	ErrNotAvailable = errors.New("doctor not available at the requested time")

	// ErrConflict means another appointment for the doctor lies within the
	// guard band of the requested time.
	ErrConflict = errors.New("doctor has another appointment near this time")

	// ErrDuplicate means a unique constraint was violated (e.g. email).
	ErrDuplicate = errors.New("duplicate key")
)

// IsDuplicateKey reports whether err is a unique-constraint violation from
// the underlying store.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}
