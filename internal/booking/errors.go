// Package booking implements the reservation conflict engine: the interval
// availability checker and the coordinator that makes check-then-write
// atomic per room.  This file defines the error taxonomy surfaced to the
// HTTP layer.  All failures are detected before any store write, so every
// error implies the unit of work left no partial state behind.  ErrBusy is
// the only condition a caller should retry.
package booking

import (
	"errors"
	"fmt"
)

// ErrRoomNotFound is returned when the target room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when the target reservation does not
// exist or is not visible to the caller.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrSlotUnavailable is returned when the requested interval overlaps an
// active reservation on the same room.  Handlers should translate this
// into an HTTP 409 response.
var ErrSlotUnavailable = errors.New("time slot unavailable")

// ErrInvalidTransition is returned when a lifecycle guard fails, such as
// cancelling a rejected reservation, cancelling a reservation that has
// already started, or rescheduling a terminal one.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrAlreadyCancelled is returned when the owner cancels a reservation
// that is already cancelled.  It wraps ErrInvalidTransition so callers
// checking the broader class still match.
var ErrAlreadyCancelled = fmt.Errorf("reservation already cancelled: %w", ErrInvalidTransition)

// ErrUnauthorized is returned when the caller lacks the role or ownership
// required for the operation.
var ErrUnauthorized = errors.New("unauthorized")

// ErrBusy is returned when the per-room guard could not be acquired within
// the configured wait bound.  The caller may retry with backoff.
var ErrBusy = errors.New("room busy, try again")

// ValidationError reports malformed input: an invalid interval, a start in
// the past, a missing field, or an occupant count over room capacity.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// errValidation is a convenience constructor used throughout the engine.
func errValidation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
