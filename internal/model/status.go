package model

import "strings"

// Status is the lifecycle state of a reservation.  A reservation starts in
// StatusPending and is moved by an administrator (approve, reject,
// reschedule) or by its owner (cancel).  REJECTED and CANCELLED rows are
// kept for audit; they no longer hold the time slot.
type Status string

const (
	StatusPending   Status = "PENDING"   // awaiting administrator review (initial)
	StatusApproved  Status = "APPROVED"  // confirmed by an administrator
	StatusRejected  Status = "REJECTED"  // declined by an administrator
	StatusCancelled Status = "CANCELLED" // withdrawn by the owner
)

// ParseStatus normalizes a client-supplied status string into a Status.
// Matching is case-insensitive so both "approved" and "APPROVED" are
// accepted.  The second return value reports whether the input named one of
// the four enumerated states.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	case StatusCancelled:
		return StatusCancelled, true
	}
	return "", false
}

// IsActive reports whether a reservation in this state holds its time slot.
// Only PENDING and APPROVED reservations participate in conflict checks.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

// CanCancel reports whether an owner-initiated cancellation is allowed from
// this state.  Time-based guards (the reservation must not have started)
// are enforced by the coordinator, which owns the clock.
func (s Status) CanCancel() bool {
	return s == StatusPending || s == StatusApproved
}

// CanReschedule reports whether an administrator may move the reservation to
// a new interval.  Terminal reservations cannot be revived by rescheduling.
func (s Status) CanReschedule() bool {
	return s == StatusPending || s == StatusApproved
}
