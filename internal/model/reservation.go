package model

import "time"

// Reservation records a user's request to hold a room for a time interval.
// The room reference is immutable after creation; only the interval, the
// status and the administrator note ever change.  Reservations are never
// physically deleted – cancellation and rejection are terminal states that
// remain visible for audit.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – user who requested the reservation.
//  RoomID       – room being reserved (never reassigned).
//  Interval     – half-open [start, end) range being held.
//  Title        – short subject of the meeting.
//  Description  – optional free-text purpose.
//  Participants – expected occupant count; must not exceed room capacity.
//  Status       – lifecycle state (see Status).
//  AdminNotes   – optional note recorded by the reviewing administrator.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Reservation struct {
	ID           uint64    `json:"id"`                    // reservations.id
	UserID       uint64    `json:"user_id"`               // reservations.user_id
	RoomID       uint64    `json:"room_id"`               // reservations.room_id
	Interval     Interval  `json:"interval"`              // reservations.start_time / end_time
	Title        string    `json:"title"`                 // reservations.title
	Description  *string   `json:"description,omitempty"` // reservations.description (nullable)
	Participants uint32    `json:"participants"`          // reservations.participants
	Status       Status    `json:"status"`                // reservations.status
	AdminNotes   *string   `json:"admin_notes,omitempty"` // reservations.admin_notes (nullable)
	CreatedAt    time.Time `json:"created_at"`            // reservations.created_at
	UpdatedAt    time.Time `json:"updated_at"`            // reservations.updated_at
}

// Principal identifies the authenticated caller of an engine operation.  It
// is extracted from the verified JWT by the HTTP layer; the engine trusts
// it and performs only capability checks against Role.
type Principal struct {
	ID   uint64 // users.id of the caller
	Role string // RoleAdmin or RoleUser
}

// Role values carried in the JWT "role" claim.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// IsAdmin reports whether the principal may perform administrative
// operations (set status, reschedule, room CRUD).
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
