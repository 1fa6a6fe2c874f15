// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationDecidedEvent is published when an administrator decides a
// reservation, either by setting its status or by rescheduling it.  It
// carries enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type ReservationDecidedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	RoomID        uint64 `json:"room_id"`
	RoomName      string `json:"room_name"`
	Title         string `json:"title"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	Status        string `json:"status"`
	AdminNote     string `json:"admin_note,omitempty"`
	DecidedAt     string `json:"decided_at"`
}
