package model

import "time"

// RoomCapacityMax bounds how large a room may be declared.  Capacity is
// always at least 1.
const RoomCapacityMax = 1000

// Room is a bookable meeting room.  Rooms are created and maintained by
// administrators; the booking engine only reads them.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name, unique across rooms.
//  Capacity  – maximum number of occupants (1..RoomCapacityMax).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64    `json:"id"`         // rooms.id
	Name      string    `json:"name"`       // rooms.name
	Capacity  uint32    `json:"capacity"`   // rooms.capacity
	CreatedAt time.Time `json:"created_at"` // rooms.created_at
	UpdatedAt time.Time `json:"updated_at"` // rooms.updated_at
}
