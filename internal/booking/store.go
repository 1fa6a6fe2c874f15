package booking

import (
	"context"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// Store defines the persistence operations the engine requires.  The MySQL
// implementation lives in internal/repository; tests use an in-memory one.
//
// Mutating methods are only ever invoked while the engine holds the room
// guard, so implementations do not need their own cross-call locking for
// correctness of the conflict check.  Every method must honor the context.
type Store interface {
	// GetRoom returns the room or ErrRoomNotFound.
	GetRoom(ctx context.Context, roomID uint64) (*model.Room, error)

	// ListRooms returns all rooms ordered by name.
	ListRooms(ctx context.Context) ([]model.Room, error)

	// FindConflicts returns the active (PENDING or APPROVED) reservations on
	// roomID whose intervals overlap iv.  When excludeID is non-zero that
	// reservation is excluded, so a reschedule does not conflict with itself.
	// An empty result means the slot is free.
	FindConflicts(ctx context.Context, roomID uint64, iv model.Interval, excludeID uint64) ([]model.Reservation, error)

	// CreateReservation inserts the reservation and populates its ID and
	// timestamps.
	CreateReservation(ctx context.Context, res *model.Reservation) error

	// GetReservation returns the reservation or ErrReservationNotFound.
	GetReservation(ctx context.Context, id uint64) (*model.Reservation, error)

	// UpdateStatus sets the status and, when note is non-nil, the admin note.
	// The interval is untouched.
	UpdateStatus(ctx context.Context, id uint64, status model.Status, note *string) error

	// UpdateSchedule moves the reservation to a new interval and status in a
	// single write, optionally recording an admin note.
	UpdateSchedule(ctx context.Context, id uint64, iv model.Interval, status model.Status, note *string) error

	// ListActiveForRoom returns the active reservations on roomID whose
	// start falls inside the UTC day containing day, ordered by start time.
	ListActiveForRoom(ctx context.Context, roomID uint64, day time.Time) ([]model.Reservation, error)
}
