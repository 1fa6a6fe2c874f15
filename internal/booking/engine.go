package booking

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
)

// DefaultLockWait bounds how long an operation waits for a room guard
// before failing with ErrBusy.
const DefaultLockWait = 3 * time.Second

// Engine is the conflict-safe reservation coordinator.  Every state-changing
// operation runs as one guarded section: acquire the room lock, check
// availability and lifecycle guards, then write — so no two overlapping
// reservations on the same room can both observe a free slot, even under
// concurrent requests.  Read-only operations take snapshots without the
// guard.
type Engine struct {
	store    Store
	locks    *RoomLocker
	clock    Clock
	lockWait time.Duration
}

// NewEngine constructs an Engine.  A zero lockWait falls back to
// DefaultLockWait; a nil clock falls back to the system clock.
func NewEngine(store Store, lockWait time.Duration, clock Clock) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Engine{
		store:    store,
		locks:    NewRoomLocker(),
		clock:    clock,
		lockWait: lockWait,
	}
}

// CreateReservation validates the request, checks the room for conflicting
// active reservations under the room guard and inserts a new PENDING
// reservation.  Exactly one of two concurrent overlapping requests for the
// same room succeeds; the other receives ErrSlotUnavailable.
func (e *Engine) CreateReservation(ctx context.Context, userID, roomID uint64, iv model.Interval, participants uint32, title string, description *string) (*model.Reservation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errValidation("title is required")
	}
	if participants < 1 {
		return nil, errValidation("participants must be at least 1")
	}
	if !iv.IsValid() {
		return nil, errValidation("end time must be after start time")
	}
	if iv.Start.Before(e.clock.Now()) {
		return nil, errValidation("cannot book a slot in the past")
	}

	release, err := e.locks.Acquire(ctx, roomID, e.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	// Capacity is read inside the guard; later capacity changes do not
	// retroactively affect reservations accepted here.
	if participants > room.Capacity {
		return nil, errValidation("room capacity is %d, cannot book for %d participants", room.Capacity, participants)
	}

	conflicts, err := e.store.FindConflicts(ctx, roomID, iv, 0)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, ErrSlotUnavailable
	}

	res := &model.Reservation{
		UserID:       userID,
		RoomID:       roomID,
		Interval:     iv,
		Title:        title,
		Description:  description,
		Participants: participants,
		Status:       model.StatusPending,
	}
	if err := e.store.CreateReservation(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// CancelReservation withdraws a reservation on behalf of its owner.  An
// administrator may cancel any reservation.  Cancellation is refused once
// the reservation has started and for reservations already in a terminal
// state.  The status write happens under the room guard so a cancellation
// cannot race an approval on the same reservation.
func (e *Engine) CancelReservation(ctx context.Context, actor model.Principal, reservationID uint64) (*model.Reservation, error) {
	res, err := e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}

	release, err := e.locks.Acquire(ctx, res.RoomID, e.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read inside the guard: the status may have moved while waiting.
	res, err = e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !res.Status.CanCancel() {
		return nil, ErrInvalidTransition
	}
	if !e.clock.Now().Before(res.Interval.Start) {
		return nil, ErrInvalidTransition
	}

	if err := e.store.UpdateStatus(ctx, reservationID, model.StatusCancelled, nil); err != nil {
		return nil, err
	}
	return e.store.GetReservation(ctx, reservationID)
}

// SetStatus moves a reservation to one of the four enumerated states on
// behalf of an administrator, optionally recording a note.  The interval is
// untouched and no availability check runs, but the write still goes
// through the room guard so it cannot interleave with a concurrent create,
// cancel or reschedule on the same room.
func (e *Engine) SetStatus(ctx context.Context, actor model.Principal, reservationID uint64, status model.Status, note *string) (*model.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if _, ok := model.ParseStatus(string(status)); !ok {
		return nil, errValidation("unknown status %q", string(status))
	}

	res, err := e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	release, err := e.locks.Acquire(ctx, res.RoomID, e.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.store.UpdateStatus(ctx, reservationID, status, note); err != nil {
		return nil, err
	}
	return e.store.GetReservation(ctx, reservationID)
}

// Reschedule moves a pending or approved reservation to a new interval and
// marks it APPROVED, after re-running the availability check against the
// new interval with the reservation itself excluded.  On any failure the
// original interval and status are left unchanged.
func (e *Engine) Reschedule(ctx context.Context, actor model.Principal, reservationID uint64, iv model.Interval, note *string) (*model.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !iv.IsValid() {
		return nil, errValidation("end time must be after start time")
	}
	if iv.Start.Before(e.clock.Now()) {
		return nil, errValidation("cannot reschedule into the past")
	}

	res, err := e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	release, err := e.locks.Acquire(ctx, res.RoomID, e.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err = e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !res.Status.CanReschedule() {
		return nil, ErrInvalidTransition
	}

	conflicts, err := e.store.FindConflicts(ctx, res.RoomID, iv, reservationID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, ErrSlotUnavailable
	}

	if err := e.store.UpdateSchedule(ctx, reservationID, iv, model.StatusApproved, note); err != nil {
		return nil, err
	}
	return e.store.GetReservation(ctx, reservationID)
}

// ListActiveForRoom returns the active reservations on a room for the UTC
// day containing day, ordered by start time.  It verifies the room exists
// so callers can distinguish an unknown room from an empty day.
func (e *Engine) ListActiveForRoom(ctx context.Context, roomID uint64, day time.Time) ([]model.Reservation, error) {
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return e.store.ListActiveForRoom(ctx, roomID, day)
}

// FindAvailableRooms returns the rooms with no active reservation
// overlapping iv.  This is a read-only snapshot: a slot reported free here
// is re-checked under the guard when a reservation is actually created.
func (e *Engine) FindAvailableRooms(ctx context.Context, iv model.Interval) ([]model.Room, error) {
	if !iv.IsValid() {
		return nil, errValidation("end time must be after start time")
	}
	rooms, err := e.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]model.Room, 0, len(rooms))
	for _, room := range rooms {
		conflicts, err := e.store.FindConflicts(ctx, room.ID, iv, 0)
		if err != nil {
			return nil, err
		}
		if len(conflicts) == 0 {
			available = append(available, room)
		}
	}
	return available, nil
}
