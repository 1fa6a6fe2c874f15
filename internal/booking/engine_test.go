package booking

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-reservation/internal/model"
)

// memStore is an in-memory Store for engine tests.  An optional delay is
// injected into FindConflicts to widen the check-then-write window, which
// would expose a double booking if the room guard ever failed to serialize.
type memStore struct {
	mu     sync.Mutex
	delay  time.Duration
	nextID uint64
	rooms  map[uint64]model.Room
	res    map[uint64]model.Reservation
}

func newMemStore() *memStore {
	return &memStore{
		rooms: make(map[uint64]model.Room),
		res:   make(map[uint64]model.Reservation),
	}
}

func (s *memStore) addRoom(id uint64, name string, capacity uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = model.Room{ID: id, Name: name, Capacity: capacity}
}

func (s *memStore) GetRoom(_ context.Context, roomID uint64) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

func (s *memStore) ListRooms(_ context.Context) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) FindConflicts(_ context.Context, roomID uint64, iv model.Interval, excludeID uint64) ([]model.Reservation, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.res {
		if r.RoomID != roomID || r.ID == excludeID || !r.Status.IsActive() {
			continue
		}
		if r.Interval.Overlaps(iv) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) CreateReservation(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	s.res[res.ID] = *res
	return nil
}

func (s *memStore) GetReservation(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.res[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return &r, nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uint64, status model.Status, note *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.res[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.Status = status
	if note != nil {
		r.AdminNotes = note
	}
	r.UpdatedAt = time.Now().UTC()
	s.res[id] = r
	return nil
}

func (s *memStore) UpdateSchedule(_ context.Context, id uint64, iv model.Interval, status model.Status, note *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.res[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.Interval = iv
	r.Status = status
	if note != nil {
		r.AdminNotes = note
	}
	r.UpdatedAt = time.Now().UTC()
	s.res[id] = r
	return nil
}

func (s *memStore) ListActiveForRoom(_ context.Context, roomID uint64, day time.Time) ([]model.Reservation, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.res {
		if r.RoomID != roomID || !r.Status.IsActive() {
			continue
		}
		if !r.Interval.Start.Before(dayStart) && r.Interval.Start.Before(dayEnd) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Interval.Start.Before(out[j].Interval.Start) })
	return out, nil
}

// fakeClock pins the engine's clock so past-start checks are deterministic.
type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

var clockNow = time.Date(2030, time.March, 10, 8, 0, 0, 0, time.UTC)

func slot(startHour, endHour int) model.Interval {
	return model.NewInterval(
		time.Date(2030, time.March, 10, startHour, 0, 0, 0, time.UTC),
		time.Date(2030, time.March, 10, endHour, 0, 0, 0, time.UTC),
	)
}

func newTestEngine(t *testing.T) (*Engine, *memStore) {
	t.Helper()
	store := newMemStore()
	store.addRoom(1, "Boardroom", 10)
	store.addRoom(2, "Studio", 4)
	return NewEngine(store, time.Second, fakeClock{now: clockNow}), store
}

var (
	alice = model.Principal{ID: 100, Role: model.RoleUser}
	bob   = model.Principal{ID: 101, Role: model.RoleUser}
	admin = model.Principal{ID: 1, Role: model.RoleAdmin}
)

func TestCreateReservationValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 2, "", nil)
	assert.True(t, IsValidation(err), "empty title: %v", err)

	_, err = e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 0, "standup", nil)
	assert.True(t, IsValidation(err), "zero participants: %v", err)

	_, err = e.CreateReservation(ctx, alice.ID, 1, slot(10, 9), 2, "standup", nil)
	assert.True(t, IsValidation(err), "inverted interval: %v", err)

	_, err = e.CreateReservation(ctx, alice.ID, 1, slot(9, 9), 2, "standup", nil)
	assert.True(t, IsValidation(err), "zero-length interval: %v", err)

	// The clock reads 08:00; a 07:00 start is in the past.
	_, err = e.CreateReservation(ctx, alice.ID, 1, slot(7, 8), 2, "standup", nil)
	assert.True(t, IsValidation(err), "past start: %v", err)

	// Room 2 holds 4 people.
	_, err = e.CreateReservation(ctx, alice.ID, 2, slot(9, 10), 5, "standup", nil)
	assert.True(t, IsValidation(err), "over capacity: %v", err)

	_, err = e.CreateReservation(ctx, alice.ID, 99, slot(9, 10), 2, "standup", nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCreateReservationConflicts(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := e.CreateReservation(ctx, alice.ID, 1, slot(9, 11), 3, "planning", nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, first.Status, "new reservations await review")
	assert.NotZero(t, first.ID)

	// A pending reservation already holds the slot.
	_, err = e.CreateReservation(ctx, bob.ID, 1, slot(10, 12), 2, "sync", nil)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Touching the boundary is not a conflict.
	_, err = e.CreateReservation(ctx, bob.ID, 1, slot(11, 12), 2, "sync", nil)
	assert.NoError(t, err)

	// The same slot in another room is free.
	_, err = e.CreateReservation(ctx, bob.ID, 2, slot(9, 11), 2, "recording", nil)
	assert.NoError(t, err)
}

func TestRejectedAndCancelledFreeTheSlot(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 2, "review", nil)
	require.NoError(t, err)
	_, err = e.SetStatus(ctx, admin, res.ID, model.StatusRejected, nil)
	require.NoError(t, err)

	// The rejected row no longer blocks the slot.
	second, err := e.CreateReservation(ctx, bob.ID, 1, slot(9, 10), 2, "retro", nil)
	require.NoError(t, err)

	_, err = e.CancelReservation(ctx, bob, second.ID)
	require.NoError(t, err)

	_, err = e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 2, "review again", nil)
	assert.NoError(t, err)
}

func TestCancelReservationGuards(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	res, err := e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 2, "standup", nil)
	require.NoError(t, err)

	// Only the owner or an administrator may cancel.
	_, err = e.CancelReservation(ctx, bob, res.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	cancelled, err := e.CancelReservation(ctx, alice, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	// Cancelling twice reports the dedicated error, which still matches
	// the broader invalid-transition class.
	_, err = e.CancelReservation(ctx, alice, res.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// A rejected reservation cannot be cancelled.
	rejected, err := e.CreateReservation(ctx, alice.ID, 1, slot(11, 12), 2, "demo", nil)
	require.NoError(t, err)
	_, err = e.SetStatus(ctx, admin, rejected.ID, model.StatusRejected, nil)
	require.NoError(t, err)
	_, err = e.CancelReservation(ctx, alice, rejected.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// A reservation that has started cannot be cancelled.  Insert one
	// starting exactly at the clock instant.
	started := &model.Reservation{
		UserID: alice.ID, RoomID: 1,
		Interval: model.NewInterval(clockNow, clockNow.Add(time.Hour)),
		Title:    "in progress", Participants: 2, Status: model.StatusApproved,
	}
	require.NoError(t, store.CreateReservation(ctx, started))
	_, err = e.CancelReservation(ctx, alice, started.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Administrators may cancel other users' reservations.
	other, err := e.CreateReservation(ctx, bob.ID, 2, slot(9, 10), 2, "1:1", nil)
	require.NoError(t, err)
	_, err = e.CancelReservation(ctx, admin, other.ID)
	assert.NoError(t, err)
}

func TestSetStatus(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 2, "standup", nil)
	require.NoError(t, err)

	_, err = e.SetStatus(ctx, alice, res.ID, model.StatusApproved, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = e.SetStatus(ctx, admin, res.ID, model.Status("DONE"), nil)
	assert.True(t, IsValidation(err), "unknown status: %v", err)

	note := "room ready"
	approved, err := e.SetStatus(ctx, admin, res.ID, model.StatusApproved, &note)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	require.NotNil(t, approved.AdminNotes)
	assert.Equal(t, note, *approved.AdminNotes)

	_, err = e.SetStatus(ctx, admin, 999, model.StatusApproved, nil)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReschedule(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 2, "standup", nil)
	require.NoError(t, err)
	blocker, err := e.CreateReservation(ctx, bob.ID, 1, slot(13, 14), 2, "sync", nil)
	require.NoError(t, err)

	_, err = e.Reschedule(ctx, alice, res.ID, slot(11, 12), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = e.Reschedule(ctx, admin, res.ID, slot(12, 11), nil)
	assert.True(t, IsValidation(err), "inverted interval: %v", err)

	// The target slot is held by the blocker; the reservation keeps its
	// original interval and status.
	_, err = e.Reschedule(ctx, admin, res.ID, slot(13, 14), nil)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	unchanged, err := e.store.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, slot(9, 10), unchanged.Interval)
	assert.Equal(t, model.StatusPending, unchanged.Status)

	// Moving within the reservation's own slot must not conflict with itself.
	moved, err := e.Reschedule(ctx, admin, res.ID, slot(9, 11), nil)
	require.NoError(t, err)
	assert.Equal(t, slot(9, 11), moved.Interval)
	assert.Equal(t, model.StatusApproved, moved.Status, "a successful reschedule approves")

	// Terminal reservations cannot be revived by rescheduling.
	_, err = e.CancelReservation(ctx, bob, blocker.ID)
	require.NoError(t, err)
	_, err = e.Reschedule(ctx, admin, blocker.ID, slot(15, 16), nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConcurrentCreateSameRoom(t *testing.T) {
	e, store := newTestEngine(t)
	store.delay = 20 * time.Millisecond // widen the check-then-write window
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.CreateReservation(ctx, uint64(200+i), 1, slot(9, 10), 2, "race", nil)
		}(i)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case err == ErrSlotUnavailable:
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok, "exactly one request wins the slot")
	assert.Equal(t, 1, unavailable)

	conflicts, err := store.FindConflicts(ctx, 1, slot(9, 10), 0)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1, "no double booking was persisted")
}

func TestConcurrentCreateDifferentRooms(t *testing.T) {
	e, store := newTestEngine(t)
	store.delay = 20 * time.Millisecond
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.CreateReservation(ctx, uint64(200+i), uint64(i+1), slot(9, 10), 2, "parallel", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err, "different rooms never contend")
	}
}

func TestListActiveForRoom(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.ListActiveForRoom(ctx, 99, clockNow)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	later, err := e.CreateReservation(ctx, alice.ID, 1, slot(14, 15), 2, "later", nil)
	require.NoError(t, err)
	earlier, err := e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 2, "earlier", nil)
	require.NoError(t, err)
	cancelled, err := e.CreateReservation(ctx, alice.ID, 1, slot(11, 12), 2, "withdrawn", nil)
	require.NoError(t, err)
	_, err = e.CancelReservation(ctx, alice, cancelled.ID)
	require.NoError(t, err)

	day, err := e.ListActiveForRoom(ctx, 1, clockNow)
	require.NoError(t, err)
	require.Len(t, day, 2, "cancelled reservations are excluded")
	assert.Equal(t, earlier.ID, day[0].ID, "ordered by start time")
	assert.Equal(t, later.ID, day[1].ID)

	next, err := e.ListActiveForRoom(ctx, 1, clockNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestFindAvailableRooms(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.FindAvailableRooms(ctx, slot(10, 9))
	assert.True(t, IsValidation(err), "inverted interval: %v", err)

	free, err := e.FindAvailableRooms(ctx, slot(9, 10))
	require.NoError(t, err)
	assert.Len(t, free, 2)

	_, err = e.CreateReservation(ctx, alice.ID, 1, slot(9, 10), 2, "standup", nil)
	require.NoError(t, err)

	free, err = e.FindAvailableRooms(ctx, slot(9, 10))
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, uint64(2), free[0].ID)

	// An interval that only touches the booking leaves the room available.
	free, err = e.FindAvailableRooms(ctx, slot(10, 11))
	require.NoError(t, err)
	assert.Len(t, free, 2)
}

// TestBookingLifecycle walks a reservation through the full flow: booked,
// approved, defended against an overlapping request, then cancelled so the
// slot opens up again.
func TestBookingLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := e.CreateReservation(ctx, alice.ID, 1, slot(9, 11), 4, "workshop", nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, res.Status)

	note := "confirmed"
	approved, err := e.SetStatus(ctx, admin, res.ID, model.StatusApproved, &note)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)

	_, err = e.CreateReservation(ctx, bob.ID, 1, slot(10, 12), 2, "overlap", nil)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	boundary, err := e.CreateReservation(ctx, bob.ID, 1, slot(11, 12), 2, "follow-up", nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, boundary.Status)

	_, err = e.CancelReservation(ctx, alice, res.ID)
	require.NoError(t, err)

	_, err = e.CreateReservation(ctx, bob.ID, 1, slot(9, 11), 2, "reclaimed", nil)
	assert.NoError(t, err)
}
