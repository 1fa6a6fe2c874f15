package booking

import (
	"context"
	"sync"
	"time"
)

// RoomLocker serializes guarded sections per room.  Each room id maps to a
// one-slot channel acting as a mutex; acquiring sends a token, releasing
// drains it.  Locks for different rooms are independent, so requests
// against different rooms never block one another.
//
// Entries are created on first use and kept for the life of the process;
// the set of rooms is small and administrator-controlled.
type RoomLocker struct {
	mu    sync.Mutex
	locks map[uint64]chan struct{}
}

// NewRoomLocker returns an empty lock table.
func NewRoomLocker() *RoomLocker {
	return &RoomLocker{locks: make(map[uint64]chan struct{})}
}

// lockFor returns the channel guarding roomID, creating it when absent.
func (l *RoomLocker) lockFor(roomID uint64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[roomID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[roomID] = ch
	}
	return ch
}

// Acquire takes the guard for roomID, waiting at most wait.  It returns a
// release function on success.  When the wait bound expires it returns
// ErrBusy; when the caller's context is cancelled first it returns the
// context error.  Either way no guard is held on failure.
func (l *RoomLocker) Acquire(ctx context.Context, roomID uint64, wait time.Duration) (func(), error) {
	ch := l.lockFor(roomID)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrBusy
	}
}
