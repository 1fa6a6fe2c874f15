package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomLockerSerializesSameRoom(t *testing.T) {
	l := NewRoomLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, 1, time.Second)
	require.NoError(t, err)

	// The guard is held, so a second acquire with a short wait times out.
	_, err = l.Acquire(ctx, 1, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrBusy)

	release()
	release2, err := l.Acquire(ctx, 1, time.Second)
	require.NoError(t, err)
	release2()
}

func TestRoomLockerIndependentRooms(t *testing.T) {
	l := NewRoomLocker()
	ctx := context.Background()

	release1, err := l.Acquire(ctx, 1, time.Second)
	require.NoError(t, err)
	defer release1()

	// Holding room 1 must not block room 2.
	release2, err := l.Acquire(ctx, 2, 20*time.Millisecond)
	require.NoError(t, err)
	release2()
}

func TestRoomLockerContextCancel(t *testing.T) {
	l := NewRoomLocker()

	release, err := l.Acquire(context.Background(), 1, time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, 1, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRoomLockerReleaseIsIdempotent(t *testing.T) {
	l := NewRoomLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, 1, time.Second)
	require.NoError(t, err)
	release()
	release() // second call must not unlock someone else's guard

	releaseA, err := l.Acquire(ctx, 1, time.Second)
	require.NoError(t, err)
	defer releaseA()

	_, err = l.Acquire(ctx, 1, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestRoomLockerHandsOverToWaiter(t *testing.T) {
	l := NewRoomLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, 1, time.Second)
	require.NoError(t, err)

	got := make(chan error, 1)
	go func() {
		r, err := l.Acquire(ctx, 1, time.Second)
		if err == nil {
			r()
		}
		got <- err
	}()

	time.Sleep(10 * time.Millisecond)
	release()

	select {
	case err := <-got:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the guard")
	}
}
