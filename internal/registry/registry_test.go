package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamsesh/jamsesh/internal/queue"
)

type fakeActors struct {
	name, avatar string
	ok           bool
}

func (f *fakeActors) Cached(roomID, userID uint64) (string, string, bool) {
	return f.name, f.avatar, f.ok
}

type fakeFallback struct {
	name, avatar string
	err          error
}

func (f *fakeFallback) UserByID(ctx context.Context, userID uint64) (string, string, error) {
	return f.name, f.avatar, f.err
}

func TestCreateAndGet(t *testing.T) {
	r := New(&fakeActors{}, &fakeFallback{err: errors.New("no store")}, nil)
	r.Create(1, "Friday Night")

	room, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Friday Night", room.RoomName)
	assert.Empty(t, room.Events)

	_, err = r.Get(2)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAppendEventUsesPresenceCache(t *testing.T) {
	r := New(&fakeActors{name: "Alma", avatar: "alma.png", ok: true}, &fakeFallback{}, nil)
	r.Create(1, "Friday Night")

	r.AppendEvent(context.Background(), 1, 10, "wants to skip the song")

	room, err := r.Get(1)
	require.NoError(t, err)
	require.Len(t, room.Events, 1)
	assert.Equal(t, "Alma wants to skip the song", room.Events[0].Event)
	assert.Equal(t, uint64(10), room.Events[0].UserID)
	assert.Equal(t, "alma.png", room.Events[0].UserAvatar)
	assert.NotZero(t, room.Events[0].Timestamp)
}

func TestAppendEventFallsBackToStore(t *testing.T) {
	r := New(&fakeActors{}, &fakeFallback{name: "Bo", avatar: "bo.png"}, nil)
	r.Create(1, "Friday Night")

	r.AppendEvent(context.Background(), 1, 11, "liked the song")

	room, err := r.Get(1)
	require.NoError(t, err)
	require.Len(t, room.Events, 1)
	assert.Equal(t, "Bo liked the song", room.Events[0].Event)
}

func TestAppendEventAnonymousWhenAttributionFails(t *testing.T) {
	r := New(&fakeActors{}, &fakeFallback{err: errors.New("store down")}, nil)
	r.Create(1, "Friday Night")

	r.AppendEvent(context.Background(), 1, 11, "liked the song")

	room, err := r.Get(1)
	require.NoError(t, err)
	require.Len(t, room.Events, 1)
	assert.Equal(t, "Someone liked the song", room.Events[0].Event, "a feed entry is never dropped over attribution")
}

func TestAppendSystemEvent(t *testing.T) {
	r := New(&fakeActors{}, &fakeFallback{}, nil)
	r.Create(1, "Friday Night")

	r.AppendSystem(context.Background(), 1, "Now playing: Thunder Road")

	room, err := r.Get(1)
	require.NoError(t, err)
	require.Len(t, room.Events, 1)
	assert.Equal(t, "Now playing: Thunder Road", room.Events[0].Event)
	assert.Zero(t, room.Events[0].UserID)
}

func TestAppendCreatesMissingRoom(t *testing.T) {
	r := New(&fakeActors{name: "Alma", ok: true}, &fakeFallback{}, nil)

	r.AppendEvent(context.Background(), 7, 10, "liked the song")

	room, err := r.Get(7)
	require.NoError(t, err)
	assert.Len(t, room.Events, 1)
}

func TestEventsAreOrderedNewestLast(t *testing.T) {
	r := New(&fakeActors{name: "Alma", ok: true}, &fakeFallback{}, nil)
	r.Create(1, "Friday Night")

	r.AppendEvent(context.Background(), 1, 10, "first")
	r.AppendEvent(context.Background(), 1, 10, "second")

	room, err := r.Get(1)
	require.NoError(t, err)
	require.Len(t, room.Events, 2)
	assert.Equal(t, "Alma first", room.Events[0].Event)
	assert.Equal(t, "Alma second", room.Events[1].Event)
}

func TestGetReturnsCopy(t *testing.T) {
	r := New(&fakeActors{name: "Alma", ok: true}, &fakeFallback{}, nil)
	r.Create(1, "Friday Night")
	r.AppendEvent(context.Background(), 1, 10, "first")

	room, err := r.Get(1)
	require.NoError(t, err)
	room.Events[0].Event = "mutated"

	again, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Alma first", again.Events[0].Event)
}

func TestRemove(t *testing.T) {
	r := New(&fakeActors{}, &fakeFallback{}, nil)
	r.Create(1, "Friday Night")
	r.Remove(1)

	_, err := r.Get(1)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAppendForwardsToBroker(t *testing.T) {
	published := make(chan queue.RoomActivityEvent, 1)
	publish := func(ctx context.Context, ev queue.RoomActivityEvent) error {
		published <- ev
		return nil
	}
	r := New(&fakeActors{name: "Alma", ok: true}, &fakeFallback{}, publish)
	r.Create(1, "Friday Night")

	r.AppendEvent(context.Background(), 1, 10, "wants to skip the song")

	select {
	case ev := <-published:
		assert.Equal(t, uint64(1), ev.RoomID)
		assert.Equal(t, uint64(10), ev.UserID)
		assert.Equal(t, "Alma wants to skip the song", ev.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded to the broker")
	}
}
