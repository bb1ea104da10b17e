package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamsesh/jamsesh/internal/repository"
)

// fakeLookup resolves users from a fixed table keyed by (room, user).
type fakeLookup struct {
	known map[[2]uint64][2]string
}

func (f *fakeLookup) UserInSession(ctx context.Context, sessionID, userID uint64) (string, string, error) {
	if v, ok := f.known[[2]uint64{sessionID, userID}]; ok {
		return v[0], v[1], nil
	}
	return "", "", repository.ErrUserNotFound
}

func newTestTracker() (*Tracker, *time.Time) {
	lookup := &fakeLookup{known: map[[2]uint64][2]string{
		{1, 10}: {"Alma", "alma.png"},
		{1, 11}: {"Bo", "bo.png"},
	}}
	tr := NewTracker(lookup, 10*time.Second)
	clock := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return clock }
	return tr, &clock
}

func TestHeartbeatHydratesFirstSeenUser(t *testing.T) {
	tr, _ := newTestTracker()

	assert.True(t, tr.Heartbeat(context.Background(), 1, 10))

	users := tr.ActiveUsers(1)
	require.Len(t, users, 1)
	assert.Equal(t, uint64(10), users[0].UserID)
	assert.Equal(t, "Alma", users[0].Name)
	assert.Equal(t, "alma.png", users[0].ProfileImage)
}

func TestHeartbeatUnknownPairingRecordsNothing(t *testing.T) {
	tr, _ := newTestTracker()

	assert.False(t, tr.Heartbeat(context.Background(), 1, 99), "user never joined this room")
	assert.Empty(t, tr.ActiveUsers(1))
}

func TestActiveUsersEvictsExpiredEntries(t *testing.T) {
	tr, clock := newTestTracker()

	require.True(t, tr.Heartbeat(context.Background(), 1, 10))
	*clock = clock.Add(5 * time.Second)
	require.True(t, tr.Heartbeat(context.Background(), 1, 11))

	*clock = clock.Add(6 * time.Second) // user 10 is now 11s stale, user 11 only 6s
	users := tr.ActiveUsers(1)
	require.Len(t, users, 1)
	assert.Equal(t, uint64(11), users[0].UserID)

	// Eviction is permanent: the expired entry is gone, not filtered.
	_, _, ok := tr.Cached(1, 10)
	assert.False(t, ok)
}

func TestHeartbeatRefreshesWindow(t *testing.T) {
	tr, clock := newTestTracker()

	require.True(t, tr.Heartbeat(context.Background(), 1, 10))
	*clock = clock.Add(8 * time.Second)
	require.True(t, tr.Heartbeat(context.Background(), 1, 10))
	*clock = clock.Add(8 * time.Second)

	assert.Equal(t, 1, tr.ActiveCount(1), "16s since first beat but only 8s since the last")
}

func TestCachedIgnoresWindowUntilEviction(t *testing.T) {
	tr, clock := newTestTracker()

	require.True(t, tr.Heartbeat(context.Background(), 1, 10))
	*clock = clock.Add(15 * time.Second)

	// Stale but not yet evicted: still usable for event attribution.
	name, _, ok := tr.Cached(1, 10)
	assert.True(t, ok)
	assert.Equal(t, "Alma", name)
}

func TestActiveUsersUnknownRoom(t *testing.T) {
	tr, _ := newTestTracker()
	assert.Empty(t, tr.ActiveUsers(999))
	assert.Equal(t, 0, tr.ActiveCount(999))
}

func TestForgetDropsRoom(t *testing.T) {
	tr, _ := newTestTracker()

	require.True(t, tr.Heartbeat(context.Background(), 1, 10))
	tr.Forget(1)
	assert.Empty(t, tr.ActiveUsers(1))
	_, _, ok := tr.Cached(1, 10)
	assert.False(t, ok)
}
