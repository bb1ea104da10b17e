// Package presence tracks which users are currently active in each
// room. Activity is driven entirely by poll heartbeats: a user counts
// as active while their last heartbeat is within the recency window.
// Expired entries are evicted lazily on the read path, which is correct
// only because the active list is always recomputed before use and
// never cached.
package presence

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultActiveWindow is the recency window applied when the tracker
// is constructed with a non-positive window.
const DefaultActiveWindow = 10 * time.Second

// UserLookup hydrates a presence entry from the session store the
// first time a (room, user) pair heartbeats.
type UserLookup interface {
	UserInSession(ctx context.Context, sessionID, userID uint64) (name, profileImage string, err error)
}

// Entry is one active user as exposed to the room snapshot. LastSeen
// is ms since epoch, matching the client payload.
type Entry struct {
	UserID       uint64 `json:"session_users_id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
	LastSeen     int64  `json:"lastSeen"`
}

type userState struct {
	name         string
	profileImage string
	lastSeen     time.Time
}

// roomPresence guards one room's user map. Heartbeat writers and the
// active-list reader/evictor synchronize here, per room rather than
// globally, so rooms do not contend with each other.
type roomPresence struct {
	mu    sync.Mutex
	users map[uint64]*userState
}

// Tracker maintains the per-room active-user sets.
type Tracker struct {
	mu    sync.RWMutex
	rooms map[uint64]*roomPresence

	lookup UserLookup
	window time.Duration

	now func() time.Time
}

// NewTracker constructs a Tracker with the given store lookup and
// recency window.
func NewTracker(lookup UserLookup, window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultActiveWindow
	}
	return &Tracker{
		rooms:  make(map[uint64]*roomPresence),
		lookup: lookup,
		window: window,
		now:    time.Now,
	}
}

// room returns the presence set for a room, creating it on first use.
func (t *Tracker) room(roomID uint64) *roomPresence {
	t.mu.RLock()
	rp := t.rooms[roomID]
	t.mu.RUnlock()
	if rp != nil {
		return rp
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if rp = t.rooms[roomID]; rp == nil {
		rp = &roomPresence{users: make(map[uint64]*userState)}
		t.rooms[roomID] = rp
	}
	return rp
}

// Heartbeat marks the user as seen now. The first heartbeat for a
// (room, user) pair hydrates the display name and avatar from the
// session store; an unknown pairing or a store failure reports false
// without recording anything.
func (t *Tracker) Heartbeat(ctx context.Context, roomID, userID uint64) bool {
	rp := t.room(roomID)

	rp.mu.Lock()
	if u, ok := rp.users[userID]; ok {
		u.lastSeen = t.now()
		rp.mu.Unlock()
		return true
	}
	rp.mu.Unlock()

	// Store lookup happens outside the room lock; heartbeats for
	// already-known users must not wait on the database.
	name, avatar, err := t.lookup.UserInSession(ctx, roomID, userID)
	if err != nil {
		log.Printf("presence: room %d user %d hydration failed: %v", roomID, userID, err)
		return false
	}

	rp.mu.Lock()
	rp.users[userID] = &userState{name: name, profileImage: avatar, lastSeen: t.now()}
	rp.mu.Unlock()
	log.Printf("presence: user %d joined room %d", userID, roomID)
	return true
}

// ActiveUsers returns every user seen within the recency window and,
// as a side effect, permanently drops the ones that have expired.
func (t *Tracker) ActiveUsers(roomID uint64) []Entry {
	t.mu.RLock()
	rp := t.rooms[roomID]
	t.mu.RUnlock()
	if rp == nil {
		return []Entry{}
	}

	now := t.now()
	rp.mu.Lock()
	defer rp.mu.Unlock()
	active := make([]Entry, 0, len(rp.users))
	for id, u := range rp.users {
		if now.Sub(u.lastSeen) < t.window {
			active = append(active, Entry{
				UserID:       id,
				Name:         u.name,
				ProfileImage: u.profileImage,
				LastSeen:     u.lastSeen.UnixMilli(),
			})
		} else {
			log.Printf("presence: user %d timed out in room %d", id, roomID)
			delete(rp.users, id)
		}
	}
	return active
}

// ActiveCount reports the number of active users in the room. It runs
// the same eviction as ActiveUsers.
func (t *Tracker) ActiveCount(roomID uint64) int {
	return len(t.ActiveUsers(roomID))
}

// Cached returns the name and avatar recorded for the user without
// touching the store or the recency window. The activity feed uses it
// to attribute events; an expired-but-not-yet-evicted entry is still a
// valid attribution source.
func (t *Tracker) Cached(roomID, userID uint64) (name, profileImage string, ok bool) {
	t.mu.RLock()
	rp := t.rooms[roomID]
	t.mu.RUnlock()
	if rp == nil {
		return "", "", false
	}
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if u, found := rp.users[userID]; found {
		return u.name, u.profileImage, true
	}
	return "", "", false
}

// Forget drops a room's entire presence set. Used by the idle-room
// sweeper.
func (t *Tracker) Forget(roomID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rooms, roomID)
}
