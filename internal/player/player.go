// Package player implements the per-room playback state machine: which
// song is playing, since when, what comes next, and whether the crowd
// has voted to skip it. Songs advance purely by wall-clock comparison
// on the read path; there is no background scheduler. All mutation of a
// room's state is serialized by a per-room mutex so concurrent polls
// and skip votes cannot race, while different rooms stay fully parallel.
package player

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jamsesh/jamsesh/internal/model"
)

// ErrPlayerNotFound indicates that no player exists for the given room.
// Handlers should translate this into an HTTP 404 response.
var ErrPlayerNotFound = errors.New("player not found")

// ErrNoActiveUsers is returned by Skip when the room has no active
// users. It is a non-fatal condition: no vote is recorded and the
// player state is left untouched.
var ErrNoActiveUsers = errors.New("no active users")

// SongPicker supplies the next song for a room. Implementations are
// expected to be slow (they hit the catalog store) and may fail; the
// player treats every failure as a best-effort refill miss.
type SongPicker interface {
	PickNext(ctx context.Context, roomID uint64) (model.Song, error)
}

// ActiveCounter reports how many users are currently active in a room.
// The skip quorum is computed from this count.
type ActiveCounter interface {
	ActiveCount(roomID uint64) int
}

// EventSink receives activity-feed entries produced by the player.
// AppendEvent attributes the entry to a user; AppendSystem records
// entries with no acting user, such as natural song transitions.
type EventSink interface {
	AppendEvent(ctx context.Context, roomID, userID uint64, message string)
	AppendSystem(ctx context.Context, roomID uint64, message string)
}

// Snapshot is the immutable view of a room's playback state returned
// to the request layer. SkipRequests lists the ids of users whose skip
// vote is currently standing.
type Snapshot struct {
	CurrentSong  model.Song   `json:"currentSong"`
	SongQueue    []model.Song `json:"songQueue"`
	StartTime    int64        `json:"startTime"` // ms since epoch
	SkipRequests []uint64     `json:"skipRequests"`
}

// SkipResult reports the outcome of a skip vote. When Skipped is true
// the advance already happened, the vote set was cleared and NewSong
// holds the song now playing.
type SkipResult struct {
	Skipped    bool        `json:"skipped"`
	SkipVotes  int         `json:"skipVotes"`
	TotalUsers int         `json:"totalUsers"`
	HasVoted   bool        `json:"hasVoted"`
	NewSong    *model.Song `json:"newSong,omitempty"`
}

// roomPlayer holds the mutable playback state of one room. Its mutex
// is the single exclusive section for that room; every state change
// happens under it.
type roomPlayer struct {
	mu          sync.Mutex
	currentSong model.Song
	queue       []model.Song
	startTime   time.Time
	skipVotes   map[uint64]struct{}
	lastActive  time.Time
}

// Manager owns the players of all rooms. The outer map is guarded by
// its own RWMutex; per-room state is guarded by the room's mutex, so
// operations on different rooms never contend.
type Manager struct {
	mu    sync.RWMutex
	rooms map[uint64]*roomPlayer

	picker SongPicker
	active ActiveCounter
	events EventSink

	// now is the clock; tests swap it to drive advances deterministically.
	now func() time.Time
}

// NewManager constructs a Manager with the given collaborators.
func NewManager(picker SongPicker, active ActiveCounter, events EventSink) *Manager {
	return &Manager{
		rooms:  make(map[uint64]*roomPlayer),
		picker: picker,
		active: active,
		events: events,
		now:    time.Now,
	}
}

// Create registers a player for a room seeded with the given songs.
// The first seed song starts playing immediately. Seeding with an
// empty queue is a programming error and is rejected.
func (m *Manager) Create(roomID uint64, seed []model.Song) error {
	if len(seed) == 0 {
		return errors.New("player seed queue is empty")
	}
	queue := make([]model.Song, len(seed))
	copy(queue, seed)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[roomID] = &roomPlayer{
		currentSong: queue[0],
		queue:       queue,
		startTime:   now,
		skipVotes:   make(map[uint64]struct{}),
		lastActive:  now,
	}
	return nil
}

// lookup returns the player for a room, or nil when none exists.
func (m *Manager) lookup(roomID uint64) *roomPlayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[roomID]
}

// Status returns the room's playback snapshot, advancing the queue
// first when the current song has played out. Advancing pops the
// finished song, promotes the next one and resets the clock and the
// skip votes; the replacement song is fetched outside the room lock so
// a slow catalog never blocks other requests for the room longer than
// the advance itself.
func (m *Manager) Status(ctx context.Context, roomID uint64) (Snapshot, error) {
	rp := m.lookup(roomID)
	if rp == nil {
		return Snapshot{}, ErrPlayerNotFound
	}

	rp.mu.Lock()
	now := m.now()
	rp.lastActive = now
	elapsed := now.Sub(rp.startTime)
	if elapsed < time.Duration(rp.currentSong.DurationMS)*time.Millisecond {
		// Fast path: nothing to do, snapshot and return.
		snap := rp.snapshotLocked()
		rp.mu.Unlock()
		return snap, nil
	}

	m.advanceLocked(ctx, roomID, rp)
	next := rp.currentSong
	rp.mu.Unlock()

	m.events.AppendSystem(ctx, roomID, "Now playing: "+next.Name)
	m.refill(ctx, roomID, rp)

	rp.mu.Lock()
	snap := rp.snapshotLocked()
	rp.mu.Unlock()
	return snap, nil
}

// Skip toggles the caller's skip vote and advances the song when the
// vote count reaches quorum (ceil of half the active users). A room
// with no active users accepts no votes at all.
func (m *Manager) Skip(ctx context.Context, roomID, userID uint64) (SkipResult, error) {
	rp := m.lookup(roomID)
	if rp == nil {
		return SkipResult{}, ErrPlayerNotFound
	}

	activeCount := m.active.ActiveCount(roomID)
	if activeCount == 0 {
		return SkipResult{}, ErrNoActiveUsers
	}

	rp.mu.Lock()
	rp.lastActive = m.now()

	// Toggle: a second vote from the same user withdraws the first.
	if _, voted := rp.skipVotes[userID]; voted {
		delete(rp.skipVotes, userID)
	} else {
		rp.skipVotes[userID] = struct{}{}
	}
	_, hasVoted := rp.skipVotes[userID]

	votesNeeded := (activeCount + 1) / 2
	if len(rp.skipVotes) < votesNeeded {
		res := SkipResult{
			Skipped:    false,
			SkipVotes:  len(rp.skipVotes),
			TotalUsers: activeCount,
			HasVoted:   hasVoted,
		}
		rp.mu.Unlock()
		m.events.AppendEvent(ctx, roomID, userID, "wants to skip the song")
		return res, nil
	}

	// Quorum reached: force the same advance the timer path performs.
	m.advanceLocked(ctx, roomID, rp)
	next := rp.currentSong
	rp.mu.Unlock()

	m.events.AppendEvent(ctx, roomID, userID, "skipped the song")
	m.events.AppendSystem(ctx, roomID, "Now playing: "+next.Name)
	m.refill(ctx, roomID, rp)

	return SkipResult{
		Skipped:    true,
		SkipVotes:  0,
		TotalUsers: activeCount,
		HasVoted:   false,
		NewSong:    &next,
	}, nil
}

// advanceLocked pops the finished song, promotes the next one and
// resets the start time and skip votes. The caller must hold rp.mu.
// When the pop would leave the queue empty, a fresh pick is forced
// synchronously so currentSong is never undefined; if even that fails,
// the old song is kept at the queue head and replays.
func (m *Manager) advanceLocked(ctx context.Context, roomID uint64, rp *roomPlayer) {
	prev := rp.currentSong
	rp.queue = rp.queue[1:]
	if len(rp.queue) == 0 {
		song, err := m.picker.PickNext(ctx, roomID)
		if err != nil {
			log.Printf("player: room %d queue exhausted and pick failed, replaying %q: %v",
				roomID, prev.Name, err)
			song = prev
		}
		rp.queue = []model.Song{song}
	}
	rp.currentSong = rp.queue[0]
	rp.startTime = m.now()
	rp.skipVotes = make(map[uint64]struct{})
}

// refill fetches one replacement song and appends it to the queue,
// keeping the steady-state length constant. It runs outside the room
// lock; a failed pick just leaves the queue one song shorter until the
// next advance.
func (m *Manager) refill(ctx context.Context, roomID uint64, rp *roomPlayer) {
	song, err := m.picker.PickNext(ctx, roomID)
	if err != nil {
		log.Printf("player: room %d refill failed, queue shrinks by one: %v", roomID, err)
		return
	}
	rp.mu.Lock()
	rp.queue = append(rp.queue, song)
	rp.mu.Unlock()
}

// snapshotLocked copies the room state into a Snapshot. The caller
// must hold rp.mu.
func (rp *roomPlayer) snapshotLocked() Snapshot {
	queue := make([]model.Song, len(rp.queue))
	copy(queue, rp.queue)
	votes := make([]uint64, 0, len(rp.skipVotes))
	for id := range rp.skipVotes {
		votes = append(votes, id)
	}
	return Snapshot{
		CurrentSong:  rp.currentSong,
		SongQueue:    queue,
		StartTime:    rp.startTime.UnixMilli(),
		SkipRequests: votes,
	}
}

// Remove drops the player for a room. Used by the idle-room sweeper.
func (m *Manager) Remove(roomID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
}

// ReapIdle removes every player whose last activity is older than
// maxIdle and returns the affected room ids so the caller can tear
// down the matching registry and presence state.
func (m *Manager) ReapIdle(maxIdle time.Duration) []uint64 {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	var reaped []uint64
	for id, rp := range m.rooms {
		rp.mu.Lock()
		idle := rp.lastActive.Before(cutoff)
		rp.mu.Unlock()
		if idle {
			delete(m.rooms, id)
			reaped = append(reaped, id)
		}
	}
	return reaped
}
