// Package registry maps room ids to room metadata: the display name
// and the append-only activity feed. It is the only place events are
// appended. Rooms live in memory for the process lifetime unless the
// idle-room sweeper removes them.
package registry

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jamsesh/jamsesh/internal/queue"
)

// ErrRoomNotFound indicates that a room id is not registered.
// Handlers should translate this into an HTTP 404 response.
var ErrRoomNotFound = errors.New("room not found")

// Event is one entry of a room's activity feed, newest last.
type Event struct {
	UserID     uint64 `json:"userId,omitempty"`
	UserAvatar string `json:"userAvatar,omitempty"`
	Event      string `json:"event"`
	Timestamp  int64  `json:"timestamp"` // ms since epoch
}

// Room is the snapshot of a room's metadata returned to callers. The
// events slice is a copy; mutating it does not affect the registry.
type Room struct {
	RoomName string  `json:"roomName"`
	Events   []Event `json:"events"`
}

// ActorCache resolves a user's display name and avatar from the
// presence tracker's in-memory state.
type ActorCache interface {
	Cached(roomID, userID uint64) (name, profileImage string, ok bool)
}

// ActorFallback resolves a user from durable storage when the presence
// cache has no entry, e.g. for a user whose heartbeat lapsed.
type ActorFallback interface {
	UserByID(ctx context.Context, userID uint64) (name, profileImage string, err error)
}

// PublishFunc forwards an activity event to the message broker.
// Publishing is best-effort; the registry logs failures and moves on.
type PublishFunc func(ctx context.Context, ev queue.RoomActivityEvent) error

type room struct {
	name   string
	events []Event
}

// Registry holds all live rooms behind a single RWMutex. Appends are
// short (no I/O under the lock), so one lock for the whole map is fine.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uint64]*room

	actors   ActorCache
	fallback ActorFallback
	publish  PublishFunc // may be nil when no broker is configured

	now func() time.Time
}

// New constructs a Registry. publish may be nil to disable broker
// forwarding.
func New(actors ActorCache, fallback ActorFallback, publish PublishFunc) *Registry {
	return &Registry{
		rooms:    make(map[uint64]*room),
		actors:   actors,
		fallback: fallback,
		publish:  publish,
		now:      time.Now,
	}
}

// Create registers a room under the given id.
func (r *Registry) Create(roomID uint64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[roomID] = &room{name: name}
}

// Get returns a copy of the room's metadata, or ErrRoomNotFound.
func (r *Registry) Get(roomID uint64) (Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	events := make([]Event, len(rm.events))
	copy(events, rm.events)
	return Room{RoomName: rm.name, Events: events}, nil
}

// AppendEvent appends a timestamped, attributed entry to the room's
// feed. The actor's name comes from the presence cache when available,
// falling back to a store lookup, and finally to "Someone" so a feed
// entry is never lost over a failed attribution. A missing room is
// created on demand; this should not occur in normal flow but keeps
// the feed defensive against races with the sweeper.
func (r *Registry) AppendEvent(ctx context.Context, roomID, userID uint64, message string) {
	name := "Someone"
	avatar := ""
	if n, a, ok := r.actors.Cached(roomID, userID); ok {
		name, avatar = n, a
	} else if r.fallback != nil {
		if n, a, err := r.fallback.UserByID(ctx, userID); err == nil {
			name, avatar = n, a
		} else {
			log.Printf("registry: event attribution fallback failed for user %d: %v", userID, err)
		}
	}
	r.append(roomID, Event{
		UserID:     userID,
		UserAvatar: avatar,
		Event:      name + " " + message,
		Timestamp:  r.now().UnixMilli(),
	})
	r.forward(roomID, userID, name, name+" "+message)
}

// AppendSystem appends an unattributed entry, e.g. a song transition.
func (r *Registry) AppendSystem(ctx context.Context, roomID uint64, message string) {
	r.append(roomID, Event{Event: message, Timestamp: r.now().UnixMilli()})
	r.forward(roomID, 0, "", message)
}

func (r *Registry) append(roomID uint64, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{name: "Room"}
		r.rooms[roomID] = rm
	}
	rm.events = append(rm.events, ev)
}

// forward ships the event to the broker without blocking the request.
// A short independent deadline keeps a dead broker from piling up
// goroutines.
func (r *Registry) forward(roomID, userID uint64, userName, message string) {
	if r.publish == nil {
		return
	}
	ev := queue.RoomActivityEvent{
		RoomID:    roomID,
		UserID:    userID,
		UserName:  userName,
		Message:   message,
		Timestamp: r.now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.publish(ctx, ev); err != nil {
			log.Printf("registry: activity publish failed for room %d: %v", roomID, err)
		}
	}()
}

// Remove drops a room. Used by the idle-room sweeper.
func (r *Registry) Remove(roomID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, roomID)
}
