// Package handler exposes the HTTP handlers of the party service.
// This file defines the party lifecycle endpoints: creating a room,
// joining it as a guest, polling the combined room snapshot, voting to
// skip, and recording attribute picks and likes. The poll endpoint is
// the sole synchronization point of the system: it drives the
// heartbeat, the playback clock check and the presence eviction.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jamsesh/jamsesh/internal/model"
	"github.com/jamsesh/jamsesh/internal/player"
	"github.com/jamsesh/jamsesh/internal/presence"
	"github.com/jamsesh/jamsesh/internal/registry"
	"github.com/jamsesh/jamsesh/internal/repository"
)

// PartyHandler groups the collaborators needed to run party rooms.
// Sessions and Activity talk to the durable store; Players, Presence
// and Rooms hold the live in-memory state.
type PartyHandler struct {
	Sessions *repository.SessionRepo  // session and session_users rows
	Songs    *repository.SongRepo     // catalog reads for queue seeding
	Activity *repository.ActivityRepo // durable attribute votes
	Players  *player.Manager          // per-room playback state machines
	Presence *presence.Tracker        // per-room active user sets
	Rooms    *registry.Registry       // room metadata and activity feeds

	// QueueLength is the number of songs a new room is seeded with,
	// which is also the queue's steady-state length.
	QueueLength int
}

// NewPartyHandler constructs a PartyHandler. All dependencies must be
// non-nil.
func NewPartyHandler(sessions *repository.SessionRepo, songs *repository.SongRepo, activity *repository.ActivityRepo,
	players *player.Manager, pres *presence.Tracker, rooms *registry.Registry, queueLength int) *PartyHandler {
	if sessions == nil || songs == nil || activity == nil || players == nil || pres == nil || rooms == nil {
		panic("nil dependency passed to NewPartyHandler")
	}
	if queueLength < 1 {
		queueLength = 1
	}
	return &PartyHandler{
		Sessions:    sessions,
		Songs:       songs,
		Activity:    activity,
		Players:     players,
		Presence:    pres,
		Rooms:       rooms,
		QueueLength: queueLength,
	}
}

// pathID parses a numeric path parameter into a uint64 id.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// CreateParty handles POST /api/create-party. It seeds the song queue
// with random picks for the chosen theme, persists the session row and
// registers the in-memory room and player. The response carries the
// room id and the join code guests use via link or QR.
func (h *PartyHandler) CreateParty(c echo.Context) error {
	var body struct {
		RoomName string `json:"roomName"`
		Theme    uint64 `json:"theme"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomName == "" || body.Theme == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomName and theme are required"})
	}

	ctx := c.Request().Context()

	// Seed the queue with uniform random picks; attribute-weighted
	// selection only kicks in once guests have cast votes.
	seed := make([]model.Song, 0, h.QueueLength)
	for i := 0; i < h.QueueLength; i++ {
		song, err := h.Songs.RandomSongByTheme(ctx, body.Theme)
		if err != nil {
			if len(seed) > 0 {
				// A partial seed still satisfies the queue invariant.
				log.Printf("party: seeding room stopped at %d songs: %v", len(seed), err)
				break
			}
			if errors.Is(err, repository.ErrNoSongs) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "no songs for theme"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		seed = append(seed, song)
	}

	joinCode := uuid.NewString()
	roomID, err := h.Sessions.Create(ctx, body.RoomName, body.Theme, seed[0].ID, joinCode)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}

	h.Rooms.Create(roomID, body.RoomName)
	if err := h.Players.Create(roomID, seed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"room_id":   roomID,
		"join_code": joinCode,
	})
}

// CreateUser handles POST /api/room/:room_id/create-user. It mints the
// opaque guest identity for the room and returns its id, the only
// credential a guest ever holds.
func (h *PartyHandler) CreateUser(c echo.Context) error {
	roomID, err := pathID(c, "room_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var body struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	userID, err := h.Sessions.CreateUser(c.Request().Context(), roomID, body.Name, body.Avatar)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID})
}

// GetRoom handles GET /api/room/:room_id/:user_id, the poll endpoint
// clients hit on an interval. It records the caller's heartbeat, lets
// the player advance if the current song has played out, and returns
// the combined room snapshot.
func (h *PartyHandler) GetRoom(c echo.Context) error {
	roomID, err := pathID(c, "room_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	h.Presence.Heartbeat(ctx, roomID, userID)

	room, err := h.Rooms.Get(roomID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}

	snap, err := h.Players.Status(ctx, roomID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "player not found"})
	}

	users := h.Presence.ActiveUsers(roomID)

	return c.JSON(http.StatusOK, echo.Map{
		"room":       room,
		"users":      users,
		"user_count": len(users),
		"timestamp":  time.Now().UnixMilli(),
		"player":     snap,
	})
}

// SkipSong handles POST /api/room/:room_id/:user_id/skip-song. A vote
// toggles; reaching quorum forces the advance and the response carries
// the new song.
func (h *PartyHandler) SkipSong(c echo.Context) error {
	roomID, err := pathID(c, "room_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	res, err := h.Players.Skip(c.Request().Context(), roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, player.ErrPlayerNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "player not found"})
		case errors.Is(err, player.ErrNoActiveUsers):
			// Non-fatal: the vote is refused, nothing changed.
			return c.JSON(http.StatusOK, echo.Map{"success": false, "error": "no active users"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
	}

	resp := echo.Map{
		"success":    true,
		"skipped":    res.Skipped,
		"skipVotes":  res.SkipVotes,
		"totalUsers": res.TotalUsers,
		"hasVoted":   res.HasVoted,
	}
	if res.NewSong != nil {
		resp["newSong"] = res.NewSong
	}
	return c.JSON(http.StatusOK, resp)
}

// SelectAttribute handles POST /api/room/:room_id/:user_id/select-attribute.
// The vote is durable (it biases every future pick for the session) and
// is echoed to the activity feed.
func (h *PartyHandler) SelectAttribute(c echo.Context) error {
	roomID, err := pathID(c, "room_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var body struct {
		Attribute struct {
			Type  string `json:"type"`
			Value string `json:"value"`
			Name  string `json:"name"`
		} `json:"attribute"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Attribute.Type == "" || body.Attribute.Value == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing attribute type or value"})
	}

	ctx := c.Request().Context()
	if err := h.Activity.InsertAttributeVote(ctx, userID, roomID, body.Attribute.Type, body.Attribute.Value); err != nil {
		if errors.Is(err, repository.ErrUnknownAxis) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown attribute type"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	label := body.Attribute.Name
	if label == "" {
		label = body.Attribute.Value
	}
	h.Rooms.AppendEvent(ctx, roomID, userID, "added more "+label)

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// LikeSong handles POST /api/room/:room_id/:user_id/song-like. Likes
// only feed the activity stream; they carry no scoring weight.
func (h *PartyHandler) LikeSong(c echo.Context) error {
	return h.reaction(c, "liked the song")
}

// DislikeSong handles POST /api/room/:room_id/:user_id/song-dislike.
func (h *PartyHandler) DislikeSong(c echo.Context) error {
	return h.reaction(c, "disliked the song")
}

func (h *PartyHandler) reaction(c echo.Context, message string) error {
	roomID, err := pathID(c, "room_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	h.Rooms.AppendEvent(c.Request().Context(), roomID, userID, message)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
