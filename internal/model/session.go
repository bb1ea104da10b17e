package model

import "time"

// Session represents a row of the sessions table.  A session is the
// durable record of a party room; the in-memory room/player state is
// keyed by its ID.
//
// Fields:
//  ID          – primary key identifier of the session.
//  RoomName    – display name chosen by the host.
//  ThemeID     – theme the room's song catalog is filtered by.
//  CurrentSong – song that was playing when the row was last written.
//  JoinCode    – opaque code guests use to join (shared via link/QR).
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Session struct {
	ID          uint64    // sessions.sessions_id
	RoomName    string    // sessions.room_name
	ThemeID     uint64    // sessions.room_theme
	CurrentSong uint64    // sessions.current_song
	JoinCode    string    // sessions.join_code
	CreatedAt   time.Time // sessions.created_at
	UpdatedAt   time.Time // sessions.updated_at
}

// SessionUser represents a row of the session_users table: a guest who
// joined a particular session.  Users are scoped to their session and
// carry no credentials; the row id doubles as the opaque user id.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name entered at join time.
//  SessionID    – session the user belongs to.
//  ProfileImage – avatar reference.
type SessionUser struct {
	ID           uint64 `json:"session_users_id"` // session_users.session_users_id
	Name         string `json:"name"`             // session_users.name
	SessionID    uint64 `json:"session_id"`       // session_users.session_id
	ProfileImage string `json:"profile_image"`    // session_users.profile_image
}

// AttributeVote is a durable preference record from the user_activity
// table.  Each row carries at most one value per categorical axis;
// empty strings mean the axis was not part of that vote.  Votes are
// append-only and only ever aggregated, never mutated.
type AttributeVote struct {
	Genre string // user_activity.genre (may be empty)
	Tempo string // user_activity.tempo (may be empty)
	Mood  string // user_activity.mood  (may be empty)
}
