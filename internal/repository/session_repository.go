// Package repository contains data access logic for sessions and
// session users. A session is the durable record of a party room; the
// users it owns are the opaque identities minted when guests join.
package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// SessionRepo manages persistence for the sessions and session_users
// tables.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the provided database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a new session row and returns its generated id. The
// current song is recorded so the session survives a process restart
// with a sensible starting point even though live playback state is
// kept in memory.
func (r *SessionRepo) Create(ctx context.Context, roomName string, themeID, currentSongID uint64, joinCode string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (room_name, room_theme, current_song, join_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, UTC_TIMESTAMP(), UTC_TIMESTAMP())`,
		roomName, themeID, currentSongID, joinCode)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session insert id: %w", err)
	}
	return uint64(id), nil
}

// ThemeID resolves the theme a session was created with. Returns
// ErrSessionNotFound when the room id does not exist.
func (r *SessionRepo) ThemeID(ctx context.Context, sessionID uint64) (uint64, error) {
	var themeID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT room_theme FROM sessions WHERE sessions_id = ?`, sessionID).Scan(&themeID)
	if err == sql.ErrNoRows {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query session theme: %w", err)
	}
	return themeID, nil
}

// CreateUser inserts a session user and returns the generated id. The
// id is the only credential a guest ever holds.
func (r *SessionRepo) CreateUser(ctx context.Context, sessionID uint64, name, profileImage string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO session_users (name, session_id, profile_image) VALUES (?, ?, ?)`,
		name, sessionID, profileImage)
	if err != nil {
		return 0, fmt.Errorf("insert session user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session user insert id: %w", err)
	}
	return uint64(id), nil
}

// UserInSession loads a user scoped to the given session. A user id
// that exists under another session is reported as ErrUserNotFound,
// so a guest cannot heartbeat into a room they never joined.
func (r *SessionRepo) UserInSession(ctx context.Context, sessionID, userID uint64) (name, profileImage string, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT name, profile_image FROM session_users
		 WHERE session_users_id = ? AND session_id = ?`,
		userID, sessionID).Scan(&name, &profileImage)
	if err == sql.ErrNoRows {
		return "", "", ErrUserNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("query session user: %w", err)
	}
	return name, profileImage, nil
}

// UserByID loads a user by id alone. Used as the activity-feed
// fallback when the presence tracker has no cached entry for the actor.
func (r *SessionRepo) UserByID(ctx context.Context, userID uint64) (name, profileImage string, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT name, profile_image FROM session_users WHERE session_users_id = ?`,
		userID).Scan(&name, &profileImage)
	if err == sql.ErrNoRows {
		return "", "", ErrUserNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("query user: %w", err)
	}
	return name, profileImage, nil
}
