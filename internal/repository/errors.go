// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the player core to distinguish between different failure
// scenarios. For example, ErrSessionNotFound indicates that a room id
// does not correspond to any persisted session, while ErrNoSongs
// signals that the catalog holds no song for the requested theme.
package repository

import "errors"

// ErrSessionNotFound is returned when a session row cannot be located
// for the given room id. Handlers should translate this into an HTTP
// 404 response.
var ErrSessionNotFound = errors.New("session not found")

// ErrUserNotFound is returned when a session user cannot be located,
// or when the user exists but belongs to a different session.
var ErrUserNotFound = errors.New("user not found")

// ErrNoSongs is returned when the catalog contains no song matching
// the requested theme. Callers on the playback path must treat this as
// a degradation, never as a fatal error.
var ErrNoSongs = errors.New("no songs for theme")
