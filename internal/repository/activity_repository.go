// Package repository contains data access logic for attribute votes.
// The user_activity table is append-only: rows are inserted when a
// guest picks a genre/tempo/mood and are only ever read back in
// aggregate by the preference scorer.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jamsesh/jamsesh/internal/model"
)

// Attribute axes accepted by InsertAttributeVote. The axis selects a
// fixed column expression; caller input never reaches the SQL text.
const (
	AxisGenre = "genre"
	AxisTempo = "tempo"
	AxisMood  = "mood"
)

// ErrUnknownAxis is returned when an attribute vote names an axis other
// than genre, tempo or mood. Handlers should translate this into an
// HTTP 400 response.
var ErrUnknownAxis = errors.New("unknown attribute axis")

// ActivityRepo manages persistence for the user_activity table.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo returns a new ActivityRepo bound to the provided database.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// InsertAttributeVote records a single-axis preference vote. Only one
// of the three axis columns is populated per row; the unset columns
// stay empty so the scorer can tally each axis independently.
func (r *ActivityRepo) InsertAttributeVote(ctx context.Context, userID, sessionID uint64, axis, value string) error {
	var q string
	switch axis {
	case AxisGenre:
		q = `INSERT INTO user_activity (user_id, session_id, genre, tempo, mood) VALUES (?, ?, ?, '', '')`
	case AxisTempo:
		q = `INSERT INTO user_activity (user_id, session_id, genre, tempo, mood) VALUES (?, ?, '', ?, '')`
	case AxisMood:
		q = `INSERT INTO user_activity (user_id, session_id, genre, tempo, mood) VALUES (?, ?, '', '', ?)`
	default:
		return ErrUnknownAxis
	}
	if _, err := r.db.ExecContext(ctx, q, userID, sessionID, value); err != nil {
		return fmt.Errorf("insert attribute vote: %w", err)
	}
	return nil
}

// VotesBySession returns every attribute vote cast by any user who has
// ever joined the session. The scorer tallies these into per-axis
// frequency maps; an empty result triggers its pure random fallback.
func (r *ActivityRepo) VotesBySession(ctx context.Context, sessionID uint64) ([]model.AttributeVote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ua.genre, ua.tempo, ua.mood
		 FROM user_activity ua
		 JOIN session_users su ON ua.user_id = su.session_users_id
		 WHERE su.session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query attribute votes: %w", err)
	}
	defer rows.Close()
	var votes []model.AttributeVote
	for rows.Next() {
		var v model.AttributeVote
		if err := rows.Scan(&v.Genre, &v.Tempo, &v.Mood); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
