// Package repository contains data access logic for the song catalog.
// This file defines repository methods for songs and the categorical
// reference tables (theme, genre, tempo, mood). Songs are always read
// with their reference values joined so callers receive display names
// rather than foreign keys.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"fmt"          // fmt for error wrapping

	"github.com/jamsesh/jamsesh/internal/model"
)

// songColumns is the shared select list for song queries. Every song
// read path joins the four reference tables, mirroring the catalog
// schema where songs store foreign keys into theme/genre/tempo/mood.
const songColumns = `
	so.songs_id,
	so.song_name,
	so.artist,
	so.cover_image,
	so.duration,
	g.genre_name,
	te.tempo_name,
	th.theme_name,
	mo.mood_name,
	so.release_year`

const songJoins = `
	FROM songs so
	JOIN genre g  ON so.genre = g.genre_id
	JOIN tempo te ON so.tempo = te.tempo_id
	JOIN theme th ON so.theme = th.theme_id
	JOIN mood mo  ON so.mood = mo.mood_id`

// SongRepo manages read access to the songs table and the categorical
// reference tables.
type SongRepo struct {
	db *sql.DB
}

// NewSongRepo returns a new SongRepo bound to the provided database.
func NewSongRepo(db *sql.DB) *SongRepo { return &SongRepo{db: db} }

// scanSongs drains rows produced by a songColumns select into a slice.
func scanSongs(rows *sql.Rows) ([]model.Song, error) {
	defer rows.Close()
	var songs []model.Song
	for rows.Next() {
		var s model.Song
		if err := rows.Scan(&s.ID, &s.Name, &s.Artist, &s.CoverImage, &s.DurationMS,
			&s.Genre, &s.Tempo, &s.Theme, &s.Mood, &s.ReleaseYear); err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// AllSongs returns every song in the catalog with resolved attribute
// names. Used by the public catalog endpoint.
func (r *SongRepo) AllSongs(ctx context.Context) ([]model.Song, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+songColumns+songJoins)
	if err != nil {
		return nil, fmt.Errorf("query all songs: %w", err)
	}
	return scanSongs(rows)
}

// SongsByTheme returns all songs whose theme matches the given theme id.
// An empty result is returned as ErrNoSongs so the scorer can fall back
// without inspecting slice lengths.
func (r *SongRepo) SongsByTheme(ctx context.Context, themeID uint64) ([]model.Song, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+songColumns+songJoins+` WHERE so.theme = ?`, themeID)
	if err != nil {
		return nil, fmt.Errorf("query songs by theme: %w", err)
	}
	songs, err := scanSongs(rows)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, ErrNoSongs
	}
	return songs, nil
}

// RandomSongByTheme returns a single uniformly random song for the
// theme, or ErrNoSongs when the theme has no catalog entries. The
// randomness lives in the database (ORDER BY RAND()), matching how the
// queue is seeded at party creation.
func (r *SongRepo) RandomSongByTheme(ctx context.Context, themeID uint64) (model.Song, error) {
	var s model.Song
	err := r.db.QueryRowContext(ctx,
		`SELECT `+songColumns+songJoins+` WHERE so.theme = ? ORDER BY RAND() LIMIT 1`,
		themeID,
	).Scan(&s.ID, &s.Name, &s.Artist, &s.CoverImage, &s.DurationMS,
		&s.Genre, &s.Tempo, &s.Theme, &s.Mood, &s.ReleaseYear)
	if err == sql.ErrNoRows {
		return model.Song{}, ErrNoSongs
	}
	if err != nil {
		return model.Song{}, fmt.Errorf("query random song: %w", err)
	}
	return s, nil
}

// references runs a two-column select against one of the reference
// tables. The table and column names are compile-time constants chosen
// by the exported wrappers below; no caller input ever reaches the SQL.
func (r *SongRepo) references(ctx context.Context, query string) ([]model.Reference, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reference
	for rows.Next() {
		var ref model.Reference
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// Themes returns all rows of the theme reference table.
func (r *SongRepo) Themes(ctx context.Context) ([]model.Reference, error) {
	return r.references(ctx, `SELECT theme_id, theme_name FROM theme ORDER BY theme_id`)
}

// Genres returns all rows of the genre reference table.
func (r *SongRepo) Genres(ctx context.Context) ([]model.Reference, error) {
	return r.references(ctx, `SELECT genre_id, genre_name FROM genre ORDER BY genre_id`)
}

// Tempos returns all rows of the tempo reference table.
func (r *SongRepo) Tempos(ctx context.Context) ([]model.Reference, error) {
	return r.references(ctx, `SELECT tempo_id, tempo_name FROM tempo ORDER BY tempo_id`)
}

// Moods returns all rows of the mood reference table.
func (r *SongRepo) Moods(ctx context.Context) ([]model.Reference, error) {
	return r.references(ctx, `SELECT mood_id, mood_name FROM mood ORDER BY mood_id`)
}
