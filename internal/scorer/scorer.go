// Package scorer selects the next song for a room by weighing the
// attribute votes its guests have cast against the room's
// theme-filtered catalog. Scoring is an unweighted additive tally
// across the three categorical axes (genre, tempo, mood); ties and the
// no-votes case resolve by uniform random choice, so selection is
// intentionally non-deterministic.
package scorer

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/jamsesh/jamsesh/internal/model"
)

// SongSource provides theme-filtered catalog reads.
type SongSource interface {
	SongsByTheme(ctx context.Context, themeID uint64) ([]model.Song, error)
	RandomSongByTheme(ctx context.Context, themeID uint64) (model.Song, error)
}

// ThemeSource resolves the theme a room was created with.
type ThemeSource interface {
	ThemeID(ctx context.Context, sessionID uint64) (uint64, error)
}

// VoteSource returns all attribute votes recorded for a room's session.
type VoteSource interface {
	VotesBySession(ctx context.Context, sessionID uint64) ([]model.AttributeVote, error)
}

// Scorer implements the player.SongPicker contract on top of the
// catalog store. Every store call shares one deadline; a timeout is
// treated like any other lookup failure and degrades to the random
// fallback.
type Scorer struct {
	songs   SongSource
	themes  ThemeSource
	votes   VoteSource
	timeout time.Duration
}

// New constructs a Scorer. A non-positive timeout disables the deadline.
func New(songs SongSource, themes ThemeSource, votes VoteSource, timeout time.Duration) *Scorer {
	return &Scorer{songs: songs, themes: themes, votes: votes, timeout: timeout}
}

// PickNext returns the next song to enqueue for the room. The room id
// doubles as the session id in storage.
//
// Lookup failures degrade in two stages: a failed catalog or vote read
// falls back to a single random pick for the theme, and only when that
// fallback also fails does PickNext return an error, letting the
// player run its queue one song short.
func (s *Scorer) PickNext(ctx context.Context, roomID uint64) (model.Song, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	themeID, err := s.themes.ThemeID(ctx, roomID)
	if err != nil {
		// Without the theme there is nothing to fall back to.
		return model.Song{}, err
	}

	songs, err := s.songs.SongsByTheme(ctx, themeID)
	if err != nil {
		log.Printf("scorer: room %d catalog lookup failed, falling back to random: %v", roomID, err)
		return s.songs.RandomSongByTheme(ctx, themeID)
	}

	votes, err := s.votes.VotesBySession(ctx, roomID)
	if err != nil {
		log.Printf("scorer: room %d vote lookup failed, falling back to random: %v", roomID, err)
		return s.songs.RandomSongByTheme(ctx, themeID)
	}

	if len(votes) == 0 {
		// Nobody has picked anything yet: pure random over the theme.
		return songs[rand.Intn(len(songs))], nil
	}

	return pick(songs, votes), nil
}

// pick tallies votes per axis and returns a uniformly random song from
// the maximal-score set. Each axis contributes independently; a song
// scores the sum of the vote counts matching its own genre, tempo and
// mood values.
func pick(songs []model.Song, votes []model.AttributeVote) model.Song {
	genre := make(map[string]int)
	tempo := make(map[string]int)
	mood := make(map[string]int)
	for _, v := range votes {
		if v.Genre != "" {
			genre[v.Genre]++
		}
		if v.Tempo != "" {
			tempo[v.Tempo]++
		}
		if v.Mood != "" {
			mood[v.Mood]++
		}
	}

	bestScore := -1
	var best []model.Song
	for _, song := range songs {
		score := genre[song.Genre] + tempo[song.Tempo] + mood[song.Mood]
		switch {
		case score > bestScore:
			bestScore = score
			best = best[:0]
			best = append(best, song)
		case score == bestScore:
			best = append(best, song)
		}
	}
	return best[rand.Intn(len(best))]
}
