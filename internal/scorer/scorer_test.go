package scorer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamsesh/jamsesh/internal/model"
)

type fakeSongs struct {
	songs     []model.Song
	songsErr  error
	random    model.Song
	randomErr error
}

func (f *fakeSongs) SongsByTheme(ctx context.Context, themeID uint64) ([]model.Song, error) {
	return f.songs, f.songsErr
}

func (f *fakeSongs) RandomSongByTheme(ctx context.Context, themeID uint64) (model.Song, error) {
	return f.random, f.randomErr
}

type fakeThemes struct {
	id  uint64
	err error
}

func (f *fakeThemes) ThemeID(ctx context.Context, sessionID uint64) (uint64, error) {
	return f.id, f.err
}

type fakeVotes struct {
	votes []model.AttributeVote
	err   error
}

func (f *fakeVotes) VotesBySession(ctx context.Context, sessionID uint64) ([]model.AttributeVote, error) {
	return f.votes, f.err
}

func catalog() []model.Song {
	return []model.Song{
		{ID: 1, Name: "Thunder Road", Genre: "Rock", Tempo: "Fast", Mood: "Energetic"},
		{ID: 2, Name: "Night Drive", Genre: "Synthwave", Tempo: "Medium", Mood: "Dreamy"},
		{ID: 3, Name: "Stone Cold", Genre: "Rock", Tempo: "Slow", Mood: "Dark"},
		{ID: 4, Name: "Morning Dew", Genre: "Folk", Tempo: "Slow", Mood: "Calm"},
	}
}

func TestPickNextNoVotesIsUniformish(t *testing.T) {
	s := New(&fakeSongs{songs: catalog()}, &fakeThemes{id: 1}, &fakeVotes{}, time.Second)

	const trials = 400
	counts := make(map[uint64]int)
	for i := 0; i < trials; i++ {
		song, err := s.PickNext(context.Background(), 42)
		require.NoError(t, err)
		counts[song.ID]++
	}

	// Distribution property, not exact output: every song shows up and
	// none dominates.
	for _, c := range catalog() {
		assert.Greater(t, counts[c.ID], 0, "song %d never chosen in %d trials", c.ID, trials)
		assert.Less(t, counts[c.ID], trials/2, "song %d chosen suspiciously often", c.ID)
	}
}

func TestPickNextConcentratedVotesPickRock(t *testing.T) {
	votes := []model.AttributeVote{
		{Genre: "Rock"},
		{Genre: "Rock"},
		{Genre: "Rock"},
	}
	s := New(&fakeSongs{songs: catalog()}, &fakeThemes{id: 1}, &fakeVotes{votes: votes}, time.Second)

	for i := 0; i < 50; i++ {
		song, err := s.PickNext(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, "Rock", song.Genre)
	}
}

func TestPickNextScoresAcrossAxes(t *testing.T) {
	// One Rock vote ties the two Rock songs, a Slow vote breaks the tie
	// in favor of the slow one.
	votes := []model.AttributeVote{
		{Genre: "Rock"},
		{Tempo: "Slow"},
	}
	s := New(&fakeSongs{songs: catalog()}, &fakeThemes{id: 1}, &fakeVotes{votes: votes}, time.Second)

	for i := 0; i < 20; i++ {
		song, err := s.PickNext(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), song.ID, "Stone Cold scores Rock+Slow=2, everything else at most 1")
	}
}

func TestPickNextTieBreaksRandomly(t *testing.T) {
	votes := []model.AttributeVote{{Genre: "Rock"}}
	s := New(&fakeSongs{songs: catalog()}, &fakeThemes{id: 1}, &fakeVotes{votes: votes}, time.Second)

	seen := make(map[uint64]bool)
	for i := 0; i < 200; i++ {
		song, err := s.PickNext(context.Background(), 42)
		require.NoError(t, err)
		require.Equal(t, "Rock", song.Genre)
		seen[song.ID] = true
	}
	assert.True(t, seen[1] && seen[3], "both max-scoring songs appear over many trials")
}

func TestPickNextCatalogErrorFallsBackToRandom(t *testing.T) {
	fallback := model.Song{ID: 9, Name: "Fallback"}
	s := New(&fakeSongs{songsErr: errors.New("boom"), random: fallback},
		&fakeThemes{id: 1}, &fakeVotes{}, time.Second)

	song, err := s.PickNext(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, song.ID)
}

func TestPickNextVoteErrorFallsBackToRandom(t *testing.T) {
	fallback := model.Song{ID: 9, Name: "Fallback"}
	s := New(&fakeSongs{songs: catalog(), random: fallback},
		&fakeThemes{id: 1}, &fakeVotes{err: errors.New("boom")}, time.Second)

	song, err := s.PickNext(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, song.ID)
}

func TestPickNextTotalFailureReturnsError(t *testing.T) {
	s := New(&fakeSongs{songsErr: errors.New("boom"), randomErr: errors.New("boom too")},
		&fakeThemes{id: 1}, &fakeVotes{}, time.Second)

	_, err := s.PickNext(context.Background(), 42)
	assert.Error(t, err, "the player degrades the queue by one on a nil pick")
}

func TestPickNextUnknownThemeErrors(t *testing.T) {
	s := New(&fakeSongs{songs: catalog()}, &fakeThemes{err: errors.New("no session")},
		&fakeVotes{}, time.Second)

	_, err := s.PickNext(context.Background(), 42)
	assert.Error(t, err)
}
