package model

// Song represents one row of the songs table with its categorical
// attributes already resolved to display names.  The catalog joins the
// genre, tempo, theme and mood reference tables at query time, so the
// struct carries names rather than foreign keys.
//
// Fields:
//  ID          – primary key identifier of the song.
//  Name        – song title.
//  Artist      – performing artist.
//  CoverImage  – URL or path of the cover art.
//  DurationMS  – playback length in milliseconds.
//  Genre       – resolved genre display name.
//  Tempo       – resolved tempo display name.
//  Theme       – resolved theme display name.
//  Mood        – resolved mood display name.
//  ReleaseYear – year of release.
type Song struct {
	ID          uint64 `json:"songs_id"`     // songs.songs_id
	Name        string `json:"song_name"`    // songs.song_name
	Artist      string `json:"artist"`       // songs.artist
	CoverImage  string `json:"cover_image"`  // songs.cover_image
	DurationMS  int64  `json:"duration"`     // songs.duration (milliseconds)
	Genre       string `json:"genre_name"`   // genre.genre_name via songs.genre
	Tempo       string `json:"tempo_name"`   // tempo.tempo_name via songs.tempo
	Theme       string `json:"theme_name"`   // theme.theme_name via songs.theme
	Mood        string `json:"mood_name"`    // mood.mood_name via songs.mood
	ReleaseYear int    `json:"release_year"` // songs.release_year
}

// Reference is a row of one of the categorical reference tables
// (theme, genre, tempo, mood).  All four share the same id/name shape.
type Reference struct {
	ID   uint64 `json:"id"`   // primary key of the reference row
	Name string `json:"name"` // display name
}
