package models

import "time"

// Album belongs to exactly one artist.
type Album struct {
	ID          int64      `json:"id"`
	ArtistID    int64      `json:"artist_id"`
	Name        string     `json:"name"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`

	// Populated by the store
	Songs []Song `json:"songs,omitempty"`
}

// Song belongs to one artist and optionally to one of that artist's albums.
// A nil AlbumID marks a single.
type Song struct {
	ID          int64      `json:"id"`
	ArtistID    int64      `json:"artist_id"`
	AlbumID     *int64     `json:"album_id,omitempty"`
	Name        string     `json:"name"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
}

// IsSingle reports whether the song is not attached to an album.
func (s Song) IsSingle() bool {
	return s.AlbumID == nil
}
