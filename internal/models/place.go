package models

import (
	"strings"
	"time"
)

// Genre is a shared tag applied to venues and artists. Names are unique.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Venue represents a bookable music venue
type Venue struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	Address            string    `json:"address"`
	Phone              string    `json:"phone"`
	ImageLink          *string   `json:"image_link,omitempty"`
	FacebookLink       *string   `json:"facebook_link,omitempty"`
	Website            *string   `json:"website,omitempty"`
	SeekingTalent      bool      `json:"seeking_talent"`
	SeekingDescription *string   `json:"seeking_description,omitempty"`
	CreatedAt          time.Time `json:"created_at"`

	// Populated by the store, not a venues column
	Genres []Genre `json:"-"`
}

// Artist represents a performer that can be booked for shows
type Artist struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	Phone              string    `json:"phone"`
	ImageLink          *string   `json:"image_link,omitempty"`
	FacebookLink       *string   `json:"facebook_link,omitempty"`
	Website            *string   `json:"website,omitempty"`
	SeekingVenue       bool      `json:"seeking_venue"`
	SeekingDescription *string   `json:"seeking_description,omitempty"`
	CreatedAt          time.Time `json:"created_at"`

	Genres []Genre `json:"-"`
}

// ArtistListing is the {id, name} projection used by the artist index.
type ArtistListing struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// VenueListing is the cheap projection used by the grouped venue directory.
type VenueListing struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	City             string `json:"-"`
	State            string `json:"-"`
	NumUpcomingShows int    `json:"num_upcoming_shows"`
}

// GenreIDs returns the ids of the given genres in order.
func GenreIDs(genres []Genre) []int64 {
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// GenreNames returns the names of the given genres in order.
func GenreNames(genres []Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

// TrimOptional trims s and returns nil when nothing is left.
func TrimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
