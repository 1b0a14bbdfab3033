package models

import (
	"fmt"
	"time"
)

// Show is one booking: an artist performing at a venue over [StartTime, EndTime].
type Show struct {
	ID        int64     `json:"id"`
	VenueID   int64     `json:"venue_id"`
	ArtistID  int64     `json:"artist_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Interval returns the booked time window of the show.
func (s Show) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// ShowDetail pairs a show with the full venue and artist rows it references.
type ShowDetail struct {
	Show
	Venue  Venue
	Artist Artist
}

// Interval is a closed time range [Start, End].
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether End is not before Start.
func (i Interval) Valid() bool {
	return !i.End.Before(i.Start)
}

// Overlaps reports whether the two closed intervals share at least one instant.
// Touching endpoints count as overlapping.
func (i Interval) Overlaps(o Interval) bool {
	return !i.Start.After(o.End) && !o.Start.After(i.End)
}

// ResourceKind names the bookable side of a show.
type ResourceKind int

const (
	ResourceVenue ResourceKind = iota + 1
	ResourceArtist
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceVenue:
		return "venue"
	case ResourceArtist:
		return "artist"
	default:
		return fmt.Sprintf("resource(%d)", int(k))
	}
}

// Column is the shows column holding the foreign key for this kind.
func (k ResourceKind) Column() string {
	switch k {
	case ResourceVenue:
		return "venue_id"
	case ResourceArtist:
		return "artist_id"
	default:
		return ""
	}
}

// Resource identifies one venue or artist.
type Resource struct {
	Kind ResourceKind
	ID   int64
}

// Of returns the id the show holds for the given resource kind.
func (s Show) Of(kind ResourceKind) int64 {
	if kind == ResourceArtist {
		return s.ArtistID
	}
	return s.VenueID
}
