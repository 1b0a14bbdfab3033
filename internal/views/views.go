// Package views assembles the read models served to clients. Every builder is
// a pure function of fetched rows and the supplied time, so a show moves from
// upcoming to past without any write.
package views

import (
	"time"

	"fyyur/internal/models"
)

// TimeLayout is the display format for show start times.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is the display format for release dates.
const DateLayout = "2006-01-02"

// Clock supplies the current time.
type Clock func() time.Time

// IsUpcoming reports whether a show starting at start has not begun before now.
func IsUpcoming(start, now time.Time) bool {
	return !start.Before(now)
}

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ShowSummary flattens one show with the venue and artist it pairs.
type ShowSummary struct {
	ShowID                   int64   `json:"show_id"`
	VenueID                  int64   `json:"venue_id"`
	VenueName                string  `json:"venue_name"`
	VenueCity                string  `json:"venue_city"`
	VenueState               string  `json:"venue_state"`
	VenueAddress             string  `json:"venue_address"`
	VenuePhone               string  `json:"venue_phone"`
	VenueImageLink           *string `json:"venue_image_link"`
	VenueFacebookLink        *string `json:"venue_facebook_link"`
	VenueWebsite             *string `json:"venue_website"`
	VenueSeekingTalent       bool    `json:"venue_seeking_talent"`
	VenueSeekingDescription  *string `json:"venue_seeking_description"`
	ArtistID                 int64   `json:"artist_id"`
	ArtistName               string  `json:"artist_name"`
	ArtistCity               string  `json:"artist_city"`
	ArtistState              string  `json:"artist_state"`
	ArtistPhone              string  `json:"artist_phone"`
	ArtistImageLink          *string `json:"artist_image_link"`
	ArtistFacebookLink       *string `json:"artist_facebook_link"`
	ArtistWebsite            *string `json:"artist_website"`
	ArtistSeekingVenue       bool    `json:"artist_seeking_venue"`
	ArtistSeekingDescription *string `json:"artist_seeking_description"`
	StartTime                string  `json:"start_time"`
	EndTime                  string  `json:"end_time"`
}

// Summarize builds the ShowSummary for one show.
func Summarize(d models.ShowDetail) ShowSummary {
	return ShowSummary{
		ShowID:                   d.ID,
		VenueID:                  d.VenueID,
		VenueName:                d.Venue.Name,
		VenueCity:                d.Venue.City,
		VenueState:               d.Venue.State,
		VenueAddress:             d.Venue.Address,
		VenuePhone:               d.Venue.Phone,
		VenueImageLink:           d.Venue.ImageLink,
		VenueFacebookLink:        d.Venue.FacebookLink,
		VenueWebsite:             d.Venue.Website,
		VenueSeekingTalent:       d.Venue.SeekingTalent,
		VenueSeekingDescription:  d.Venue.SeekingDescription,
		ArtistID:                 d.ArtistID,
		ArtistName:               d.Artist.Name,
		ArtistCity:               d.Artist.City,
		ArtistState:              d.Artist.State,
		ArtistPhone:              d.Artist.Phone,
		ArtistImageLink:          d.Artist.ImageLink,
		ArtistFacebookLink:       d.Artist.FacebookLink,
		ArtistWebsite:            d.Artist.Website,
		ArtistSeekingVenue:       d.Artist.SeekingVenue,
		ArtistSeekingDescription: d.Artist.SeekingDescription,
		StartTime:                FormatTime(d.StartTime),
		EndTime:                  FormatTime(d.EndTime),
	}
}

// SummarizeAll builds summaries in input order.
func SummarizeAll(shows []models.ShowDetail) []ShowSummary {
	out := make([]ShowSummary, 0, len(shows))
	for _, d := range shows {
		out = append(out, Summarize(d))
	}
	return out
}

// partition splits shows into past and upcoming relative to now, keeping order.
func partition(shows []models.ShowDetail, now time.Time) (past, upcoming []ShowSummary) {
	past = []ShowSummary{}
	upcoming = []ShowSummary{}
	for _, d := range shows {
		if IsUpcoming(d.StartTime, now) {
			upcoming = append(upcoming, Summarize(d))
		} else {
			past = append(past, Summarize(d))
		}
	}
	return past, upcoming
}

// VenueView is a venue with its genres and shows split by time.
type VenueView struct {
	models.Venue
	Genres             []string      `json:"genres"`
	GenreIDs           []int64       `json:"genre_ids"`
	PastShows          []ShowSummary `json:"past_shows"`
	UpcomingShows      []ShowSummary `json:"upcoming_shows"`
	PastShowsCount     int           `json:"past_shows_count"`
	UpcomingShowsCount int           `json:"upcoming_shows_count"`
}

// BuildVenueView assembles the venue view from the venue and its shows.
func BuildVenueView(v models.Venue, shows []models.ShowDetail, now time.Time) VenueView {
	past, upcoming := partition(shows, now)
	return VenueView{
		Venue:              v,
		Genres:             models.GenreNames(v.Genres),
		GenreIDs:           models.GenreIDs(v.Genres),
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     len(past),
		UpcomingShowsCount: len(upcoming),
	}
}

// AlbumView is an album with the names of its songs.
type AlbumView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	ReleaseDate string   `json:"release_date"`
	Songs       []string `json:"songs"`
}

// SongView is a single shown on the artist page.
type SongView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// ArtistView is an artist with genres, shows split by time, albums and singles.
type ArtistView struct {
	models.Artist
	Genres             []string      `json:"genres"`
	GenreIDs           []int64       `json:"genre_ids"`
	PastShows          []ShowSummary `json:"past_shows"`
	UpcomingShows      []ShowSummary `json:"upcoming_shows"`
	PastShowsCount     int           `json:"past_shows_count"`
	UpcomingShowsCount int           `json:"upcoming_shows_count"`
	Albums             []AlbumView   `json:"albums"`
	Songs              []SongView    `json:"songs"`
}

// BuildArtistView assembles the artist view. Songs that carry an album id are
// only listed under that album; the rest are singles.
func BuildArtistView(a models.Artist, shows []models.ShowDetail, albums []models.Album, songs []models.Song, now time.Time) ArtistView {
	past, upcoming := partition(shows, now)

	albumViews := make([]AlbumView, 0, len(albums))
	for _, album := range albums {
		names := make([]string, 0, len(album.Songs))
		for _, song := range album.Songs {
			names = append(names, song.Name)
		}
		albumViews = append(albumViews, AlbumView{
			ID:          album.ID,
			Name:        album.Name,
			ReleaseDate: formatDate(album.ReleaseDate),
			Songs:       names,
		})
	}

	singles := []SongView{}
	for _, song := range songs {
		if !song.IsSingle() {
			continue
		}
		singles = append(singles, SongView{
			ID:          song.ID,
			Name:        song.Name,
			ReleaseDate: formatDate(song.ReleaseDate),
		})
	}

	return ArtistView{
		Artist:             a,
		Genres:             models.GenreNames(a.Genres),
		GenreIDs:           models.GenreIDs(a.Genres),
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     len(past),
		UpcomingShowsCount: len(upcoming),
		Albums:             albumViews,
		Songs:              singles,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(DateLayout)
}
