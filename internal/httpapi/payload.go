package httpapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fyyur/internal/models"
	"fyyur/internal/views"
)

// genreValues holds the raw genre choices of a form. Ids may arrive as JSON
// numbers or strings; the string "new" asks for NewGenre to be created.
type genreValues []string

func (g *genreValues) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := make(genreValues, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			values = append(values, s)
			continue
		}
		values = append(values, strings.TrimSpace(string(item)))
	}
	*g = values
	return nil
}

func genreSelection(values genreValues, newGenre string) (models.GenreSelection, error) {
	sel, err := models.ParseGenreSelection(values, newGenre)
	if err != nil {
		return models.GenreSelection{}, badRequest(err.Error())
	}
	return sel, nil
}

type venuePayload struct {
	Name               string      `json:"name"`
	City               string      `json:"city"`
	State              string      `json:"state"`
	Address            string      `json:"address"`
	Phone              string      `json:"phone"`
	ImageLink          *string     `json:"image_link"`
	FacebookLink       *string     `json:"facebook_link"`
	Website            *string     `json:"website"`
	SeekingTalent      bool        `json:"seeking_talent"`
	SeekingDescription *string     `json:"seeking_description"`
	Genres             genreValues `json:"genres"`
	NewGenre           string      `json:"new_genre"`
}

func (p venuePayload) venue() models.Venue {
	return models.Venue{
		Name:               p.Name,
		City:               p.City,
		State:              p.State,
		Address:            p.Address,
		Phone:              p.Phone,
		ImageLink:          p.ImageLink,
		FacebookLink:       p.FacebookLink,
		Website:            p.Website,
		SeekingTalent:      p.SeekingTalent,
		SeekingDescription: p.SeekingDescription,
	}
}

type artistPayload struct {
	Name               string      `json:"name"`
	City               string      `json:"city"`
	State              string      `json:"state"`
	Phone              string      `json:"phone"`
	ImageLink          *string     `json:"image_link"`
	FacebookLink       *string     `json:"facebook_link"`
	Website            *string     `json:"website"`
	SeekingVenue       bool        `json:"seeking_venue"`
	SeekingDescription *string     `json:"seeking_description"`
	Genres             genreValues `json:"genres"`
	NewGenre           string      `json:"new_genre"`
}

func (p artistPayload) artist() models.Artist {
	return models.Artist{
		Name:               p.Name,
		City:               p.City,
		State:              p.State,
		Phone:              p.Phone,
		ImageLink:          p.ImageLink,
		FacebookLink:       p.FacebookLink,
		Website:            p.Website,
		SeekingVenue:       p.SeekingVenue,
		SeekingDescription: p.SeekingDescription,
	}
}

type albumPayload struct {
	Name        string  `json:"name"`
	ReleaseDate *string `json:"release_date"`
}

type songPayload struct {
	Name        string  `json:"name"`
	AlbumID     *int64  `json:"album_id"`
	ReleaseDate *string `json:"release_date"`
}

type showPayload struct {
	VenueID   int64  `json:"venue_id"`
	ArtistID  int64  `json:"artist_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// parseTimestamp accepts RFC 3339 or the display layout, read as UTC.
func parseTimestamp(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, badRequest(field + " is required")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(views.TimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, badRequest(fmt.Sprintf("invalid %s %q", field, value))
	}
	return t, nil
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(views.DateLayout, strings.TrimSpace(*value), time.UTC)
	if err != nil {
		return nil, badRequest(fmt.Sprintf("invalid release_date %q", *value))
	}
	return &t, nil
}
