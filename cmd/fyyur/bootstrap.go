package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"fyyur/internal/booking"
	"fyyur/internal/logging"
	"fyyur/internal/models"
	"fyyur/internal/store"
)

//go:embed seed.yaml
var seedFile []byte

type seedData struct {
	Genres  []string     `yaml:"genres"`
	Venues  []seedVenue  `yaml:"venues"`
	Artists []seedArtist `yaml:"artists"`
	Shows   []seedShow   `yaml:"shows"`
}

type seedVenue struct {
	Name               string   `yaml:"name"`
	Genres             []string `yaml:"genres"`
	Address            string   `yaml:"address"`
	City               string   `yaml:"city"`
	State              string   `yaml:"state"`
	Phone              string   `yaml:"phone"`
	Website            *string  `yaml:"website"`
	FacebookLink       *string  `yaml:"facebook_link"`
	ImageLink          *string  `yaml:"image_link"`
	SeekingTalent      bool     `yaml:"seeking_talent"`
	SeekingDescription *string  `yaml:"seeking_description"`
}

type seedArtist struct {
	Name               string      `yaml:"name"`
	Genres             []string    `yaml:"genres"`
	City               string      `yaml:"city"`
	State              string      `yaml:"state"`
	Phone              string      `yaml:"phone"`
	Website            *string     `yaml:"website"`
	FacebookLink       *string     `yaml:"facebook_link"`
	ImageLink          *string     `yaml:"image_link"`
	SeekingVenue       bool        `yaml:"seeking_venue"`
	SeekingDescription *string     `yaml:"seeking_description"`
	Albums             []seedAlbum `yaml:"albums"`
	Singles            []seedSong  `yaml:"singles"`
}

type seedAlbum struct {
	Name        string     `yaml:"name"`
	ReleaseDate *time.Time `yaml:"release_date"`
	Songs       []string   `yaml:"songs"`
}

type seedSong struct {
	Name        string     `yaml:"name"`
	ReleaseDate *time.Time `yaml:"release_date"`
}

type seedShow struct {
	Venue     string    `yaml:"venue"`
	Artist    string    `yaml:"artist"`
	StartTime time.Time `yaml:"start_time"`
	EndTime   time.Time `yaml:"end_time"`
}

func parseSeed(raw []byte) (seedData, error) {
	var data seedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return seedData{}, fmt.Errorf("parse seed file: %w", err)
	}
	return data, nil
}

// seedDemoData loads the embedded sample directory when the store has no
// venues yet. Shows go through the booking checker like any other request.
func seedDemoData(ctx context.Context, backend dataStore, logger *logging.Logger) error {
	existing, err := backend.RecentVenues(ctx, 1)
	if err != nil {
		return fmt.Errorf("check existing venues: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("store already has venues, skipping demo seed")
		return nil
	}

	data, err := parseSeed(seedFile)
	if err != nil {
		return err
	}
	if err := applySeed(ctx, backend, data); err != nil {
		return err
	}

	logger.Zerolog().Info().
		Int("venues", len(data.Venues)).
		Int("artists", len(data.Artists)).
		Int("shows", len(data.Shows)).
		Msg("demo data seeded")
	return nil
}

func applySeed(ctx context.Context, backend dataStore, data seedData) error {
	genreIDs, err := ensureGenres(ctx, backend, data.Genres)
	if err != nil {
		return err
	}
	selection := func(names []string) (models.GenreSelection, error) {
		var sel models.GenreSelection
		for _, name := range names {
			id, ok := genreIDs[name]
			if !ok {
				return models.GenreSelection{}, fmt.Errorf("seed references unknown genre %q", name)
			}
			sel.IDs = append(sel.IDs, id)
		}
		return sel, nil
	}

	venueIDs := make(map[string]int64, len(data.Venues))
	for _, v := range data.Venues {
		sel, err := selection(v.Genres)
		if err != nil {
			return err
		}
		created, err := backend.CreateVenue(ctx, models.Venue{
			Name:               v.Name,
			City:               v.City,
			State:              v.State,
			Address:            v.Address,
			Phone:              v.Phone,
			ImageLink:          v.ImageLink,
			FacebookLink:       v.FacebookLink,
			Website:            v.Website,
			SeekingTalent:      v.SeekingTalent,
			SeekingDescription: v.SeekingDescription,
		}, sel)
		if err != nil {
			return fmt.Errorf("seed venue %q: %w", v.Name, err)
		}
		venueIDs[v.Name] = created.ID
	}

	artistIDs := make(map[string]int64, len(data.Artists))
	for _, a := range data.Artists {
		sel, err := selection(a.Genres)
		if err != nil {
			return err
		}
		created, err := backend.CreateArtist(ctx, models.Artist{
			Name:               a.Name,
			City:               a.City,
			State:              a.State,
			Phone:              a.Phone,
			ImageLink:          a.ImageLink,
			FacebookLink:       a.FacebookLink,
			Website:            a.Website,
			SeekingVenue:       a.SeekingVenue,
			SeekingDescription: a.SeekingDescription,
		}, sel)
		if err != nil {
			return fmt.Errorf("seed artist %q: %w", a.Name, err)
		}
		artistIDs[a.Name] = created.ID

		if err := seedCatalog(ctx, backend, created.ID, a); err != nil {
			return fmt.Errorf("seed catalog for %q: %w", a.Name, err)
		}
	}

	checker := booking.New(backend)
	for _, sh := range data.Shows {
		venueID, ok := venueIDs[sh.Venue]
		if !ok {
			return fmt.Errorf("seed show references unknown venue %q", sh.Venue)
		}
		artistID, ok := artistIDs[sh.Artist]
		if !ok {
			return fmt.Errorf("seed show references unknown artist %q", sh.Artist)
		}
		if _, err := checker.Book(ctx, booking.Request{
			VenueID:  venueID,
			ArtistID: artistID,
			Start:    sh.StartTime,
			End:      sh.EndTime,
		}); err != nil {
			return fmt.Errorf("seed show %s at %s: %w", sh.Artist, sh.Venue, err)
		}
	}
	return nil
}

// ensureGenres creates missing genres and returns every genre id by name.
func ensureGenres(ctx context.Context, backend dataStore, names []string) (map[string]int64, error) {
	for _, name := range names {
		if _, err := backend.CreateGenre(ctx, name); err != nil && !errors.Is(err, store.ErrGenreExists) {
			return nil, fmt.Errorf("seed genre %q: %w", name, err)
		}
	}

	genres, err := backend.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	ids := make(map[string]int64, len(genres))
	for _, g := range genres {
		ids[g.Name] = g.ID
	}
	return ids, nil
}

func seedCatalog(ctx context.Context, backend dataStore, artistID int64, a seedArtist) error {
	for _, album := range a.Albums {
		created, err := backend.CreateAlbum(ctx, models.Album{
			ArtistID:    artistID,
			Name:        album.Name,
			ReleaseDate: album.ReleaseDate,
		})
		if err != nil {
			return err
		}
		for _, name := range album.Songs {
			if _, err := backend.CreateSong(ctx, models.Song{
				ArtistID:    artistID,
				AlbumID:     &created.ID,
				Name:        name,
				ReleaseDate: album.ReleaseDate,
			}); err != nil {
				return err
			}
		}
	}
	for _, single := range a.Singles {
		if _, err := backend.CreateSong(ctx, models.Song{
			ArtistID:    artistID,
			Name:        single.Name,
			ReleaseDate: single.ReleaseDate,
		}); err != nil {
			return err
		}
	}
	return nil
}
