package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fyyur/internal/models"
)

const selectVenues = `
		SELECT id, name, city, state, address, phone, image_link, facebook_link,
		       website, seeking_talent, seeking_description, created_at
		FROM venues
`

const selectVenueGenres = `
		SELECT vg.venue_id, g.id, g.name
		FROM venue_genres vg
		JOIN genres g ON g.id = vg.genre_id
		WHERE vg.venue_id = ANY($1)
		ORDER BY g.name ASC
`

const insertVenueGenre = `
			INSERT INTO venue_genres (venue_id, genre_id)
			VALUES ($1, $2)
`

// CreateVenue inserts a venue together with its genre links. Genre resolution,
// including creation of a new genre, shares the venue's transaction.
func (s *Store) CreateVenue(ctx context.Context, venue models.Venue, sel models.GenreSelection) (models.Venue, error) {
	err := s.withTx(ctx, "create venue", func(tx *sql.Tx) error {
		genres, err := resolveGenres(ctx, tx, sel)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO venues (name, city, state, address, phone, image_link,
			                    facebook_link, website, seeking_talent, seeking_description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at
		`,
			venue.Name, venue.City, venue.State, venue.Address, venue.Phone, venue.ImageLink,
			venue.FacebookLink, venue.Website, venue.SeekingTalent, venue.SeekingDescription,
		).Scan(&venue.ID, &venue.CreatedAt)
		if err != nil {
			return NewWriteError("insert venue", err)
		}

		if err := linkGenres(ctx, tx, "link venue genres", insertVenueGenre, venue.ID, genres); err != nil {
			return err
		}
		venue.Genres = genres
		return nil
	})
	if err != nil {
		return models.Venue{}, err
	}
	return venue, nil
}

// UpdateVenue replaces every editable field of the venue and its genre links.
func (s *Store) UpdateVenue(ctx context.Context, id int64, venue models.Venue, sel models.GenreSelection) (models.Venue, error) {
	err := s.withTx(ctx, "update venue", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE venues
			SET name = $1, city = $2, state = $3, address = $4, phone = $5,
			    image_link = $6, facebook_link = $7, website = $8,
			    seeking_talent = $9, seeking_description = $10
			WHERE id = $11
			RETURNING created_at
		`,
			venue.Name, venue.City, venue.State, venue.Address, venue.Phone,
			venue.ImageLink, venue.FacebookLink, venue.Website,
			venue.SeekingTalent, venue.SeekingDescription, id,
		).Scan(&venue.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrVenueNotFound
		}
		if err != nil {
			return NewWriteError("update venue", err)
		}

		genres, err := resolveGenres(ctx, tx, sel)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM venue_genres WHERE venue_id = $1`, id); err != nil {
			return NewWriteError("unlink venue genres", err)
		}
		if err := linkGenres(ctx, tx, "link venue genres", insertVenueGenre, id, genres); err != nil {
			return err
		}

		venue.ID = id
		venue.Genres = genres
		return nil
	})
	if err != nil {
		return models.Venue{}, err
	}
	return venue, nil
}

// DeleteVenue removes a venue. Its shows and genre links go with it.
func (s *Store) DeleteVenue(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return NewWriteError("delete venue", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return NewWriteError("delete venue", err)
	}
	if n == 0 {
		return ErrVenueNotFound
	}
	return nil
}

// GetVenue retrieves a single venue with its genres.
func (s *Store) GetVenue(ctx context.Context, id int64) (models.Venue, error) {
	venue, err := scanVenue(s.db.QueryRowContext(ctx, selectVenues+`
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Venue{}, ErrVenueNotFound
	}
	if err != nil {
		return models.Venue{}, fmt.Errorf("select venue: %w", err)
	}

	genres, err := genresByOwner(ctx, s.db, selectVenueGenres, []int64{id})
	if err != nil {
		return models.Venue{}, err
	}
	venue.Genres = genres[id]
	return venue, nil
}

// SearchVenues returns venues whose name contains term, ignoring case, in id order.
func (s *Store) SearchVenues(ctx context.Context, term string) ([]models.Venue, error) {
	return s.listVenues(ctx, selectVenues+`
		WHERE name ILIKE $1
		ORDER BY id ASC
	`, containsPattern(term))
}

// RecentVenues returns the most recently created venues, newest first.
func (s *Store) RecentVenues(ctx context.Context, limit int) ([]models.Venue, error) {
	return s.listVenues(ctx, selectVenues+`
		ORDER BY id DESC
		LIMIT $1
	`, limit)
}

// VenueListings returns every venue with its count of shows starting at or after
// now, ordered by state, city and name.
func (s *Store) VenueListings(ctx context.Context, now time.Time) ([]models.VenueListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.name, v.city, v.state,
		       COALESCE(SUM(CASE WHEN s.start_time >= $1 THEN 1 ELSE 0 END), 0) AS num_upcoming_shows
		FROM venues v
		LEFT JOIN shows s ON s.venue_id = v.id
		GROUP BY v.id, v.name, v.city, v.state
		ORDER BY v.state ASC, v.city ASC, v.name ASC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("select venue listings: %w", err)
	}
	defer rows.Close()

	var listings []models.VenueListing
	for rows.Next() {
		var l models.VenueListing
		if err := rows.Scan(&l.ID, &l.Name, &l.City, &l.State, &l.NumUpcomingShows); err != nil {
			return nil, fmt.Errorf("scan venue listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venue listings: %w", err)
	}
	return listings, nil
}

func (s *Store) listVenues(ctx context.Context, query string, args ...any) ([]models.Venue, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select venues: %w", err)
	}
	defer rows.Close()

	var (
		venues []models.Venue
		ids    []int64
	)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venues: %w", err)
	}
	rows.Close()

	genres, err := genresByOwner(ctx, s.db, selectVenueGenres, ids)
	if err != nil {
		return nil, err
	}
	for i := range venues {
		venues[i].Genres = genres[venues[i].ID]
	}
	return venues, nil
}

func scanVenue(row scanner) (models.Venue, error) {
	var v models.Venue
	err := row.Scan(
		&v.ID, &v.Name, &v.City, &v.State, &v.Address, &v.Phone, &v.ImageLink, &v.FacebookLink,
		&v.Website, &v.SeekingTalent, &v.SeekingDescription, &v.CreatedAt,
	)
	return v, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching names that contain term
// literally. An empty term matches every name.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
