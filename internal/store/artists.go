package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fyyur/internal/models"
)

const selectArtists = `
		SELECT id, name, city, state, phone, image_link, facebook_link,
		       website, seeking_venue, seeking_description, created_at
		FROM artists
`

const selectArtistGenres = `
		SELECT ag.artist_id, g.id, g.name
		FROM artist_genres ag
		JOIN genres g ON g.id = ag.genre_id
		WHERE ag.artist_id = ANY($1)
		ORDER BY g.name ASC
`

const insertArtistGenre = `
			INSERT INTO artist_genres (artist_id, genre_id)
			VALUES ($1, $2)
`

// CreateArtist inserts an artist together with its genre links.
func (s *Store) CreateArtist(ctx context.Context, artist models.Artist, sel models.GenreSelection) (models.Artist, error) {
	err := s.withTx(ctx, "create artist", func(tx *sql.Tx) error {
		genres, err := resolveGenres(ctx, tx, sel)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO artists (name, city, state, phone, image_link,
			                     facebook_link, website, seeking_venue, seeking_description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`,
			artist.Name, artist.City, artist.State, artist.Phone, artist.ImageLink,
			artist.FacebookLink, artist.Website, artist.SeekingVenue, artist.SeekingDescription,
		).Scan(&artist.ID, &artist.CreatedAt)
		if err != nil {
			return NewWriteError("insert artist", err)
		}

		if err := linkGenres(ctx, tx, "link artist genres", insertArtistGenre, artist.ID, genres); err != nil {
			return err
		}
		artist.Genres = genres
		return nil
	})
	if err != nil {
		return models.Artist{}, err
	}
	return artist, nil
}

// UpdateArtist replaces every editable field of the artist and its genre links.
func (s *Store) UpdateArtist(ctx context.Context, id int64, artist models.Artist, sel models.GenreSelection) (models.Artist, error) {
	err := s.withTx(ctx, "update artist", func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			UPDATE artists
			SET name = $1, city = $2, state = $3, phone = $4, image_link = $5,
			    facebook_link = $6, website = $7, seeking_venue = $8,
			    seeking_description = $9
			WHERE id = $10
			RETURNING created_at
		`,
			artist.Name, artist.City, artist.State, artist.Phone, artist.ImageLink,
			artist.FacebookLink, artist.Website, artist.SeekingVenue,
			artist.SeekingDescription, id,
		).Scan(&artist.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrArtistNotFound
		}
		if err != nil {
			return NewWriteError("update artist", err)
		}

		genres, err := resolveGenres(ctx, tx, sel)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM artist_genres WHERE artist_id = $1`, id); err != nil {
			return NewWriteError("unlink artist genres", err)
		}
		if err := linkGenres(ctx, tx, "link artist genres", insertArtistGenre, id, genres); err != nil {
			return err
		}

		artist.ID = id
		artist.Genres = genres
		return nil
	})
	if err != nil {
		return models.Artist{}, err
	}
	return artist, nil
}

// GetArtist retrieves a single artist with its genres.
func (s *Store) GetArtist(ctx context.Context, id int64) (models.Artist, error) {
	artist, err := scanArtist(s.db.QueryRowContext(ctx, selectArtists+`
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Artist{}, ErrArtistNotFound
	}
	if err != nil {
		return models.Artist{}, fmt.Errorf("select artist: %w", err)
	}

	genres, err := genresByOwner(ctx, s.db, selectArtistGenres, []int64{id})
	if err != nil {
		return models.Artist{}, err
	}
	artist.Genres = genres[id]
	return artist, nil
}

// ListArtists returns the {id, name} index of every artist ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]models.ArtistListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM artists
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select artists: %w", err)
	}
	defer rows.Close()

	var artists []models.ArtistListing
	for rows.Next() {
		var a models.ArtistListing
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return artists, nil
}

// SearchArtists returns artists whose name contains term, ignoring case, in id order.
func (s *Store) SearchArtists(ctx context.Context, term string) ([]models.Artist, error) {
	return s.listArtists(ctx, selectArtists+`
		WHERE name ILIKE $1
		ORDER BY id ASC
	`, containsPattern(term))
}

// RecentArtists returns the most recently created artists, newest first.
func (s *Store) RecentArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	return s.listArtists(ctx, selectArtists+`
		ORDER BY id DESC
		LIMIT $1
	`, limit)
}

func (s *Store) listArtists(ctx context.Context, query string, args ...any) ([]models.Artist, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select artists: %w", err)
	}
	defer rows.Close()

	var (
		artists []models.Artist
		ids     []int64
	)
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	rows.Close()

	genres, err := genresByOwner(ctx, s.db, selectArtistGenres, ids)
	if err != nil {
		return nil, err
	}
	for i := range artists {
		artists[i].Genres = genres[artists[i].ID]
	}
	return artists, nil
}

func scanArtist(row scanner) (models.Artist, error) {
	var a models.Artist
	err := row.Scan(
		&a.ID, &a.Name, &a.City, &a.State, &a.Phone, &a.ImageLink, &a.FacebookLink,
		&a.Website, &a.SeekingVenue, &a.SeekingDescription, &a.CreatedAt,
	)
	return a, err
}
