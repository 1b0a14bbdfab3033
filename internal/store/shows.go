package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fyyur/internal/booking"
	"fyyur/internal/models"
)

const selectShowDetails = `
		SELECT s.id, s.venue_id, s.artist_id, s.start_time, s.end_time,
		       v.id, v.name, v.city, v.state, v.address, v.phone, v.image_link, v.facebook_link,
		       v.website, v.seeking_talent, v.seeking_description, v.created_at,
		       a.id, a.name, a.city, a.state, a.phone, a.image_link, a.facebook_link,
		       a.website, a.seeking_venue, a.seeking_description, a.created_at
		FROM shows s
		JOIN venues v ON v.id = s.venue_id
		JOIN artists a ON a.id = s.artist_id
`

// ListShows returns every show with its venue and artist, earliest first.
func (s *Store) ListShows(ctx context.Context) ([]models.ShowDetail, error) {
	return s.listShowDetails(ctx, selectShowDetails+`
		ORDER BY s.start_time ASC, s.id ASC
	`)
}

// ShowsByVenue returns every show booked at the venue.
func (s *Store) ShowsByVenue(ctx context.Context, venueID int64) ([]models.ShowDetail, error) {
	return s.listShowDetails(ctx, selectShowDetails+`
		WHERE s.venue_id = $1
		ORDER BY s.start_time ASC, s.id ASC
	`, venueID)
}

// ShowsByArtist returns every show the artist is booked for.
func (s *Store) ShowsByArtist(ctx context.Context, artistID int64) ([]models.ShowDetail, error) {
	return s.listShowDetails(ctx, selectShowDetails+`
		WHERE s.artist_id = $1
		ORDER BY s.start_time ASC, s.id ASC
	`, artistID)
}

// GetShow retrieves a single show with its venue and artist.
func (s *Store) GetShow(ctx context.Context, id int64) (models.ShowDetail, error) {
	show, err := scanShowDetail(s.db.QueryRowContext(ctx, selectShowDetails+`
		WHERE s.id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ShowDetail{}, ErrShowNotFound
	}
	if err != nil {
		return models.ShowDetail{}, fmt.Errorf("select show: %w", err)
	}
	return show, nil
}

// HasOverlap reports whether any committed show of the resource shares an
// instant with iv.
func (s *Store) HasOverlap(ctx context.Context, r models.Resource, iv models.Interval) (bool, error) {
	return hasOverlap(ctx, s.db, r, iv)
}

// InBookingTx runs fn in a transaction whose row locks serialise bookings for
// the same venue or artist.
func (s *Store) InBookingTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	return s.withTx(ctx, "book show", func(tx *sql.Tx) error {
		return fn(&bookingTx{tx: tx})
	})
}

type bookingTx struct {
	tx *sql.Tx
}

func (b *bookingTx) HasOverlap(ctx context.Context, r models.Resource, iv models.Interval) (bool, error) {
	return hasOverlap(ctx, b.tx, r, iv)
}

// LockResource takes a row lock on the venue or artist for the rest of the
// transaction.
func (b *bookingTx) LockResource(ctx context.Context, r models.Resource) error {
	var (
		query    string
		notFound error
	)
	switch r.Kind {
	case models.ResourceVenue:
		query = `SELECT id FROM venues WHERE id = $1 FOR UPDATE`
		notFound = ErrVenueNotFound
	case models.ResourceArtist:
		query = `SELECT id FROM artists WHERE id = $1 FOR UPDATE`
		notFound = ErrArtistNotFound
	default:
		return fmt.Errorf("lock %s: unknown resource kind", r.Kind)
	}

	var id int64
	err := b.tx.QueryRowContext(ctx, query, r.ID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("lock %s: %w", r.Kind, err)
	}
	return nil
}

func (b *bookingTx) InsertShow(ctx context.Context, show models.Show) (models.Show, error) {
	err := b.tx.QueryRowContext(ctx, `
		INSERT INTO shows (venue_id, artist_id, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, show.VenueID, show.ArtistID, show.StartTime, show.EndTime).Scan(&show.ID)
	if err != nil {
		return models.Show{}, NewWriteError("insert show", err)
	}
	return show, nil
}

func hasOverlap(ctx context.Context, q queryRower, r models.Resource, iv models.Interval) (bool, error) {
	column := r.Kind.Column()
	if column == "" {
		return false, fmt.Errorf("overlap check: unknown resource kind %s", r.Kind)
	}

	// Closed intervals: shared endpoints conflict.
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1
			FROM shows
			WHERE %s = $1 AND start_time <= $3 AND $2 <= end_time
		)
	`, column)

	var exists bool
	if err := q.QueryRowContext(ctx, query, r.ID, iv.Start, iv.End).Scan(&exists); err != nil {
		return false, fmt.Errorf("overlap check: %w", err)
	}
	return exists, nil
}

func (s *Store) listShowDetails(ctx context.Context, query string, args ...any) ([]models.ShowDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select shows: %w", err)
	}
	defer rows.Close()

	var shows []models.ShowDetail
	for rows.Next() {
		show, err := scanShowDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		shows = append(shows, show)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shows: %w", err)
	}
	return shows, nil
}

func scanShowDetail(row scanner) (models.ShowDetail, error) {
	var (
		d models.ShowDetail
		v = &d.Venue
		a = &d.Artist
	)
	err := row.Scan(
		&d.ID, &d.VenueID, &d.ArtistID, &d.StartTime, &d.EndTime,
		&v.ID, &v.Name, &v.City, &v.State, &v.Address, &v.Phone, &v.ImageLink, &v.FacebookLink,
		&v.Website, &v.SeekingTalent, &v.SeekingDescription, &v.CreatedAt,
		&a.ID, &a.Name, &a.City, &a.State, &a.Phone, &a.ImageLink, &a.FacebookLink,
		&a.Website, &a.SeekingVenue, &a.SeekingDescription, &a.CreatedAt,
	)
	return d, err
}
