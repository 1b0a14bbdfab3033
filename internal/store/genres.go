package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"fyyur/internal/models"
)

// ListGenres returns every genre ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]models.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM genres
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select genres: %w", err)
	}
	defer rows.Close()

	return scanGenres(rows)
}

// CreateGenre stores a new genre. A duplicate name is a write failure wrapping
// ErrGenreExists.
func (s *Store) CreateGenre(ctx context.Context, name string) (models.Genre, error) {
	return insertGenre(ctx, s.db, name)
}

func insertGenre(ctx context.Context, q queryRower, name string) (models.Genre, error) {
	genre := models.Genre{Name: name}
	err := q.QueryRowContext(ctx, `
		INSERT INTO genres (name)
		VALUES ($1)
		RETURNING id
	`, name).Scan(&genre.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Genre{}, NewWriteError("insert genre", fmt.Errorf("%w: %q", ErrGenreExists, name))
		}
		return models.Genre{}, NewWriteError("insert genre", err)
	}
	return genre, nil
}

// resolveGenres loads the selected existing genres and, when requested, creates
// the new one. It runs inside the caller's transaction so a failure leaves no
// partially created genre behind.
func resolveGenres(ctx context.Context, tx *sql.Tx, sel models.GenreSelection) ([]models.Genre, error) {
	var genres []models.Genre

	if len(sel.IDs) > 0 {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, name
			FROM genres
			WHERE id = ANY($1)
			ORDER BY id ASC
		`, pq.Array(sel.IDs))
		if err != nil {
			return nil, fmt.Errorf("select genres: %w", err)
		}
		existing, err := scanGenres(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		if len(existing) != len(sel.IDs) {
			return nil, fmt.Errorf("%w: %v", ErrGenreNotFound, missingGenreIDs(sel.IDs, existing))
		}
		genres = existing
	}

	if sel.WantsNew() {
		genre, err := insertGenre(ctx, tx, sel.NewName)
		if err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}

	return genres, nil
}

// linkGenres writes one join row per genre using the given insert statement,
// which must take the owner id and the genre id.
func linkGenres(ctx context.Context, tx *sql.Tx, op, insert string, ownerID int64, genres []models.Genre) error {
	for _, g := range genres {
		if _, err := tx.ExecContext(ctx, insert, ownerID, g.ID); err != nil {
			return NewWriteError(op, err)
		}
	}
	return nil
}

// genresByOwner loads genres for several owners at once from a join table query
// returning (owner_id, genre id, genre name).
func genresByOwner(ctx context.Context, q queryer, query string, ids []int64) (map[int64][]models.Genre, error) {
	out := make(map[int64][]models.Genre, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ownerID int64
			g       models.Genre
		)
		if err := rows.Scan(&ownerID, &g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		out[ownerID] = append(out[ownerID], g)
	}
	return out, rows.Err()
}

func scanGenres(rows *sql.Rows) ([]models.Genre, error) {
	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return genres, nil
}

func missingGenreIDs(want []int64, found []models.Genre) []int64 {
	have := make(map[int64]struct{}, len(found))
	for _, g := range found {
		have[g.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
