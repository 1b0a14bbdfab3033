package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"fyyur/internal/booking"
)

var (
	// ErrVenueNotFound signals a missing venue record.
	ErrVenueNotFound = errors.New("venue not found")
	// ErrArtistNotFound signals a missing artist record.
	ErrArtistNotFound = errors.New("artist not found")
	// ErrShowNotFound signals a missing show record.
	ErrShowNotFound = errors.New("show not found")
	// ErrAlbumNotFound signals a missing album, or one owned by another artist.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrGenreNotFound indicates a selected genre id does not exist.
	ErrGenreNotFound = errors.New("genre not found")
	// ErrGenreExists indicates a genre with the same name is already stored.
	ErrGenreExists = errors.New("genre already exists")
	// ErrWriteFailure matches every WriteError via errors.Is.
	ErrWriteFailure = errors.New("write failure")
)

// WriteError reports a failed create, update, delete or commit. The transaction
// it belonged to has been rolled back.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrWriteFailure) hold for any WriteError.
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFailure
}

// NewWriteError wraps err as a WriteError for op. Errors that already are write
// failures are returned unchanged.
func NewWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrWriteFailure) {
		return err
	}
	return &WriteError{Op: op, Err: err}
}

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queryer interface {
	queryRower
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// withTx runs fn inside a transaction and commits when it returns nil. Errors
// from fn other than rejections come back as write failures for op.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewWriteError(op, fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		if isRejection(err) {
			return err
		}
		return NewWriteError(op, err)
	}

	if err := tx.Commit(); err != nil {
		return NewWriteError(op, fmt.Errorf("commit tx: %w", err))
	}
	tx = nil

	return nil
}

// isRejection reports whether err refuses the request itself rather than
// reporting a persistence fault.
func isRejection(err error) bool {
	for _, target := range []error{
		ErrVenueNotFound,
		ErrArtistNotFound,
		ErrShowNotFound,
		ErrAlbumNotFound,
		ErrGenreNotFound,
		booking.ErrConflict,
		booking.ErrInvalidInterval,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
