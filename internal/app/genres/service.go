package genres

import (
	"context"
	"errors"
	"strings"

	"fyyur/internal/models"
)

// ErrNameRequired indicates an empty genre name.
var ErrNameRequired = errors.New("genre name is required")

// Store defines persistence operations for genres
type Store interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	CreateGenre(ctx context.Context, name string) (models.Genre, error)
}

// Service coordinates genre operations
type Service interface {
	List(ctx context.Context) ([]models.Genre, error)
	Create(ctx context.Context, name string) (models.Genre, error)
}

type service struct {
	store Store
}

// New constructs a genres Service
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListGenres(ctx)
}

// Create stores a genre. Reusing an existing name fails; the store reports it
// as a write failure.
func (s *service) Create(ctx context.Context, name string) (models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return models.Genre{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Genre{}, ErrNameRequired
	}
	return s.store.CreateGenre(ctx, name)
}
