package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fyyur/internal/directory"
	"fyyur/internal/metrics"
	"fyyur/internal/models"
	"fyyur/internal/views"
)

// ErrInvalidVenue wraps every validation failure for venue input.
var ErrInvalidVenue = errors.New("invalid venue")

// Store defines persistence operations for venues
type Store interface {
	CreateVenue(ctx context.Context, venue models.Venue, sel models.GenreSelection) (models.Venue, error)
	UpdateVenue(ctx context.Context, id int64, venue models.Venue, sel models.GenreSelection) (models.Venue, error)
	DeleteVenue(ctx context.Context, id int64) error
	GetVenue(ctx context.Context, id int64) (models.Venue, error)
	RecentVenues(ctx context.Context, limit int) ([]models.Venue, error)
}

// Directory builds the read side for venues
type Directory interface {
	Areas(ctx context.Context) ([]directory.Area, error)
	SearchVenues(ctx context.Context, term string) (directory.VenueSearchResult, error)
	VenueView(ctx context.Context, v models.Venue) (views.VenueView, error)
}

// Service coordinates venue-related operations
type Service interface {
	Areas(ctx context.Context) ([]directory.Area, error)
	Search(ctx context.Context, term string) (directory.VenueSearchResult, error)
	Get(ctx context.Context, id int64) (views.VenueView, error)
	Recent(ctx context.Context, limit int) ([]models.Venue, error)
	Create(ctx context.Context, venue models.Venue, sel models.GenreSelection) (models.Venue, error)
	Update(ctx context.Context, id int64, venue models.Venue, sel models.GenreSelection) (models.Venue, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store   Store
	dir     Directory
	metrics *metrics.Recorder
}

// New constructs a venues Service. metrics may be nil.
func New(store Store, dir Directory, rec *metrics.Recorder) Service {
	return &service{store: store, dir: dir, metrics: rec}
}

func (s *service) Areas(ctx context.Context) (areas []directory.Area, err error) {
	defer s.metrics.Track(ctx, "venues.areas", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.dir.Areas(ctx)
}

func (s *service) Search(ctx context.Context, term string) (result directory.VenueSearchResult, err error) {
	defer s.metrics.Track(ctx, "venues.search", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return directory.VenueSearchResult{}, err
	}
	return s.dir.SearchVenues(ctx, strings.TrimSpace(term))
}

func (s *service) Get(ctx context.Context, id int64) (view views.VenueView, err error) {
	defer s.metrics.Track(ctx, "venues.get", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return views.VenueView{}, err
	}
	venue, err := s.store.GetVenue(ctx, id)
	if err != nil {
		return views.VenueView{}, err
	}
	return s.dir.VenueView(ctx, venue)
}

func (s *service) Recent(ctx context.Context, limit int) ([]models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.RecentVenues(ctx, limit)
}

func (s *service) Create(ctx context.Context, venue models.Venue, sel models.GenreSelection) (created models.Venue, err error) {
	defer s.metrics.Track(ctx, "venues.create", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	venue, err = normalize(venue)
	if err != nil {
		return models.Venue{}, err
	}
	return s.store.CreateVenue(ctx, venue, sel)
}

func (s *service) Update(ctx context.Context, id int64, venue models.Venue, sel models.GenreSelection) (updated models.Venue, err error) {
	defer s.metrics.Track(ctx, "venues.update", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	venue, err = normalize(venue)
	if err != nil {
		return models.Venue{}, err
	}
	return s.store.UpdateVenue(ctx, id, venue, sel)
}

func (s *service) Delete(ctx context.Context, id int64) (err error) {
	defer s.metrics.Track(ctx, "venues.delete", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteVenue(ctx, id)
}

func normalize(v models.Venue) (models.Venue, error) {
	v.Name = strings.TrimSpace(v.Name)
	v.City = strings.TrimSpace(v.City)
	v.State = strings.ToUpper(strings.TrimSpace(v.State))
	v.Address = strings.TrimSpace(v.Address)
	v.Phone = strings.TrimSpace(v.Phone)
	v.ImageLink = models.TrimOptional(v.ImageLink)
	v.FacebookLink = models.TrimOptional(v.FacebookLink)
	v.Website = models.TrimOptional(v.Website)
	v.SeekingDescription = models.TrimOptional(v.SeekingDescription)

	switch {
	case v.Name == "":
		return models.Venue{}, fmt.Errorf("%w: name is required", ErrInvalidVenue)
	case v.City == "":
		return models.Venue{}, fmt.Errorf("%w: city is required", ErrInvalidVenue)
	case v.State == "":
		return models.Venue{}, fmt.Errorf("%w: state is required", ErrInvalidVenue)
	case v.Address == "":
		return models.Venue{}, fmt.Errorf("%w: address is required", ErrInvalidVenue)
	case v.Phone == "":
		return models.Venue{}, fmt.Errorf("%w: phone is required", ErrInvalidVenue)
	}
	return v, nil
}
