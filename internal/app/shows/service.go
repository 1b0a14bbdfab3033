package shows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fyyur/internal/booking"
	"fyyur/internal/metrics"
	"fyyur/internal/models"
	"fyyur/internal/store"
	"fyyur/internal/views"
)

// ErrInvalidShow wraps validation failures for show input.
var ErrInvalidShow = errors.New("invalid show")

// Store defines read operations for shows
type Store interface {
	ListShows(ctx context.Context) ([]models.ShowDetail, error)
	GetShow(ctx context.Context, id int64) (models.ShowDetail, error)
}

// Booker checks and books shows
type Booker interface {
	Book(ctx context.Context, req booking.Request) (models.Show, error)
	CheckConflict(ctx context.Context, kind models.ResourceKind, id int64, start, end time.Time) (bool, error)
}

// Service coordinates show listing and booking
type Service interface {
	List(ctx context.Context) ([]views.ShowSummary, error)
	Get(ctx context.Context, id int64) (views.ShowSummary, error)
	Create(ctx context.Context, req booking.Request) (views.ShowSummary, error)
	CheckConflict(ctx context.Context, kind models.ResourceKind, id int64, start, end time.Time) (bool, error)
}

type service struct {
	store   Store
	booker  Booker
	metrics *metrics.Recorder
}

// New constructs a shows Service. metrics may be nil.
func New(store Store, booker Booker, rec *metrics.Recorder) Service {
	return &service{store: store, booker: booker, metrics: rec}
}

func (s *service) List(ctx context.Context) (summaries []views.ShowSummary, err error) {
	defer s.metrics.Track(ctx, "shows.list", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shows, err := s.store.ListShows(ctx)
	if err != nil {
		return nil, err
	}
	return views.SummarizeAll(shows), nil
}

func (s *service) Get(ctx context.Context, id int64) (views.ShowSummary, error) {
	if err := ctx.Err(); err != nil {
		return views.ShowSummary{}, err
	}
	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		return views.ShowSummary{}, err
	}
	return views.Summarize(show), nil
}

// Create books the show. Conflicts surface as *booking.ConflictError, with the
// venue reported ahead of the artist.
func (s *service) Create(ctx context.Context, req booking.Request) (summary views.ShowSummary, err error) {
	defer s.metrics.Track(ctx, "shows.create", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return views.ShowSummary{}, err
	}
	if err := validate(req); err != nil {
		s.metrics.RecordBooking(metrics.BookingRejected)
		return views.ShowSummary{}, err
	}

	created, err := s.booker.Book(ctx, req)
	s.metrics.RecordBooking(bookingOutcome(err))
	if err != nil {
		return views.ShowSummary{}, err
	}

	show, err := s.store.GetShow(ctx, created.ID)
	if err != nil {
		return views.ShowSummary{}, fmt.Errorf("load booked show %d: %w", created.ID, err)
	}
	return views.Summarize(show), nil
}

func (s *service) CheckConflict(ctx context.Context, kind models.ResourceKind, id int64, start, end time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.booker.CheckConflict(ctx, kind, id, start, end)
}

func validate(req booking.Request) error {
	switch {
	case req.VenueID <= 0:
		return fmt.Errorf("%w: venue_id is required", ErrInvalidShow)
	case req.ArtistID <= 0:
		return fmt.Errorf("%w: artist_id is required", ErrInvalidShow)
	case req.Start.IsZero():
		return fmt.Errorf("%w: start_time is required", ErrInvalidShow)
	case req.End.IsZero():
		return fmt.Errorf("%w: end_time is required", ErrInvalidShow)
	}
	return nil
}

func bookingOutcome(err error) string {
	var conflict *booking.ConflictError
	switch {
	case err == nil:
		return metrics.BookingCreated
	case errors.As(err, &conflict) && conflict.Kind == models.ResourceVenue:
		return metrics.BookingVenueConflict
	case errors.As(err, &conflict):
		return metrics.BookingArtistConflict
	case errors.Is(err, store.ErrWriteFailure):
		return metrics.BookingFailed
	default:
		return metrics.BookingRejected
	}
}
