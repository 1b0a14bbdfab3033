// Package booking enforces the no-overlap rule for shows. A venue and an
// artist can each hold at most one show at any instant; intervals are closed,
// so a show ending at 11:00 conflicts with one starting at 11:00.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fyyur/internal/models"
)

var (
	// ErrConflict matches every ConflictError via errors.Is.
	ErrConflict = errors.New("booking conflict")
	// ErrInvalidInterval indicates a show that ends before it starts.
	ErrInvalidInterval = errors.New("show ends before it starts")
)

// ConflictError reports which resource is already booked. The venue is always
// checked first, so Kind is ResourceArtist only when the venue was free.
type ConflictError struct {
	Kind       models.ResourceKind
	ResourceID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d is already booked during the requested time", e.Kind, e.ResourceID)
}

// Is makes errors.Is(err, ErrConflict) hold for any ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Request is a proposed show.
type Request struct {
	VenueID  int64
	ArtistID int64
	Start    time.Time
	End      time.Time
}

func (r Request) interval() models.Interval {
	return models.Interval{Start: r.Start, End: r.End}
}

// Checker validates and books shows against a Store.
type Checker struct {
	store Store
}

// New constructs a Checker.
func New(store Store) *Checker {
	return &Checker{store: store}
}

// CheckConflict reports whether [start, end] overlaps an existing show of the
// given venue or artist.
func (c *Checker) CheckConflict(ctx context.Context, kind models.ResourceKind, id int64, start, end time.Time) (bool, error) {
	iv := models.Interval{Start: start, End: end}
	if !iv.Valid() {
		return false, ErrInvalidInterval
	}
	return c.store.HasOverlap(ctx, models.Resource{Kind: kind, ID: id}, iv)
}

// Book inserts the show if neither the venue nor the artist is busy during the
// requested interval. The venue and artist rows are locked, in that order, for
// the duration of the transaction so the check and the insert are atomic with
// respect to other bookings. A conflict yields a *ConflictError and no insert.
func (c *Checker) Book(ctx context.Context, req Request) (models.Show, error) {
	iv := req.interval()
	if !iv.Valid() {
		return models.Show{}, ErrInvalidInterval
	}

	resources := []models.Resource{
		{Kind: models.ResourceVenue, ID: req.VenueID},
		{Kind: models.ResourceArtist, ID: req.ArtistID},
	}

	var created models.Show
	err := c.store.InBookingTx(ctx, func(tx Tx) error {
		for _, r := range resources {
			if err := tx.LockResource(ctx, r); err != nil {
				return err
			}
		}

		for _, r := range resources {
			busy, err := tx.HasOverlap(ctx, r, iv)
			if err != nil {
				return err
			}
			if busy {
				return &ConflictError{Kind: r.Kind, ResourceID: r.ID}
			}
		}

		show, err := tx.InsertShow(ctx, models.Show{
			VenueID:   req.VenueID,
			ArtistID:  req.ArtistID,
			StartTime: req.Start,
			EndTime:   req.End,
		})
		if err != nil {
			return err
		}
		created = show
		return nil
	})
	if err != nil {
		return models.Show{}, err
	}
	return created, nil
}
