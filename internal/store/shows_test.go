package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"fyyur/internal/booking"
	"fyyur/internal/models"
)

var showDetailColumns = []string{
	"id", "venue_id", "artist_id", "start_time", "end_time",
	"v_id", "v_name", "v_city", "v_state", "v_address", "v_phone", "v_image_link", "v_facebook_link",
	"v_website", "v_seeking_talent", "v_seeking_description", "v_created_at",
	"a_id", "a_name", "a_city", "a_state", "a_phone", "a_image_link", "a_facebook_link",
	"a_website", "a_seeking_venue", "a_seeking_description", "a_created_at",
}

func TestHasOverlapQueriesClosedInterval(t *testing.T) {
	start := time.Date(2035, 4, 1, 20, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name   string
		kind   models.ResourceKind
		column string
	}{
		{name: "venue", kind: models.ResourceVenue, column: "venue_id"},
		{name: "artist", kind: models.ResourceArtist, column: "artist_id"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMock(t)
			mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf(
				`WHERE %s = $1 AND start_time <= $3 AND $2 <= end_time`, tc.column))).
				WithArgs(int64(4), start, end).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

			got, err := s.HasOverlap(context.Background(), models.Resource{Kind: tc.kind, ID: 4}, models.Interval{Start: start, End: end})
			if err != nil {
				t.Fatalf("HasOverlap error: %v", err)
			}
			if !got {
				t.Fatalf("expected overlap")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestHasOverlapUnknownKind(t *testing.T) {
	s, _ := newMock(t)
	if _, err := s.HasOverlap(context.Background(), models.Resource{Kind: 0, ID: 1}, models.Interval{}); err == nil {
		t.Fatalf("expected error for unknown resource kind")
	}
}

func TestInBookingTxCommits(t *testing.T) {
	s, mock := newMock(t)
	start := time.Date(2035, 4, 1, 20, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM venues WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM artists WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO shows (venue_id, artist_id, start_time, end_time)`)).
		WithArgs(int64(1), int64(2), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(30)))
	mock.ExpectCommit()

	var created models.Show
	err := s.InBookingTx(context.Background(), func(tx booking.Tx) error {
		if err := tx.LockResource(context.Background(), models.Resource{Kind: models.ResourceVenue, ID: 1}); err != nil {
			return err
		}
		if err := tx.LockResource(context.Background(), models.Resource{Kind: models.ResourceArtist, ID: 2}); err != nil {
			return err
		}
		var err error
		created, err = tx.InsertShow(context.Background(), models.Show{VenueID: 1, ArtistID: 2, StartTime: start, EndTime: end})
		return err
	})
	if err != nil {
		t.Fatalf("InBookingTx error: %v", err)
	}
	if created.ID != 30 {
		t.Fatalf("expected show id 30, got %d", created.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInBookingTxRollsBackOnMissingVenue(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM venues WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := s.InBookingTx(context.Background(), func(tx booking.Tx) error {
		return tx.LockResource(context.Background(), models.Resource{Kind: models.ResourceVenue, ID: 8})
	})
	if !errors.Is(err, ErrVenueNotFound) {
		t.Fatalf("expected ErrVenueNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInBookingTxCommitFailureIsWriteFailure(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := s.InBookingTx(context.Background(), func(tx booking.Tx) error { return nil })
	if !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("expected write failure, got %v", err)
	}
}

func TestShowsByVenueScansDetails(t *testing.T) {
	s, mock := newMock(t)
	created := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2019, 5, 21, 21, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.venue_id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(showDetailColumns).AddRow(
			int64(1), int64(1), int64(4), start, start.Add(2*time.Hour),
			int64(1), "The Musical Hop", "San Francisco", "CA", "1015 Folsom Street", "123-123-1234", nil, nil,
			nil, true, nil, created,
			int64(4), "Guns N Petals", "San Francisco", "CA", "326-123-5000", "https://img/guns", nil,
			nil, true, nil, created,
		))

	got, err := s.ShowsByVenue(context.Background(), 1)
	if err != nil {
		t.Fatalf("ShowsByVenue error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one show, got %d", len(got))
	}
	if got[0].Artist.Name != "Guns N Petals" || got[0].Artist.ImageLink == nil {
		t.Fatalf("unexpected artist %+v", got[0].Artist)
	}
	if !got[0].StartTime.Equal(start) {
		t.Fatalf("unexpected start %v", got[0].StartTime)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetShowNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE s.id = $1`)).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(showDetailColumns))

	if _, err := s.GetShow(context.Background(), 12); !errors.Is(err, ErrShowNotFound) {
		t.Fatalf("expected ErrShowNotFound, got %v", err)
	}
}

func TestInBookingTxLockFailureIsWriteFailure(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM venues WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.InBookingTx(context.Background(), func(tx booking.Tx) error {
		return tx.LockResource(context.Background(), models.Resource{Kind: models.ResourceVenue, ID: 1})
	})
	if !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("expected write failure, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInBookingTxOverlapFailureIsWriteFailure(t *testing.T) {
	s, mock := newMock(t)
	start := time.Date(2035, 4, 1, 20, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE artist_id = $1`)).
		WithArgs(int64(2), start, start.Add(time.Hour)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.InBookingTx(context.Background(), func(tx booking.Tx) error {
		_, err := tx.HasOverlap(context.Background(),
			models.Resource{Kind: models.ResourceArtist, ID: 2},
			models.Interval{Start: start, End: start.Add(time.Hour)})
		return err
	})
	if !errors.Is(err, ErrWriteFailure) {
		t.Fatalf("expected write failure, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInBookingTxConflictIsNotWriteFailure(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.InBookingTx(context.Background(), func(tx booking.Tx) error {
		return &booking.ConflictError{Kind: models.ResourceVenue, ResourceID: 1}
	})
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if errors.Is(err, ErrWriteFailure) {
		t.Fatalf("conflict should not be a write failure")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
