package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsOutcomes(t *testing.T) {
	r := New()
	ctx := context.Background()

	r.Observe(ctx, "venues.create", true, 10*time.Millisecond)
	r.Observe(ctx, "venues.create", false, 5*time.Millisecond)
	r.Observe(ctx, "venues.create", true, time.Millisecond)

	if got := testutil.ToFloat64(r.operations.WithLabelValues("venues.create", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("venues.create", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
}

func TestTrackReadsNamedError(t *testing.T) {
	r := New()

	op := func() (err error) {
		defer r.Track(context.Background(), "shows.create", time.Now(), &err)
		return errors.New("boom")
	}
	_ = op()

	if got := testutil.ToFloat64(r.operations.WithLabelValues("shows.create", "error")); got != 1 {
		t.Fatalf("expected tracked error, got %v", got)
	}
}

func TestRecordBooking(t *testing.T) {
	r := New()
	r.RecordBooking(BookingCreated)
	r.RecordBooking(BookingVenueConflict)
	r.RecordBooking(BookingVenueConflict)

	if got := testutil.ToFloat64(r.bookings.WithLabelValues(BookingVenueConflict)); got != 2 {
		t.Fatalf("expected 2 venue conflicts, got %v", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Observe(context.Background(), "noop", true, 0)
	r.RecordBooking(BookingFailed)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil recorder handler, got %d", rec.Code)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.RecordBooking(BookingCreated)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `fyyur_bookings_total{outcome="created"} 1`) {
		t.Fatalf("expected booking counter in output")
	}
}
