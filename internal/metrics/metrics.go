// Package metrics exposes service and booking counters through Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking outcomes.
const (
	BookingCreated        = "created"
	BookingVenueConflict  = "venue_conflict"
	BookingArtistConflict = "artist_conflict"
	BookingRejected       = "rejected"
	BookingFailed         = "failed"
)

// Recorder owns a private registry so tests and multiple servers do not collide
// on the global one. A nil *Recorder records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	bookings   *prometheus.CounterVec
}

// New constructs a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fyyur",
			Name:      "operations_total",
			Help:      "Service operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fyyur",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fyyur",
			Name:      "bookings_total",
			Help:      "Show booking attempts by outcome.",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(
		r.operations,
		r.durations,
		r.bookings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records a service operation outcome.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if r == nil || operation == "" {
		return
	}
	outcome := "error"
	if success {
		outcome = "success"
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Track is meant to be deferred at the top of a service method with a pointer
// to its named error result.
func (r *Recorder) Track(ctx context.Context, operation string, started time.Time, err *error) {
	success := err == nil || *err == nil
	r.Observe(ctx, operation, success, time.Since(started))
}

// RecordBooking counts one booking attempt.
func (r *Recorder) RecordBooking(outcome string) {
	if r == nil {
		return
	}
	r.bookings.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
