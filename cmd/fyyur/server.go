package main

import (
	"net/http"

	"fyyur/internal/app/artists"
	"fyyur/internal/app/genres"
	"fyyur/internal/app/shows"
	"fyyur/internal/app/venues"
	"fyyur/internal/booking"
	"fyyur/internal/config"
	"fyyur/internal/directory"
	"fyyur/internal/http/middleware"
	"fyyur/internal/httpapi"
	"fyyur/internal/logging"
	"fyyur/internal/metrics"
)

func newHTTPHandler(cfg *config.Config, backend dataStore, rec *metrics.Recorder, logger *logging.Logger) http.Handler {
	dir := directory.New(backend, nil)
	checker := booking.New(backend)

	venueSvc := venues.New(backend, dir, rec)
	artistSvc := artists.New(backend, dir, rec)
	genreSvc := genres.New(backend)
	showSvc := shows.New(backend, checker, rec)

	routes := httpapi.New(venueSvc, artistSvc, genreSvc, showSvc, rec, logger).Routes()

	var handler http.Handler = routes
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	return handler
}
