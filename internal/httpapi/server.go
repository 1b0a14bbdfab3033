package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"fyyur/internal/app/artists"
	"fyyur/internal/app/genres"
	"fyyur/internal/app/shows"
	"fyyur/internal/app/venues"
	"fyyur/internal/booking"
	"fyyur/internal/directory"
	"fyyur/internal/logging"
	"fyyur/internal/metrics"
	"fyyur/internal/models"
	"fyyur/internal/store"
	"fyyur/internal/views"
)

// homeFeedSize is how many recently listed venues and artists the home page shows.
const homeFeedSize = 5

// VenueService describes venue workflows used by the handlers.
type VenueService interface {
	Areas(ctx context.Context) ([]directory.Area, error)
	Search(ctx context.Context, term string) (directory.VenueSearchResult, error)
	Get(ctx context.Context, id int64) (views.VenueView, error)
	Recent(ctx context.Context, limit int) ([]models.Venue, error)
	Create(ctx context.Context, venue models.Venue, sel models.GenreSelection) (models.Venue, error)
	Update(ctx context.Context, id int64, venue models.Venue, sel models.GenreSelection) (models.Venue, error)
	Delete(ctx context.Context, id int64) error
}

// ArtistService describes artist and catalog workflows.
type ArtistService interface {
	List(ctx context.Context) ([]models.ArtistListing, error)
	Search(ctx context.Context, term string) (directory.ArtistSearchResult, error)
	Get(ctx context.Context, id int64) (views.ArtistView, error)
	Recent(ctx context.Context, limit int) ([]models.Artist, error)
	Create(ctx context.Context, artist models.Artist, sel models.GenreSelection) (models.Artist, error)
	Update(ctx context.Context, id int64, artist models.Artist, sel models.GenreSelection) (models.Artist, error)
	AddAlbum(ctx context.Context, artistID int64, album models.Album) (models.Album, error)
	AddSong(ctx context.Context, artistID int64, song models.Song) (models.Song, error)
}

// GenreService lists and creates genres.
type GenreService interface {
	List(ctx context.Context) ([]models.Genre, error)
	Create(ctx context.Context, name string) (models.Genre, error)
}

// ShowService lists and books shows.
type ShowService interface {
	List(ctx context.Context) ([]views.ShowSummary, error)
	Get(ctx context.Context, id int64) (views.ShowSummary, error)
	Create(ctx context.Context, req booking.Request) (views.ShowSummary, error)
	CheckConflict(ctx context.Context, kind models.ResourceKind, id int64, start, end time.Time) (bool, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	venues  VenueService
	artists ArtistService
	genres  GenreService
	shows   ShowService
	metrics *metrics.Recorder
	logger  *logging.Logger
}

// New configures a Server. rec and logger may be nil.
func New(
	venues VenueService,
	artists ArtistService,
	genres GenreService,
	shows ShowService,
	rec *metrics.Recorder,
	logger *logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		venues:  venues,
		artists: artists,
		genres:  genres,
		shows:   shows,
		metrics: rec,
		logger:  logger,
	}
}

// Routes exposes the JSON API.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/home", s.home).Methods(http.MethodGet)

	api.HandleFunc("/genres", s.listGenres).Methods(http.MethodGet)
	api.HandleFunc("/genres", s.createGenre).Methods(http.MethodPost)

	api.HandleFunc("/venues", s.listVenues).Methods(http.MethodGet)
	api.HandleFunc("/venues", s.createVenue).Methods(http.MethodPost)
	api.HandleFunc("/venues/search", s.searchVenues).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/venues/{id:[0-9]+}", s.getVenue).Methods(http.MethodGet)
	api.HandleFunc("/venues/{id:[0-9]+}", s.updateVenue).Methods(http.MethodPut)
	api.HandleFunc("/venues/{id:[0-9]+}", s.deleteVenue).Methods(http.MethodDelete)

	api.HandleFunc("/artists", s.listArtists).Methods(http.MethodGet)
	api.HandleFunc("/artists", s.createArtist).Methods(http.MethodPost)
	api.HandleFunc("/artists/search", s.searchArtists).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/artists/{id:[0-9]+}", s.getArtist).Methods(http.MethodGet)
	api.HandleFunc("/artists/{id:[0-9]+}", s.updateArtist).Methods(http.MethodPut)
	api.HandleFunc("/artists/{id:[0-9]+}/albums", s.createAlbum).Methods(http.MethodPost)
	api.HandleFunc("/artists/{id:[0-9]+}/songs", s.createSong).Methods(http.MethodPost)

	api.HandleFunc("/shows", s.listShows).Methods(http.MethodGet)
	api.HandleFunc("/shows", s.createShow).Methods(http.MethodPost)
	api.HandleFunc("/shows/conflicts", s.checkConflict).Methods(http.MethodGet)
	api.HandleFunc("/shows/{id:[0-9]+}", s.getShow).Methods(http.MethodGet)

	return router
}

type homeResponse struct {
	Venues  []views.VenueView  `json:"venues"`
	Artists []views.ArtistView `json:"artists"`
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := homeResponse{Venues: []views.VenueView{}, Artists: []views.ArtistView{}}

	recentVenues, err := s.venues.Recent(ctx, homeFeedSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, v := range recentVenues {
		view, err := s.venues.Get(ctx, v.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Venues = append(resp.Venues, view)
	}

	recentArtists, err := s.artists.Recent(ctx, homeFeedSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, a := range recentArtists {
		view, err := s.artists.Get(ctx, a.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Artists = append(resp.Artists, view)
	}

	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error      string `json:"error"`
	Resource   string `json:"resource,omitempty"`
	ResourceID int64  `json:"resource_id,omitempty"`
}

// errBadRequest marks malformed input caught by the handlers themselves.
var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Is(target error) bool { return target == errBadRequest }

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrVenueNotFound),
		errors.Is(err, store.ErrArtistNotFound),
		errors.Is(err, store.ErrShowNotFound),
		errors.Is(err, store.ErrAlbumNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrConflict),
		errors.Is(err, store.ErrGenreExists):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, booking.ErrInvalidInterval),
		errors.Is(err, store.ErrGenreNotFound),
		errors.Is(err, venues.ErrInvalidVenue),
		errors.Is(err, artists.ErrInvalidArtist),
		errors.Is(err, shows.ErrInvalidShow),
		errors.Is(err, genres.ErrNameRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		resp.Resource = conflict.Kind.String()
		resp.ResourceID = conflict.ResourceID
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		if !errors.Is(err, store.ErrWriteFailure) {
			resp.Error = "internal server error"
		}
	}
	writeJSON(w, status, resp)
}

func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id parameter")
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON payload")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
