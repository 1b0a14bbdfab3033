package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"fyyur/internal/app/artists"
	"fyyur/internal/app/genres"
	"fyyur/internal/app/shows"
	"fyyur/internal/app/venues"
	"fyyur/internal/booking"
	"fyyur/internal/directory"
	"fyyur/internal/metrics"
	"fyyur/internal/store"
	"fyyur/internal/store/memory"
)

var now = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	mem := memory.New()
	dir := directory.New(mem, func() time.Time { return now })
	rec := metrics.New()

	srv := New(
		venues.New(mem, dir, rec),
		artists.New(mem, dir, rec),
		genres.New(mem),
		shows.New(mem, booking.New(mem), rec),
		rec,
		nil,
	)
	return testServer{handler: srv.Routes(), store: mem}
}

func (ts testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func (ts testServer) createVenue(t *testing.T, name, city, state string) int64 {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/api/v1/venues", map[string]any{
		"name":    name,
		"city":    city,
		"state":   state,
		"address": "1015 Folsom Street",
		"phone":   "123-123-1234",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create venue: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return decode[struct {
		ID int64 `json:"id"`
	}](t, rr).ID
}

func (ts testServer) createArtist(t *testing.T, name string) int64 {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/api/v1/artists", map[string]any{
		"name":  name,
		"city":  "San Francisco",
		"state": "CA",
		"phone": "326-123-5000",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create artist: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return decode[struct {
		ID int64 `json:"id"`
	}](t, rr).ID
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}
}

func TestCreateVenueWithNewGenre(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/api/v1/genres", map[string]string{"name": "Jazz"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create genre: expected 201, got %d", rr.Code)
	}
	jazz := decode[struct {
		ID int64 `json:"id"`
	}](t, rr).ID

	rr = ts.do(t, http.MethodPost, "/api/v1/venues", map[string]any{
		"name":      "The Musical Hop",
		"city":      "San Francisco",
		"state":     "ca",
		"address":   "1015 Folsom Street",
		"phone":     "123-123-1234",
		"genres":    []any{jazz, "new"},
		"new_genre": "Swing",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	view := decode[struct {
		State  string   `json:"state"`
		Genres []string `json:"genres"`
	}](t, rr)
	if view.State != "CA" {
		t.Fatalf("expected normalized state, got %q", view.State)
	}
	if len(view.Genres) != 2 {
		t.Fatalf("expected two genres, got %v", view.Genres)
	}
}

func TestCreateVenueErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{
			name:   "missing name",
			body:   map[string]any{"city": "SF", "state": "CA", "address": "x", "phone": "555"},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing phone",
			body:   map[string]any{"name": "A", "city": "SF", "state": "CA", "address": "x"},
			status: http.StatusBadRequest,
		},
		{
			name:   "bad genre id",
			body:   map[string]any{"name": "A", "city": "SF", "state": "CA", "address": "x", "phone": "555", "genres": []string{"rock"}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown genre id",
			body:   map[string]any{"name": "A", "city": "SF", "state": "CA", "address": "x", "phone": "555", "genres": []int{42}},
			status: http.StatusBadRequest,
		},
		{
			name:   "new genre without name",
			body:   map[string]any{"name": "A", "city": "SF", "state": "CA", "address": "x", "phone": "555", "genres": []string{"new"}},
			status: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			rr := ts.do(t, http.MethodPost, "/api/v1/venues", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestDuplicateGenreIsConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/genres", map[string]string{"name": "Jazz"})

	rr := ts.do(t, http.MethodPost, "/api/v1/venues", map[string]any{
		"name":      "The Musical Hop",
		"city":      "San Francisco",
		"state":     "CA",
		"address":   "1015 Folsom Street",
		"phone":     "123-123-1234",
		"genres":    []string{"new"},
		"new_genre": "Jazz",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}

	areas := decode[[]directory.Area](t, ts.do(t, http.MethodGet, "/api/v1/venues", nil))
	if len(areas) != 0 {
		t.Fatalf("expected no venue after failed create, got %+v", areas)
	}
}

func TestVenueAreasAndSearch(t *testing.T) {
	ts := newTestServer(t)
	ts.createVenue(t, "The Musical Hop", "San Francisco", "CA")
	ts.createVenue(t, "The Dueling Pianos Bar", "New York", "NY")
	ts.createVenue(t, "Park Square Live Music & Coffee", "San Francisco", "CA")

	rr := ts.do(t, http.MethodGet, "/api/v1/venues", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	areas := decode[[]directory.Area](t, rr)
	if len(areas) != 2 || areas[0].State != "CA" || len(areas[0].Venues) != 2 {
		t.Fatalf("unexpected areas %+v", areas)
	}

	rr = ts.do(t, http.MethodGet, "/api/v1/venues/search?search_term=music", nil)
	result := decode[struct {
		Count int `json:"count"`
	}](t, rr)
	if result.Count != 2 {
		t.Fatalf("expected 2 matches, got %d", result.Count)
	}
}

func TestGetVenueNotFound(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/api/v1/venues/99", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestDeleteVenueReportsSuccess(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createVenue(t, "The Musical Hop", "San Francisco", "CA")

	rr := ts.do(t, http.MethodDelete, "/api/v1/venues/"+itoa(id), nil)
	if rr.Code != http.StatusOK || !decode[deleteResponse](t, rr).Success {
		t.Fatalf("expected success, got %d %s", rr.Code, rr.Body.String())
	}

	rr = ts.do(t, http.MethodDelete, "/api/v1/venues/"+itoa(id), nil)
	if rr.Code != http.StatusNotFound || decode[deleteResponse](t, rr).Success {
		t.Fatalf("expected failed delete, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestCreateShowConflicts(t *testing.T) {
	ts := newTestServer(t)
	hop := ts.createVenue(t, "The Musical Hop", "San Francisco", "CA")
	park := ts.createVenue(t, "Park Square", "San Francisco", "CA")
	petals := ts.createArtist(t, "Guns N Petals")
	sax := ts.createArtist(t, "The Wild Sax Band")

	rr := ts.do(t, http.MethodPost, "/api/v1/shows", map[string]any{
		"venue_id":   hop,
		"artist_id":  petals,
		"start_time": "2035-04-01T20:00:00Z",
		"end_time":   "2035-04-01T22:00:00Z",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	summary := decode[struct {
		VenueName string `json:"venue_name"`
		StartTime string `json:"start_time"`
	}](t, rr)
	if summary.VenueName != "The Musical Hop" || summary.StartTime != "2035-04-01 20:00:00" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	tests := []struct {
		name     string
		venue    int64
		artist   int64
		start    string
		resource string
	}{
		{name: "same venue", venue: hop, artist: sax, start: "2035-04-01 22:00:00", resource: "venue"},
		{name: "same artist", venue: park, artist: petals, start: "2035-04-01T21:00:00Z", resource: "artist"},
		{name: "both busy reports venue", venue: hop, artist: petals, start: "2035-04-01T21:00:00Z", resource: "venue"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, "/api/v1/shows", map[string]any{
				"venue_id":   tc.venue,
				"artist_id":  tc.artist,
				"start_time": tc.start,
				"end_time":   "2035-04-01T23:30:00Z",
			})
			if rr.Code != http.StatusConflict {
				t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
			}
			if got := decode[errorResponse](t, rr); got.Resource != tc.resource {
				t.Fatalf("expected %s conflict, got %+v", tc.resource, got)
			}
		})
	}

	list := decode[[]json.RawMessage](t, ts.do(t, http.MethodGet, "/api/v1/shows", nil))
	if len(list) != 1 {
		t.Fatalf("expected one stored show, got %d", len(list))
	}
}

func TestCreateShowBadInput(t *testing.T) {
	ts := newTestServer(t)
	hop := ts.createVenue(t, "The Musical Hop", "San Francisco", "CA")
	petals := ts.createArtist(t, "Guns N Petals")

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{
			name:   "inverted interval",
			body:   map[string]any{"venue_id": hop, "artist_id": petals, "start_time": "2035-04-01T22:00:00Z", "end_time": "2035-04-01T20:00:00Z"},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing start",
			body:   map[string]any{"venue_id": hop, "artist_id": petals, "end_time": "2035-04-01T20:00:00Z"},
			status: http.StatusBadRequest,
		},
		{
			name:   "garbled time",
			body:   map[string]any{"venue_id": hop, "artist_id": petals, "start_time": "tomorrow", "end_time": "2035-04-01T20:00:00Z"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown venue",
			body:   map[string]any{"venue_id": 999, "artist_id": petals, "start_time": "2035-04-01T20:00:00Z", "end_time": "2035-04-01T21:00:00Z"},
			status: http.StatusNotFound,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, "/api/v1/shows", tc.body)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCheckConflictEndpoint(t *testing.T) {
	ts := newTestServer(t)
	hop := ts.createVenue(t, "The Musical Hop", "San Francisco", "CA")
	petals := ts.createArtist(t, "Guns N Petals")
	ts.do(t, http.MethodPost, "/api/v1/shows", map[string]any{
		"venue_id":   hop,
		"artist_id":  petals,
		"start_time": "2035-04-01T20:00:00Z",
		"end_time":   "2035-04-01T22:00:00Z",
	})

	path := "/api/v1/shows/conflicts?kind=venue&id=" + itoa(hop) +
		"&start_time=2035-04-01T22:00:00Z&end_time=2035-04-01T23:00:00Z"
	rr := ts.do(t, http.MethodGet, path, nil)
	if rr.Code != http.StatusOK || !decode[conflictResponse](t, rr).Conflict {
		t.Fatalf("expected touching boundary to conflict, got %d %s", rr.Code, rr.Body.String())
	}

	rr = ts.do(t, http.MethodGet, "/api/v1/shows/conflicts?kind=stage&id=1", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", rr.Code)
	}
}

func TestArtistCatalog(t *testing.T) {
	ts := newTestServer(t)
	petals := ts.createArtist(t, "Guns N Petals")
	other := ts.createArtist(t, "Matt Quevedo")

	rr := ts.do(t, http.MethodPost, "/api/v1/artists/"+itoa(petals)+"/albums", map[string]any{
		"name":         "Debut",
		"release_date": "2019-05-21",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create album: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	album := decode[struct {
		ID int64 `json:"id"`
	}](t, rr).ID

	rr = ts.do(t, http.MethodPost, "/api/v1/artists/"+itoa(petals)+"/songs", map[string]any{"name": "Opener", "album_id": album})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create album song: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = ts.do(t, http.MethodPost, "/api/v1/artists/"+itoa(petals)+"/songs", map[string]any{"name": "Loose Single"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create single: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = ts.do(t, http.MethodPost, "/api/v1/artists/"+itoa(other)+"/songs", map[string]any{"name": "Stolen", "album_id": album})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("foreign album: expected 404, got %d", rr.Code)
	}

	view := decode[struct {
		Albums []struct {
			Songs []string `json:"songs"`
		} `json:"albums"`
		Songs []struct {
			Name string `json:"name"`
		} `json:"songs"`
	}](t, ts.do(t, http.MethodGet, "/api/v1/artists/"+itoa(petals), nil))
	if len(view.Albums) != 1 || len(view.Albums[0].Songs) != 1 {
		t.Fatalf("unexpected albums %+v", view.Albums)
	}
	if len(view.Songs) != 1 || view.Songs[0].Name != "Loose Single" {
		t.Fatalf("unexpected singles %+v", view.Songs)
	}

	index := decode[[]struct {
		Name string `json:"name"`
	}](t, ts.do(t, http.MethodGet, "/api/v1/artists", nil))
	if len(index) != 2 || index[0].Name != "Guns N Petals" {
		t.Fatalf("unexpected artist index %+v", index)
	}
}

func TestHomeListsRecent(t *testing.T) {
	ts := newTestServer(t)
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		ts.createVenue(t, name, "San Francisco", "CA")
	}
	ts.createArtist(t, "Guns N Petals")

	home := decode[struct {
		Venues []struct {
			Name string `json:"name"`
		} `json:"venues"`
		Artists []json.RawMessage `json:"artists"`
	}](t, ts.do(t, http.MethodGet, "/api/v1/home", nil))
	if len(home.Venues) != homeFeedSize || home.Venues[0].Name != "F" {
		t.Fatalf("unexpected home venues %+v", home.Venues)
	}
	if len(home.Artists) != 1 {
		t.Fatalf("expected one artist, got %d", len(home.Artists))
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/api/v1/nope", nil)
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
}

// failingVenues fails every call it overrides; the rest panic if reached.
type failingVenues struct {
	VenueService
	err error
}

func (f failingVenues) Areas(context.Context) ([]directory.Area, error) {
	return nil, f.err
}

func (f failingVenues) Delete(context.Context, int64) error {
	return f.err
}

func TestWriteFailureIs500(t *testing.T) {
	failure := store.NewWriteError("delete venue", errors.New("connection reset"))
	srv := New(failingVenues{err: failure}, nil, nil, nil, nil, nil).Routes()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/venues/1", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body deleteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Success {
		t.Fatalf("expected success=false, got %s", rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/venues", nil)
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: store.ErrShowNotFound, want: http.StatusNotFound},
		{err: &booking.ConflictError{Kind: 1, ResourceID: 3}, want: http.StatusConflict},
		{err: store.NewWriteError("insert genre", store.ErrGenreExists), want: http.StatusConflict},
		{err: booking.ErrInvalidInterval, want: http.StatusBadRequest},
		{err: genres.ErrNameRequired, want: http.StatusBadRequest},
		{err: store.NewWriteError("commit", errors.New("boom")), want: http.StatusInternalServerError},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v): expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
