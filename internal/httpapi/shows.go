package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"fyyur/internal/booking"
	"fyyur/internal/models"
)

type conflictResponse struct {
	Conflict bool `json:"conflict"`
}

func (s *Server) listShows(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.shows.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) getShow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.shows.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) createShow(w http.ResponseWriter, r *http.Request) {
	var payload showPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	start, err := parseTimestamp("start_time", payload.StartTime)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, err := parseTimestamp("end_time", payload.EndTime)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.shows.Create(r.Context(), booking.Request{
		VenueID:  payload.VenueID,
		ArtistID: payload.ArtistID,
		Start:    start,
		End:      end,
	})
	if err != nil {
		if statusFor(err) == http.StatusConflict {
			s.logger.WithContext(r.Context()).Info().Err(err).
				Int64("venue_id", payload.VenueID).
				Int64("artist_id", payload.ArtistID).
				Msg("show rejected")
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// checkConflict answers GET /shows/conflicts?kind=venue&id=1&start_time=..&end_time=..
func (s *Server) checkConflict(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var kind models.ResourceKind
	switch strings.ToLower(query.Get("kind")) {
	case "venue":
		kind = models.ResourceVenue
	case "artist":
		kind = models.ResourceArtist
	default:
		s.writeError(w, r, badRequest("kind must be venue or artist"))
		return
	}
	id, err := strconv.ParseInt(query.Get("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, badRequest("invalid id parameter"))
		return
	}
	start, err := parseTimestamp("start_time", query.Get("start_time"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, err := parseTimestamp("end_time", query.Get("end_time"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	busy, err := s.shows.CheckConflict(r.Context(), kind, id, start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conflictResponse{Conflict: busy})
}
