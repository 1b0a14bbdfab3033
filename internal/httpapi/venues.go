package httpapi

import (
	"net/http"
)

type deleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) listVenues(w http.ResponseWriter, r *http.Request) {
	areas, err := s.venues.Areas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func (s *Server) searchVenues(w http.ResponseWriter, r *http.Request) {
	result, err := s.venues.Search(r.Context(), r.FormValue("search_term"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getVenue(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.venues.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) createVenue(w http.ResponseWriter, r *http.Request) {
	var payload venuePayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	sel, err := genreSelection(payload.Genres, payload.NewGenre)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.venues.Create(r.Context(), payload.venue(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.venues.Get(r.Context(), created.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) updateVenue(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var payload venuePayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	sel, err := genreSelection(payload.Genres, payload.NewGenre)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.venues.Update(r.Context(), id, payload.venue(), sel); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.venues.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) deleteVenue(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.venues.Delete(r.Context(), id); err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.WithContext(r.Context()).Error().Err(err).Int64("venue_id", id).Msg("delete venue failed")
		}
		writeJSON(w, status, deleteResponse{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Success: true})
}
