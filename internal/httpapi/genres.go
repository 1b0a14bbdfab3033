package httpapi

import "net/http"

type genrePayload struct {
	Name string `json:"name"`
}

func (s *Server) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.genres.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) createGenre(w http.ResponseWriter, r *http.Request) {
	var payload genrePayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	genre, err := s.genres.Create(r.Context(), payload.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, genre)
}
