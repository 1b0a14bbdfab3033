package httpapi

import (
	"net/http"

	"fyyur/internal/models"
)

func (s *Server) listArtists(w http.ResponseWriter, r *http.Request) {
	listings, err := s.artists.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) searchArtists(w http.ResponseWriter, r *http.Request) {
	result, err := s.artists.Search(r.Context(), r.FormValue("search_term"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getArtist(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.artists.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) createArtist(w http.ResponseWriter, r *http.Request) {
	var payload artistPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	sel, err := genreSelection(payload.Genres, payload.NewGenre)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.artists.Create(r.Context(), payload.artist(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.artists.Get(r.Context(), created.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) updateArtist(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var payload artistPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	sel, err := genreSelection(payload.Genres, payload.NewGenre)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.artists.Update(r.Context(), id, payload.artist(), sel); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.artists.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) createAlbum(w http.ResponseWriter, r *http.Request) {
	artistID, err := parseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var payload albumPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	released, err := parseDate(payload.ReleaseDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	album, err := s.artists.AddAlbum(r.Context(), artistID, models.Album{Name: payload.Name, ReleaseDate: released})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

func (s *Server) createSong(w http.ResponseWriter, r *http.Request) {
	artistID, err := parseIDParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var payload songPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	released, err := parseDate(payload.ReleaseDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	song, err := s.artists.AddSong(r.Context(), artistID, models.Song{
		Name:        payload.Name,
		AlbumID:     payload.AlbumID,
		ReleaseDate: released,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}
