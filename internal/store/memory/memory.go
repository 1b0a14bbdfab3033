// Package memory is an in-process store with the same semantics as the Postgres
// store. It backs STORE_BACKEND=memory and the service tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"fyyur/internal/booking"
	"fyyur/internal/models"
	"fyyur/internal/store"
)

// Store keeps every record in maps guarded by a single mutex.
type Store struct {
	mu sync.Mutex

	lastID       int64
	genres       map[int64]models.Genre
	venues       map[int64]models.Venue
	venueGenres  map[int64][]int64
	artists      map[int64]models.Artist
	artistGenres map[int64][]int64
	shows        map[int64]models.Show
	albums       map[int64]models.Album
	songs        map[int64]models.Song

	now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		genres:       make(map[int64]models.Genre),
		venues:       make(map[int64]models.Venue),
		venueGenres:  make(map[int64][]int64),
		artists:      make(map[int64]models.Artist),
		artistGenres: make(map[int64][]int64),
		shows:        make(map[int64]models.Show),
		albums:       make(map[int64]models.Album),
		songs:        make(map[int64]models.Song),
		now:          time.Now,
	}
}

func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

// ListGenres returns every genre ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	genres := slices.Collect(maps.Values(s.genres))
	slices.SortFunc(genres, func(a, b models.Genre) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return genres, nil
}

// CreateGenre stores a new genre. Names are unique.
func (s *Store) CreateGenre(ctx context.Context, name string) (models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return models.Genre{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkGenreName(name); err != nil {
		return models.Genre{}, err
	}
	genre := models.Genre{ID: s.nextID(), Name: name}
	s.genres[genre.ID] = genre
	return genre, nil
}

func (s *Store) checkGenreName(name string) error {
	for _, g := range s.genres {
		if g.Name == name {
			return store.NewWriteError("insert genre", fmt.Errorf("%w: %q", store.ErrGenreExists, name))
		}
	}
	return nil
}

// resolveGenres validates the selection and returns the ids to link. The new
// genre, if any, is only created once every check has passed.
func (s *Store) resolveGenres(sel models.GenreSelection) ([]int64, error) {
	var missing []int64
	for _, id := range sel.IDs {
		if _, ok := s.genres[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", store.ErrGenreNotFound, missing)
	}

	ids := slices.Clone(sel.IDs)
	slices.Sort(ids)
	if sel.WantsNew() {
		if err := s.checkGenreName(sel.NewName); err != nil {
			return nil, err
		}
		genre := models.Genre{ID: s.nextID(), Name: sel.NewName}
		s.genres[genre.ID] = genre
		ids = append(ids, genre.ID)
	}
	return ids, nil
}

func (s *Store) genresFor(ids []int64) []models.Genre {
	if len(ids) == 0 {
		return nil
	}
	genres := make([]models.Genre, 0, len(ids))
	for _, id := range ids {
		if g, ok := s.genres[id]; ok {
			genres = append(genres, g)
		}
	}
	slices.SortFunc(genres, func(a, b models.Genre) int { return cmp.Compare(a.Name, b.Name) })
	return genres
}

// CreateVenue stores a venue and its genre links.
func (s *Store) CreateVenue(ctx context.Context, venue models.Venue, sel models.GenreSelection) (models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.resolveGenres(sel)
	if err != nil {
		return models.Venue{}, err
	}

	venue.ID = s.nextID()
	venue.CreatedAt = s.now()
	venue.Genres = nil
	s.venues[venue.ID] = venue
	s.venueGenres[venue.ID] = ids
	return s.venueLocked(venue.ID), nil
}

// UpdateVenue replaces the venue's fields and genre links.
func (s *Store) UpdateVenue(ctx context.Context, id int64, venue models.Venue, sel models.GenreSelection) (models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.venues[id]
	if !ok {
		return models.Venue{}, store.ErrVenueNotFound
	}
	ids, err := s.resolveGenres(sel)
	if err != nil {
		return models.Venue{}, err
	}

	venue.ID = id
	venue.CreatedAt = current.CreatedAt
	venue.Genres = nil
	s.venues[id] = venue
	s.venueGenres[id] = ids
	return s.venueLocked(id), nil
}

// DeleteVenue removes a venue with its shows and genre links.
func (s *Store) DeleteVenue(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.venues[id]; !ok {
		return store.ErrVenueNotFound
	}
	delete(s.venues, id)
	delete(s.venueGenres, id)
	maps.DeleteFunc(s.shows, func(_ int64, show models.Show) bool { return show.VenueID == id })
	return nil
}

// GetVenue returns the venue with its genres.
func (s *Store) GetVenue(ctx context.Context, id int64) (models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.venues[id]; !ok {
		return models.Venue{}, store.ErrVenueNotFound
	}
	return s.venueLocked(id), nil
}

func (s *Store) venueLocked(id int64) models.Venue {
	v := s.venues[id]
	v.Genres = s.genresFor(s.venueGenres[id])
	return v
}

// SearchVenues returns venues whose name contains term, ignoring case, in id order.
func (s *Store) SearchVenues(ctx context.Context, term string) ([]models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Venue
	for _, id := range slices.Sorted(maps.Keys(s.venues)) {
		if containsFold(s.venues[id].Name, term) {
			out = append(out, s.venueLocked(id))
		}
	}
	return out, nil
}

// RecentVenues returns up to limit venues, newest first.
func (s *Store) RecentVenues(ctx context.Context, limit int) ([]models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := slices.Sorted(maps.Keys(s.venues))
	slices.Reverse(ids)
	var out []models.Venue
	for _, id := range ids[:min(max(limit, 0), len(ids))] {
		out = append(out, s.venueLocked(id))
	}
	return out, nil
}

// VenueListings returns every venue with its upcoming show count, ordered by
// state, city and name.
func (s *Store) VenueListings(ctx context.Context, now time.Time) ([]models.VenueListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	upcoming := make(map[int64]int, len(s.venues))
	for _, show := range s.shows {
		if !show.StartTime.Before(now) {
			upcoming[show.VenueID]++
		}
	}

	listings := make([]models.VenueListing, 0, len(s.venues))
	for _, v := range s.venues {
		listings = append(listings, models.VenueListing{
			ID:               v.ID,
			Name:             v.Name,
			City:             v.City,
			State:            v.State,
			NumUpcomingShows: upcoming[v.ID],
		})
	}
	slices.SortFunc(listings, func(a, b models.VenueListing) int {
		return cmp.Or(
			cmp.Compare(a.State, b.State),
			cmp.Compare(a.City, b.City),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return listings, nil
}

// CreateArtist stores an artist and its genre links.
func (s *Store) CreateArtist(ctx context.Context, artist models.Artist, sel models.GenreSelection) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.resolveGenres(sel)
	if err != nil {
		return models.Artist{}, err
	}

	artist.ID = s.nextID()
	artist.CreatedAt = s.now()
	artist.Genres = nil
	s.artists[artist.ID] = artist
	s.artistGenres[artist.ID] = ids
	return s.artistLocked(artist.ID), nil
}

// UpdateArtist replaces the artist's fields and genre links.
func (s *Store) UpdateArtist(ctx context.Context, id int64, artist models.Artist, sel models.GenreSelection) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.artists[id]
	if !ok {
		return models.Artist{}, store.ErrArtistNotFound
	}
	ids, err := s.resolveGenres(sel)
	if err != nil {
		return models.Artist{}, err
	}

	artist.ID = id
	artist.CreatedAt = current.CreatedAt
	artist.Genres = nil
	s.artists[id] = artist
	s.artistGenres[id] = ids
	return s.artistLocked(id), nil
}

// GetArtist returns the artist with its genres.
func (s *Store) GetArtist(ctx context.Context, id int64) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[id]; !ok {
		return models.Artist{}, store.ErrArtistNotFound
	}
	return s.artistLocked(id), nil
}

func (s *Store) artistLocked(id int64) models.Artist {
	a := s.artists[id]
	a.Genres = s.genresFor(s.artistGenres[id])
	return a
}

// ListArtists returns the {id, name} index ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]models.ArtistListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ArtistListing, 0, len(s.artists))
	for _, a := range s.artists {
		out = append(out, models.ArtistListing{ID: a.ID, Name: a.Name})
	}
	slices.SortFunc(out, func(a, b models.ArtistListing) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// SearchArtists returns artists whose name contains term, ignoring case, in id order.
func (s *Store) SearchArtists(ctx context.Context, term string) ([]models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Artist
	for _, id := range slices.Sorted(maps.Keys(s.artists)) {
		if containsFold(s.artists[id].Name, term) {
			out = append(out, s.artistLocked(id))
		}
	}
	return out, nil
}

// RecentArtists returns up to limit artists, newest first.
func (s *Store) RecentArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := slices.Sorted(maps.Keys(s.artists))
	slices.Reverse(ids)
	var out []models.Artist
	for _, id := range ids[:min(max(limit, 0), len(ids))] {
		out = append(out, s.artistLocked(id))
	}
	return out, nil
}

// CreateAlbum stores an album for an existing artist.
func (s *Store) CreateAlbum(ctx context.Context, album models.Album) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[album.ArtistID]; !ok {
		return models.Album{}, store.ErrArtistNotFound
	}
	album.ID = s.nextID()
	album.Songs = nil
	s.albums[album.ID] = album
	return album, nil
}

// CreateSong stores a song. An album, when given, must belong to the same artist.
func (s *Store) CreateSong(ctx context.Context, song models.Song) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if song.AlbumID != nil {
		album, ok := s.albums[*song.AlbumID]
		if !ok || album.ArtistID != song.ArtistID {
			return models.Song{}, store.ErrAlbumNotFound
		}
	}
	if _, ok := s.artists[song.ArtistID]; !ok {
		return models.Song{}, store.ErrArtistNotFound
	}
	song.ID = s.nextID()
	s.songs[song.ID] = song
	return song, nil
}

// AlbumsByArtist returns the artist's albums with their songs attached.
func (s *Store) AlbumsByArtist(ctx context.Context, artistID int64) ([]models.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var albums []models.Album
	for _, a := range s.albums {
		if a.ArtistID == artistID {
			albums = append(albums, a)
		}
	}
	slices.SortFunc(albums, func(a, b models.Album) int {
		return cmp.Or(compareRelease(a.ReleaseDate, b.ReleaseDate), cmp.Compare(a.ID, b.ID))
	})
	for i := range albums {
		for _, id := range slices.Sorted(maps.Keys(s.songs)) {
			song := s.songs[id]
			if song.AlbumID != nil && *song.AlbumID == albums[i].ID {
				albums[i].Songs = append(albums[i].Songs, song)
			}
		}
	}
	return albums, nil
}

// SinglesByArtist returns the artist's songs that are not on any album.
func (s *Store) SinglesByArtist(ctx context.Context, artistID int64) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var singles []models.Song
	for _, song := range s.songs {
		if song.ArtistID == artistID && song.IsSingle() {
			singles = append(singles, song)
		}
	}
	slices.SortFunc(singles, func(a, b models.Song) int {
		return cmp.Or(compareRelease(a.ReleaseDate, b.ReleaseDate), cmp.Compare(a.ID, b.ID))
	})
	return singles, nil
}

// ListShows returns every show, earliest first.
func (s *Store) ListShows(ctx context.Context) ([]models.ShowDetail, error) {
	return s.showDetails(ctx, func(models.Show) bool { return true })
}

// ShowsByVenue returns every show booked at the venue.
func (s *Store) ShowsByVenue(ctx context.Context, venueID int64) ([]models.ShowDetail, error) {
	return s.showDetails(ctx, func(show models.Show) bool { return show.VenueID == venueID })
}

// ShowsByArtist returns every show the artist is booked for.
func (s *Store) ShowsByArtist(ctx context.Context, artistID int64) ([]models.ShowDetail, error) {
	return s.showDetails(ctx, func(show models.Show) bool { return show.ArtistID == artistID })
}

// GetShow returns one show with its venue and artist.
func (s *Store) GetShow(ctx context.Context, id int64) (models.ShowDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.ShowDetail{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	show, ok := s.shows[id]
	if !ok {
		return models.ShowDetail{}, store.ErrShowNotFound
	}
	return s.detailLocked(show), nil
}

func (s *Store) showDetails(ctx context.Context, keep func(models.Show) bool) ([]models.ShowDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ShowDetail
	for _, show := range s.shows {
		if keep(show) {
			out = append(out, s.detailLocked(show))
		}
	}
	slices.SortFunc(out, func(a, b models.ShowDetail) int {
		return cmp.Or(a.StartTime.Compare(b.StartTime), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *Store) detailLocked(show models.Show) models.ShowDetail {
	return models.ShowDetail{
		Show:   show,
		Venue:  s.venues[show.VenueID],
		Artist: s.artists[show.ArtistID],
	}
}

// HasOverlap reports whether a stored show of the resource shares an instant with iv.
func (s *Store) HasOverlap(ctx context.Context, r models.Resource, iv models.Interval) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return overlaps(s.shows, nil, r, iv)
}

// InBookingTx runs fn while holding the store lock. Shows inserted by fn become
// visible only if it returns nil. fn must not call other Store methods.
func (s *Store) InBookingTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &bookingTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, show := range tx.pending {
		s.shows[show.ID] = show
	}
	return nil
}

type bookingTx struct {
	store   *Store
	pending []models.Show
}

func (t *bookingTx) HasOverlap(ctx context.Context, r models.Resource, iv models.Interval) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return overlaps(t.store.shows, t.pending, r, iv)
}

// LockResource only checks existence; the store lock is already held.
func (t *bookingTx) LockResource(ctx context.Context, r models.Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch r.Kind {
	case models.ResourceVenue:
		if _, ok := t.store.venues[r.ID]; !ok {
			return store.ErrVenueNotFound
		}
	case models.ResourceArtist:
		if _, ok := t.store.artists[r.ID]; !ok {
			return store.ErrArtistNotFound
		}
	default:
		return fmt.Errorf("lock %s: unknown resource kind", r.Kind)
	}
	return nil
}

func (t *bookingTx) InsertShow(ctx context.Context, show models.Show) (models.Show, error) {
	if err := ctx.Err(); err != nil {
		return models.Show{}, store.NewWriteError("insert show", err)
	}
	show.ID = t.store.nextID()
	t.pending = append(t.pending, show)
	return show, nil
}

func overlaps(committed map[int64]models.Show, pending []models.Show, r models.Resource, iv models.Interval) (bool, error) {
	if r.Kind.Column() == "" {
		return false, fmt.Errorf("overlap check: unknown resource kind %s", r.Kind)
	}
	for _, show := range committed {
		if show.Of(r.Kind) == r.ID && show.Interval().Overlaps(iv) {
			return true, nil
		}
	}
	for _, show := range pending {
		if show.Of(r.Kind) == r.ID && show.Interval().Overlaps(iv) {
			return true, nil
		}
	}
	return false, nil
}

func containsFold(name, term string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// compareRelease orders known dates first, earliest first.
func compareRelease(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
