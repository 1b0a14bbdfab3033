package artists

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fyyur/internal/directory"
	"fyyur/internal/metrics"
	"fyyur/internal/models"
	"fyyur/internal/views"
)

// ErrInvalidArtist wraps every validation failure for artist, album and song input.
var ErrInvalidArtist = errors.New("invalid artist")

// Store defines persistence operations for artists and their catalog
type Store interface {
	CreateArtist(ctx context.Context, artist models.Artist, sel models.GenreSelection) (models.Artist, error)
	UpdateArtist(ctx context.Context, id int64, artist models.Artist, sel models.GenreSelection) (models.Artist, error)
	GetArtist(ctx context.Context, id int64) (models.Artist, error)
	ListArtists(ctx context.Context) ([]models.ArtistListing, error)
	RecentArtists(ctx context.Context, limit int) ([]models.Artist, error)
	CreateAlbum(ctx context.Context, album models.Album) (models.Album, error)
	CreateSong(ctx context.Context, song models.Song) (models.Song, error)
}

// Directory builds the read side for artists
type Directory interface {
	SearchArtists(ctx context.Context, term string) (directory.ArtistSearchResult, error)
	ArtistView(ctx context.Context, a models.Artist) (views.ArtistView, error)
}

// Service coordinates artist-related operations
type Service interface {
	List(ctx context.Context) ([]models.ArtistListing, error)
	Search(ctx context.Context, term string) (directory.ArtistSearchResult, error)
	Get(ctx context.Context, id int64) (views.ArtistView, error)
	Recent(ctx context.Context, limit int) ([]models.Artist, error)
	Create(ctx context.Context, artist models.Artist, sel models.GenreSelection) (models.Artist, error)
	Update(ctx context.Context, id int64, artist models.Artist, sel models.GenreSelection) (models.Artist, error)
	AddAlbum(ctx context.Context, artistID int64, album models.Album) (models.Album, error)
	AddSong(ctx context.Context, artistID int64, song models.Song) (models.Song, error)
}

type service struct {
	store   Store
	dir     Directory
	metrics *metrics.Recorder
}

// New constructs an artists Service. metrics may be nil.
func New(store Store, dir Directory, rec *metrics.Recorder) Service {
	return &service{store: store, dir: dir, metrics: rec}
}

func (s *service) List(ctx context.Context) ([]models.ArtistListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListArtists(ctx)
}

func (s *service) Search(ctx context.Context, term string) (result directory.ArtistSearchResult, err error) {
	defer s.metrics.Track(ctx, "artists.search", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return directory.ArtistSearchResult{}, err
	}
	return s.dir.SearchArtists(ctx, strings.TrimSpace(term))
}

func (s *service) Get(ctx context.Context, id int64) (view views.ArtistView, err error) {
	defer s.metrics.Track(ctx, "artists.get", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return views.ArtistView{}, err
	}
	artist, err := s.store.GetArtist(ctx, id)
	if err != nil {
		return views.ArtistView{}, err
	}
	return s.dir.ArtistView(ctx, artist)
}

func (s *service) Recent(ctx context.Context, limit int) ([]models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.RecentArtists(ctx, limit)
}

func (s *service) Create(ctx context.Context, artist models.Artist, sel models.GenreSelection) (created models.Artist, err error) {
	defer s.metrics.Track(ctx, "artists.create", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	artist, err = normalize(artist)
	if err != nil {
		return models.Artist{}, err
	}
	return s.store.CreateArtist(ctx, artist, sel)
}

func (s *service) Update(ctx context.Context, id int64, artist models.Artist, sel models.GenreSelection) (updated models.Artist, err error) {
	defer s.metrics.Track(ctx, "artists.update", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	artist, err = normalize(artist)
	if err != nil {
		return models.Artist{}, err
	}
	return s.store.UpdateArtist(ctx, id, artist, sel)
}

func (s *service) AddAlbum(ctx context.Context, artistID int64, album models.Album) (created models.Album, err error) {
	defer s.metrics.Track(ctx, "artists.add_album", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}
	album.Name = strings.TrimSpace(album.Name)
	if album.Name == "" {
		return models.Album{}, fmt.Errorf("%w: album name is required", ErrInvalidArtist)
	}
	album.ArtistID = artistID
	return s.store.CreateAlbum(ctx, album)
}

func (s *service) AddSong(ctx context.Context, artistID int64, song models.Song) (created models.Song, err error) {
	defer s.metrics.Track(ctx, "artists.add_song", time.Now(), &err)
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	song.Name = strings.TrimSpace(song.Name)
	if song.Name == "" {
		return models.Song{}, fmt.Errorf("%w: song name is required", ErrInvalidArtist)
	}
	song.ArtistID = artistID
	return s.store.CreateSong(ctx, song)
}

func normalize(a models.Artist) (models.Artist, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	a.Phone = strings.TrimSpace(a.Phone)
	a.ImageLink = models.TrimOptional(a.ImageLink)
	a.FacebookLink = models.TrimOptional(a.FacebookLink)
	a.Website = models.TrimOptional(a.Website)
	a.SeekingDescription = models.TrimOptional(a.SeekingDescription)

	switch {
	case a.Name == "":
		return models.Artist{}, fmt.Errorf("%w: name is required", ErrInvalidArtist)
	case a.City == "":
		return models.Artist{}, fmt.Errorf("%w: city is required", ErrInvalidArtist)
	case a.State == "":
		return models.Artist{}, fmt.Errorf("%w: state is required", ErrInvalidArtist)
	case a.Phone == "":
		return models.Artist{}, fmt.Errorf("%w: phone is required", ErrInvalidArtist)
	}
	return a, nil
}
