// Package directory answers the browse and search questions of the booking
// directory: venues grouped by area, and name search over venues and artists.
package directory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"fyyur/internal/models"
	"fyyur/internal/views"
)

// Store lists the reads the directory performs.
type Store interface {
	VenueListings(ctx context.Context, now time.Time) ([]models.VenueListing, error)
	SearchVenues(ctx context.Context, term string) ([]models.Venue, error)
	SearchArtists(ctx context.Context, term string) ([]models.Artist, error)
	ShowsByVenue(ctx context.Context, venueID int64) ([]models.ShowDetail, error)
	ShowsByArtist(ctx context.Context, artistID int64) ([]models.ShowDetail, error)
	AlbumsByArtist(ctx context.Context, artistID int64) ([]models.Album, error)
	SinglesByArtist(ctx context.Context, artistID int64) ([]models.Song, error)
}

// Area is one (city, state) group of venues.
type Area struct {
	City   string                `json:"city"`
	State  string                `json:"state"`
	Venues []models.VenueListing `json:"venues"`
}

// VenueSearchResult is every venue matching a search, with full views.
type VenueSearchResult struct {
	Count int               `json:"count"`
	Data  []views.VenueView `json:"data"`
}

// ArtistSearchResult is every artist matching a search, with full views.
type ArtistSearchResult struct {
	Count int                `json:"count"`
	Data  []views.ArtistView `json:"data"`
}

// Directory builds listings and views from a Store.
type Directory struct {
	store Store
	clock views.Clock
}

// New constructs a Directory. A nil clock reads the wall clock.
func New(store Store, clock views.Clock) *Directory {
	if clock == nil {
		clock = time.Now
	}
	return &Directory{store: store, clock: clock}
}

// Now returns the directory's notion of the current time.
func (d *Directory) Now() time.Time {
	return d.clock()
}

// Areas groups every venue by (city, state), areas ordered by state then city
// and venues within an area by name.
func (d *Directory) Areas(ctx context.Context) ([]Area, error) {
	listings, err := d.store.VenueListings(ctx, d.clock())
	if err != nil {
		return nil, err
	}
	return GroupByArea(listings), nil
}

// GroupByArea groups listings by (city, state). The input order does not matter.
func GroupByArea(listings []models.VenueListing) []Area {
	sorted := slices.Clone(listings)
	slices.SortStableFunc(sorted, func(a, b models.VenueListing) int {
		return cmp.Or(
			cmp.Compare(a.State, b.State),
			cmp.Compare(a.City, b.City),
			cmp.Compare(a.Name, b.Name),
		)
	})

	areas := []Area{}
	for _, l := range sorted {
		if n := len(areas); n > 0 && areas[n-1].City == l.City && areas[n-1].State == l.State {
			areas[n-1].Venues = append(areas[n-1].Venues, l)
			continue
		}
		areas = append(areas, Area{City: l.City, State: l.State, Venues: []models.VenueListing{l}})
	}
	return areas
}

// SearchVenues matches term against venue names, ignoring case.
func (d *Directory) SearchVenues(ctx context.Context, term string) (VenueSearchResult, error) {
	venues, err := d.store.SearchVenues(ctx, term)
	if err != nil {
		return VenueSearchResult{}, err
	}

	result := VenueSearchResult{Data: make([]views.VenueView, 0, len(venues))}
	for _, v := range venues {
		view, err := d.VenueView(ctx, v)
		if err != nil {
			return VenueSearchResult{}, err
		}
		result.Data = append(result.Data, view)
	}
	result.Count = len(result.Data)
	return result, nil
}

// SearchArtists matches term against artist names, ignoring case.
func (d *Directory) SearchArtists(ctx context.Context, term string) (ArtistSearchResult, error) {
	artists, err := d.store.SearchArtists(ctx, term)
	if err != nil {
		return ArtistSearchResult{}, err
	}

	result := ArtistSearchResult{Data: make([]views.ArtistView, 0, len(artists))}
	for _, a := range artists {
		view, err := d.ArtistView(ctx, a)
		if err != nil {
			return ArtistSearchResult{}, err
		}
		result.Data = append(result.Data, view)
	}
	result.Count = len(result.Data)
	return result, nil
}

// VenueView loads the venue's shows and builds its view.
func (d *Directory) VenueView(ctx context.Context, v models.Venue) (views.VenueView, error) {
	shows, err := d.store.ShowsByVenue(ctx, v.ID)
	if err != nil {
		return views.VenueView{}, err
	}
	return views.BuildVenueView(v, shows, d.clock()), nil
}

// ArtistView loads the artist's shows, albums and singles and builds its view.
func (d *Directory) ArtistView(ctx context.Context, a models.Artist) (views.ArtistView, error) {
	shows, err := d.store.ShowsByArtist(ctx, a.ID)
	if err != nil {
		return views.ArtistView{}, err
	}
	albums, err := d.store.AlbumsByArtist(ctx, a.ID)
	if err != nil {
		return views.ArtistView{}, err
	}
	singles, err := d.store.SinglesByArtist(ctx, a.ID)
	if err != nil {
		return views.ArtistView{}, err
	}
	return views.BuildArtistView(a, shows, albums, singles, d.clock()), nil
}
