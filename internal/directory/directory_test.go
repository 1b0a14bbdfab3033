package directory

import (
	"context"
	"testing"
	"time"

	"fyyur/internal/booking"
	"fyyur/internal/models"
	"fyyur/internal/store/memory"
)

var now = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func TestGroupByArea(t *testing.T) {
	listings := []models.VenueListing{
		{ID: 3, Name: "Pianos", City: "New York", State: "NY"},
		{ID: 1, Name: "The Musical Hop", City: "San Francisco", State: "CA"},
		{ID: 2, Name: "Park Square", City: "San Francisco", State: "CA"},
		{ID: 4, Name: "Oakland Hall", City: "Oakland", State: "CA"},
	}

	areas := GroupByArea(listings)

	if len(areas) != 3 {
		t.Fatalf("expected 3 areas, got %d", len(areas))
	}
	want := []struct{ city, state string }{
		{"Oakland", "CA"},
		{"San Francisco", "CA"},
		{"New York", "NY"},
	}
	for i, w := range want {
		if areas[i].City != w.city || areas[i].State != w.state {
			t.Fatalf("area %d: expected %s, %s got %s, %s", i, w.city, w.state, areas[i].City, areas[i].State)
		}
	}
	if sf := areas[1].Venues; len(sf) != 2 || sf[0].Name != "Park Square" || sf[1].Name != "The Musical Hop" {
		t.Fatalf("unexpected San Francisco venues %+v", sf)
	}
}

func TestGroupByAreaSameCityDifferentState(t *testing.T) {
	areas := GroupByArea([]models.VenueListing{
		{ID: 1, Name: "A", City: "Portland", State: "OR"},
		{ID: 2, Name: "B", City: "Portland", State: "ME"},
	})
	if len(areas) != 2 || areas[0].State != "ME" {
		t.Fatalf("expected two Portland areas, got %+v", areas)
	}
}

func TestGroupByAreaEmpty(t *testing.T) {
	if areas := GroupByArea(nil); areas == nil || len(areas) != 0 {
		t.Fatalf("expected empty non-nil areas, got %#v", areas)
	}
}

func seeded(t *testing.T) (*memory.Store, *Directory) {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	hop, err := s.CreateVenue(ctx, models.Venue{Name: "The Musical Hop", City: "San Francisco", State: "CA"}, models.GenreSelection{})
	if err != nil {
		t.Fatalf("CreateVenue error: %v", err)
	}
	if _, err := s.CreateVenue(ctx, models.Venue{Name: "The Dueling Pianos Bar", City: "New York", State: "NY"}, models.GenreSelection{}); err != nil {
		t.Fatalf("CreateVenue error: %v", err)
	}
	if _, err := s.CreateVenue(ctx, models.Venue{Name: "Park Square Live Music & Coffee", City: "San Francisco", State: "CA"}, models.GenreSelection{}); err != nil {
		t.Fatalf("CreateVenue error: %v", err)
	}
	artist, err := s.CreateArtist(ctx, models.Artist{Name: "Guns N Petals"}, models.GenreSelection{})
	if err != nil {
		t.Fatalf("CreateArtist error: %v", err)
	}

	checker := booking.New(s)
	for _, start := range []time.Time{now.Add(-72 * time.Hour), now.Add(72 * time.Hour)} {
		if _, err := checker.Book(ctx, booking.Request{VenueID: hop.ID, ArtistID: artist.ID, Start: start, End: start.Add(time.Hour)}); err != nil {
			t.Fatalf("Book error: %v", err)
		}
	}

	return s, New(s, fixedClock)
}

func TestSearchVenuesCaseInsensitive(t *testing.T) {
	_, dir := seeded(t)
	ctx := context.Background()

	hop, err := dir.SearchVenues(ctx, "Hop")
	if err != nil {
		t.Fatalf("SearchVenues error: %v", err)
	}
	if hop.Count != 1 || hop.Data[0].Name != "The Musical Hop" {
		t.Fatalf("unexpected result for Hop: %+v", hop)
	}
	if hop.Data[0].PastShowsCount != 1 || hop.Data[0].UpcomingShowsCount != 1 {
		t.Fatalf("expected full view with show counts, got %+v", hop.Data[0])
	}

	music, err := dir.SearchVenues(ctx, "music")
	if err != nil {
		t.Fatalf("SearchVenues error: %v", err)
	}
	if music.Count != 2 {
		t.Fatalf("expected 2 matches for music, got %d", music.Count)
	}
	if music.Data[0].Name != "The Musical Hop" || music.Data[1].Name != "Park Square Live Music & Coffee" {
		t.Fatalf("expected store order, got %q then %q", music.Data[0].Name, music.Data[1].Name)
	}
}

func TestSearchArtistsBuildsViews(t *testing.T) {
	_, dir := seeded(t)

	got, err := dir.SearchArtists(context.Background(), "petals")
	if err != nil {
		t.Fatalf("SearchArtists error: %v", err)
	}
	if got.Count != 1 || got.Data[0].UpcomingShowsCount != 1 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestAreasCountUpcomingShows(t *testing.T) {
	_, dir := seeded(t)

	areas, err := dir.Areas(context.Background())
	if err != nil {
		t.Fatalf("Areas error: %v", err)
	}
	if len(areas) != 2 || areas[0].City != "San Francisco" {
		t.Fatalf("unexpected areas %+v", areas)
	}
	for _, v := range areas[0].Venues {
		if v.Name == "The Musical Hop" && v.NumUpcomingShows != 1 {
			t.Fatalf("expected one upcoming show at the Hop, got %d", v.NumUpcomingShows)
		}
	}
}
