package search

import (
	"context"

	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/geo"
	"github.com/evcraddock/wealth-map/internal/geocode"
	"github.com/evcraddock/wealth-map/internal/history"
	"github.com/evcraddock/wealth-map/internal/listing"
	"github.com/evcraddock/wealth-map/internal/mapview"
)

// LocalSearcher searches the wealthy-individuals dataset.
// *dataset.Store implements it.
type LocalSearcher interface {
	Search(query string) ([]dataset.Match, error)
	Individual(name string) (*dataset.WealthyIndividual, bool)
	Property(owner, address string) (*dataset.Property, *dataset.WealthyIndividual, bool)
}

// Geocoder turns a free-text query into a location.
// *geocode.Client implements it.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geocode.Location, bool)
}

// ListingSearcher finds homes around a point.
// *listing.Client implements it.
type ListingSearcher interface {
	SearchByCoordinates(ctx context.Context, lat, lng, radiusMiles float64) []listing.Listing
}

// ResultRenderer draws the result panel. *panel.Results implements it.
type ResultRenderer interface {
	ShowPrompt()
	ShowSearching()
	ShowLocalMatches(matches []dataset.Match)
	ShowLocationFound(name, query string)
	ShowListings(center geo.LatLng, listings []listing.Listing)
	ShowNoListings()
	ShowNoLocation(query string)
}

// Canvas draws on the map. *mapview.Map implements it.
type Canvas interface {
	ClearMarkers()
	AddMarker(m mapview.Marker)
	AddCircle(c mapview.Circle)
	AddPolygon(p mapview.Polygon)
	FitBounds(b geo.Bounds, padding int) bool
	SetView(center geo.LatLng, zoom int)
}

// Recorder stores finished searches and opened details.
// *history.Repository implements it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (*history.Entry, error)
	RecordView(ctx context.Context, sessionID, owner, address string) error
}
