package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/geo"
	"github.com/evcraddock/wealth-map/internal/geocode"
	"github.com/evcraddock/wealth-map/internal/history"
	"github.com/evcraddock/wealth-map/internal/listing"
	"github.com/evcraddock/wealth-map/internal/mapview"
)

var testColors = []string{"#c0", "#c1", "#c2", "#c3", "#c4", "#c5"}

const testMarkerColor = "#3498db"

func ptr[T any](v T) *T { return &v }

func testDocument() *dataset.Document {
	return &dataset.Document{WealthyIndividuals: []dataset.WealthyIndividual{
		{
			Name:     "Alice Rich",
			NetWorth: "$10B",
			Properties: []dataset.Property{
				{
					Address:     "1 Ocean Drive, Malibu, CA",
					Value:       "$20M",
					Coordinates: [2]float64{34.0, -118.7},
					Bedrooms:    ptr(5.0),
					Boundaries:  &geo.Rect{North: 34.001, South: 33.999, East: -118.699, West: -118.701},
					History:     []dataset.Valuation{{Year: 2012, Value: "$14M"}},
				},
				{Address: "2 Lake Road, Tahoe, CA", Value: "$8M", Coordinates: [2]float64{39.1, -120.0}},
			},
		},
		{
			Name:     "Bob Wealthy",
			NetWorth: "$3M",
			Properties: []dataset.Property{
				{Address: "3 Harbor Way, Miami, FL", Value: "$2M", Coordinates: [2]float64{25.8, -80.1}},
			},
		},
		{
			Name:     "Carol Private",
			NetWorth: "undisclosed",
			Properties: []dataset.Property{
				{Address: "4 Hill Street, Austin, TX", Coordinates: [2]float64{30.2, -97.7}},
			},
		},
	}}
}

func testOptions() Options {
	return Options{
		RadiusMiles:  0.5,
		FitPadding:   50,
		FocusZoom:    16,
		WealthColors: testColors,
		MarkerColor:  testMarkerColor,
	}
}

func testMapOptions() mapview.Options {
	return mapview.Options{
		Center:  geo.LatLng{Lat: 39.8283, Lng: -98.5795},
		Zoom:    4,
		MinZoom: 3,
		MaxZoom: 18,
	}
}

type fakeGeocoder struct {
	loc geocode.Location
	ok  bool

	// started receives once per call; block holds the call until closed.
	started chan struct{}
	block   chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (geocode.Location, bool) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return geocode.Location{}, false
		}
	}
	if ctx.Err() != nil {
		return geocode.Location{}, false
	}
	return f.loc, f.ok
}

func (f *fakeGeocoder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type listingCall struct {
	lat, lng, radius float64
}

type fakeListings struct {
	results []listing.Listing
	// onCall runs inside the lookup, before results are returned.
	onCall func()

	mu    sync.Mutex
	calls []listingCall
}

func (f *fakeListings) SearchByCoordinates(ctx context.Context, lat, lng, radiusMiles float64) []listing.Listing {
	f.mu.Lock()
	f.calls = append(f.calls, listingCall{lat, lng, radiusMiles})
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall()
	}
	return append([]listing.Listing{}, f.results...)
}

func (f *fakeListings) Calls() []listingCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listingCall(nil), f.calls...)
}

type fakeRecorder struct {
	err error

	mu      sync.Mutex
	entries []history.Entry
	views   [][2]string
}

func (f *fakeRecorder) Record(ctx context.Context, e history.Entry) (*history.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e.SearchID = fmt.Sprintf("search-%d", len(f.entries)+1)
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeRecorder) RecordView(ctx context.Context, sessionID, owner, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.views = append(f.views, [2]string{owner, address})
	return nil
}

// spyCanvas records how many markers were on the layer whenever a
// marker is added.
type spyCanvas struct {
	*mapview.Map

	mu     sync.Mutex
	before []int
}

func (s *spyCanvas) AddMarker(m mapview.Marker) {
	s.mu.Lock()
	s.before = append(s.before, len(s.Map.Layer().Markers()))
	s.mu.Unlock()
	s.Map.AddMarker(m)
}

func (s *spyCanvas) reset() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	got := s.before
	s.before = nil
	return got
}

func mapviewLine(label, value string) mapview.PopupLine {
	return mapview.PopupLine{Label: label, Value: value}
}
