package mapview

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/wealth-map/internal/geo"
)

func testOptions() Options {
	return Options{
		Center:  geo.LatLng{Lat: 39.8283, Lng: -98.5795},
		Zoom:    4,
		MinZoom: 3,
		MaxZoom: 18,
		TileURL: "https://tiles.example/{z}/{x}/{y}.png",
	}
}

func TestNewMap(t *testing.T) {
	m := New(testOptions())

	vp := m.Viewport()
	assert.Equal(t, geo.LatLng{Lat: 39.8283, Lng: -98.5795}, vp.Center)
	assert.Equal(t, 4, vp.Zoom)
	assert.Nil(t, vp.Fit)
	assert.Zero(t, m.Layer().Len())
}

func TestSetViewClampsZoom(t *testing.T) {
	m := New(testOptions())

	m.SetView(geo.LatLng{Lat: 1, Lng: 2}, 25)
	assert.Equal(t, 18, m.Viewport().Zoom)

	m.SetView(geo.LatLng{Lat: 1, Lng: 2}, 0)
	assert.Equal(t, 3, m.Viewport().Zoom)

	m.SetView(geo.LatLng{Lat: 1, Lng: 2}, 16)
	assert.Equal(t, geo.LatLng{Lat: 1, Lng: 2}, m.Viewport().Center)
	assert.Equal(t, 16, m.Viewport().Zoom)
}

func TestFitBounds(t *testing.T) {
	m := New(testOptions())

	assert.False(t, m.FitBounds(geo.Bounds{}, 50), "empty bounds are ignored")
	assert.Nil(t, m.Viewport().Fit)

	p := geo.LatLng{Lat: 34.0501, Lng: -118.2401}
	require.True(t, m.FitBounds(geo.BoundsOf(p), 50))

	vp := m.Viewport()
	require.NotNil(t, vp.Fit)
	assert.Equal(t, p, vp.Fit.SouthWest)
	assert.Equal(t, p, vp.Fit.NorthEast)
	assert.Equal(t, 50, vp.Padding)

	m.SetView(p, 10)
	assert.Nil(t, m.Viewport().Fit, "SetView replaces a fitted view")
}

func TestLayerAddClearBounds(t *testing.T) {
	m := New(testOptions())

	m.AddMarker(Marker{Position: geo.LatLng{Lat: 10, Lng: 10}, Popup: Popup{Title: "a"}})
	m.AddMarker(Marker{Position: geo.LatLng{Lat: 12, Lng: 14}, Popup: Popup{Title: "b"}})
	m.AddCircle(Circle{Center: geo.LatLng{Lat: 11, Lng: 11}, RadiusMeters: 804.67})
	m.AddPolygon(Polygon{Rect: geo.Rect{North: 13, South: 12.5, East: 15, West: 14.5}})

	l := m.Layer()
	assert.Equal(t, 4, l.Len())
	assert.Len(t, l.Markers(), 2)
	assert.Len(t, l.Circles(), 1)
	assert.Len(t, l.Polygons(), 1)

	b := l.Bounds()
	assert.Equal(t, geo.LatLng{Lat: 10, Lng: 10}, b.SouthWest())
	assert.Equal(t, geo.LatLng{Lat: 13, Lng: 15}, b.NorthEast())

	m.ClearMarkers()
	assert.Zero(t, l.Len())
	assert.True(t, l.Bounds().IsEmpty())
}

func TestClickHandlersRunInOrder(t *testing.T) {
	m := New(testOptions())

	var got []string
	m.OnClick(func(at geo.LatLng) { got = append(got, "first") })
	m.OnClick(func(at geo.LatLng) { got = append(got, "second") })

	m.Click(geo.LatLng{Lat: 1, Lng: 1})
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestStateGeoJSON(t *testing.T) {
	m := New(testOptions())
	m.AddMarker(Marker{
		Position: geo.LatLng{Lat: 34.05, Lng: -118.24},
		Color:    "#FF9800",
		Popup: Popup{
			Title:   "1 Main St",
			Lines:   []PopupLine{{Label: "Owner", Value: "Alice"}},
			Details: &DetailsRef{Owner: "Alice", Address: "1 Main St"},
		},
	})
	m.AddCircle(Circle{Center: geo.LatLng{Lat: 34.05, Lng: -118.24}, RadiusMeters: 100})

	data, err := json.Marshal(m.State())
	require.NoError(t, err)

	var decoded struct {
		Layer struct {
			Type     string `json:"type"`
			Features []struct {
				Geometry struct {
					Type        string    `json:"type"`
					Coordinates []float64 `json:"coordinates"`
				} `json:"geometry"`
				Properties map[string]interface{} `json:"properties"`
			} `json:"features"`
		} `json:"layer"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "FeatureCollection", decoded.Layer.Type)
	require.Len(t, decoded.Layer.Features, 2)

	marker := decoded.Layer.Features[0]
	assert.Equal(t, "Point", marker.Geometry.Type)
	assert.Equal(t, []float64{-118.24, 34.05}, marker.Geometry.Coordinates, "geojson is lng,lat")
	assert.Equal(t, "marker", marker.Properties["kind"])
	assert.Equal(t, "#FF9800", marker.Properties["color"])

	assert.Equal(t, "circle", decoded.Layer.Features[1].Properties["kind"])
}

func TestLayerConcurrentUse(t *testing.T) {
	m := New(testOptions())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.AddMarker(Marker{Position: geo.LatLng{Lat: float64(i), Lng: float64(i)}})
			_ = m.Layer().Bounds()
			_ = m.State()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, m.Layer().Len())
}

func TestStateWaitsForWriter(t *testing.T) {
	m := New(testOptions())

	m.mu.Lock()
	got := make(chan State, 1)
	go func() { got <- m.State() }()
	select {
	case <-got:
		t.Fatal("State returned while the map was locked")
	case <-time.After(20 * time.Millisecond):
	}

	m.viewport = Viewport{Center: geo.LatLng{Lat: 1, Lng: 2}, Zoom: 9}
	m.layer.AddMarker(Marker{Position: geo.LatLng{Lat: 1, Lng: 2}})
	m.mu.Unlock()

	st := <-got
	assert.Equal(t, 9, st.Viewport.Zoom)
	assert.Len(t, st.Layer.Features, 1)
}
