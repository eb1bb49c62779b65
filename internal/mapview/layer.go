package mapview

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/evcraddock/wealth-map/internal/geo"
)

// PopupLine is one labeled line of a marker popup.
type PopupLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DetailsRef identifies the property a popup's "View Full Details"
// action opens.
type DetailsRef struct {
	Owner   string `json:"owner"`
	Address string `json:"address"`
}

// Popup is the content bound to a marker.
type Popup struct {
	Title   string      `json:"title"`
	Lines   []PopupLine `json:"lines,omitempty"`
	Details *DetailsRef `json:"details,omitempty"`
}

// Marker is a point on the marker layer.
type Marker struct {
	Position geo.LatLng `json:"position"`
	Color    string     `json:"color,omitempty"`
	Popup    Popup      `json:"popup"`
}

// Circle is a radius overlay.
type Circle struct {
	Center       geo.LatLng `json:"center"`
	RadiusMeters float64    `json:"radiusMeters"`
}

// Polygon is a boundary overlay.
type Polygon struct {
	Rect  geo.Rect `json:"rect"`
	Color string   `json:"color,omitempty"`
}

// Layer is the map's mutable collection of markers and overlays.
// It is safe for concurrent use.
type Layer struct {
	mu       sync.Mutex
	markers  []Marker
	circles  []Circle
	polygons []Polygon
}

// AddMarker adds m to the layer.
func (l *Layer) AddMarker(m Marker) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.markers = append(l.markers, m)
}

// AddCircle adds a circle overlay.
func (l *Layer) AddCircle(c Circle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.circles = append(l.circles, c)
}

// AddPolygon adds a boundary overlay.
func (l *Layer) AddPolygon(p Polygon) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.polygons = append(l.polygons, p)
}

// Clear removes every marker and overlay.
func (l *Layer) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.markers = nil
	l.circles = nil
	l.polygons = nil
}

// Len returns the number of markers and overlays on the layer.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.markers) + len(l.circles) + len(l.polygons)
}

// Markers returns a copy of the markers.
func (l *Layer) Markers() []Marker {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Marker(nil), l.markers...)
}

// Circles returns a copy of the circle overlays.
func (l *Layer) Circles() []Circle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Circle(nil), l.circles...)
}

// Polygons returns a copy of the boundary overlays.
func (l *Layer) Polygons() []Polygon {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Polygon(nil), l.polygons...)
}

// Bounds returns the box containing every marker and polygon.
// Circles only contribute their centre.
func (l *Layer) Bounds() geo.Bounds {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b geo.Bounds
	for _, m := range l.markers {
		b = b.Extend(m.Position)
	}
	for _, c := range l.circles {
		b = b.Extend(c.Center)
	}
	for _, p := range l.polygons {
		b = b.Union(p.Rect.Bounds())
	}
	return b
}

// FeatureCollection exports the layer as GeoJSON.
func (l *Layer) FeatureCollection() *geojson.FeatureCollection {
	l.mu.Lock()
	defer l.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for _, m := range l.markers {
		f := geojson.NewFeature(m.Position.Point())
		f.Properties = geojson.Properties{
			"kind":  "marker",
			"title": m.Popup.Title,
		}
		if m.Color != "" {
			f.Properties["color"] = m.Color
		}
		if len(m.Popup.Lines) > 0 {
			f.Properties["lines"] = m.Popup.Lines
		}
		if m.Popup.Details != nil {
			f.Properties["details"] = m.Popup.Details
		}
		fc.Append(f)
	}
	for _, c := range l.circles {
		f := geojson.NewFeature(c.Center.Point())
		f.Properties = geojson.Properties{
			"kind":         "circle",
			"radiusMeters": c.RadiusMeters,
		}
		fc.Append(f)
	}
	for _, p := range l.polygons {
		f := geojson.NewFeature(orb.Geometry(p.Rect.Polygon()))
		f.Properties = geojson.Properties{"kind": "boundary"}
		if p.Color != "" {
			f.Properties["color"] = p.Color
		}
		fc.Append(f)
	}
	return fc
}
