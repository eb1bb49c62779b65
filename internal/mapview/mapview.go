// Package mapview models the map widget: its viewport, marker layer,
// overlays and click handling. Frontends draw the exported state.
package mapview

import (
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/evcraddock/wealth-map/internal/geo"
)

// Options are the creation parameters of a map.
type Options struct {
	Center      geo.LatLng `json:"center"`
	Zoom        int        `json:"zoom"`
	MinZoom     int        `json:"minZoom"`
	MaxZoom     int        `json:"maxZoom"`
	TileURL     string     `json:"tileUrl"`
	Attribution string     `json:"attribution"`
}

// Viewport is what the map currently shows. When Fit is set the frontend
// fits the view to Fit with Padding pixels instead of using Center/Zoom.
type Viewport struct {
	Center  geo.LatLng `json:"center"`
	Zoom    int        `json:"zoom"`
	Fit     *FitBox    `json:"fit,omitempty"`
	Padding int        `json:"padding,omitempty"`
}

// FitBox is a bounds box in serializable form.
type FitBox struct {
	SouthWest geo.LatLng `json:"southWest"`
	NorthEast geo.LatLng `json:"northEast"`
}

// ClickHandler is called for every map click.
type ClickHandler func(at geo.LatLng)

// Map is a single map instance. It is safe for concurrent use. Map
// methods hold mu around layer calls; the layer never takes mu.
type Map struct {
	mu       sync.Mutex
	opts     Options
	viewport Viewport
	layer    *Layer
	handlers []ClickHandler
}

// New creates a map centred on opts.Center with an empty marker layer.
func New(opts Options) *Map {
	m := &Map{
		opts:  opts,
		layer: &Layer{},
	}
	m.viewport = Viewport{Center: opts.Center, Zoom: m.clampZoom(opts.Zoom)}
	return m
}

// Options returns the creation parameters.
func (m *Map) Options() Options {
	return m.opts
}

// Layer returns the marker layer.
func (m *Map) Layer() *Layer {
	return m.layer
}

// Viewport returns the current view.
func (m *Map) Viewport() Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// SetView centres the map on center at zoom, clamped to the zoom range.
func (m *Map) SetView(center geo.LatLng, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = Viewport{Center: center, Zoom: m.clampZoom(zoom)}
}

// FitBounds fits the view to b with padding pixels on every side.
// An empty box leaves the view unchanged and returns false.
func (m *Map) FitBounds(b geo.Bounds, padding int) bool {
	if b.IsEmpty() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.viewport = Viewport{
		Center:  b.Center(),
		Zoom:    m.viewport.Zoom,
		Fit:     &FitBox{SouthWest: b.SouthWest(), NorthEast: b.NorthEast()},
		Padding: padding,
	}
	return true
}

// OnClick registers a handler run on every Click, in registration order.
func (m *Map) OnClick(h ClickHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// Click delivers a click at the given position to the registered handlers.
func (m *Map) Click(at geo.LatLng) {
	m.mu.Lock()
	handlers := append([]ClickHandler(nil), m.handlers...)
	m.mu.Unlock()

	for _, h := range handlers {
		h(at)
	}
}

// State is the serializable form of the whole map.
type State struct {
	Options  Options                    `json:"options"`
	Viewport Viewport                   `json:"viewport"`
	Layer    *geojson.FeatureCollection `json:"layer"`
}

// State snapshots the map for a frontend. Viewport and layer are read
// under one lock so the snapshot matches a single point in time.
func (m *Map) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Options:  m.opts,
		Viewport: m.viewport,
		Layer:    m.layer.FeatureCollection(),
	}
}

func (m *Map) clampZoom(z int) int {
	if m.opts.MaxZoom == 0 && m.opts.MinZoom == 0 {
		return z
	}
	if z < m.opts.MinZoom {
		return m.opts.MinZoom
	}
	if z > m.opts.MaxZoom {
		return m.opts.MaxZoom
	}
	return z
}

// ClearMarkers removes every marker and overlay from the layer.
func (m *Map) ClearMarkers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layer.Clear()
}

// AddMarker adds a marker to the layer.
func (m *Map) AddMarker(mk Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layer.AddMarker(mk)
}

// AddCircle adds a circle overlay to the layer.
func (m *Map) AddCircle(c Circle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layer.AddCircle(c)
}

// AddPolygon adds a boundary overlay to the layer.
func (m *Map) AddPolygon(p Polygon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layer.AddPolygon(p)
}
