// Package geo provides coordinates and bounding boxes for the map.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// MetersPerMile converts search radii to overlay radii.
const MetersPerMile = 1609.34

// LatLng is a point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point is finite and inside the WGS84 range.
func (p LatLng) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Point converts to an orb point (lng, lat order).
func (p LatLng) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// FromPoint converts an orb point back to a LatLng.
func FromPoint(pt orb.Point) LatLng {
	return LatLng{Lat: pt.Lat(), Lng: pt.Lon()}
}

// MilesToMeters converts a radius in miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// Bounds is a lat/lng bounding box. The zero value is empty.
type Bounds struct {
	bound orb.Bound
	set   bool
}

// BoundsOf returns the smallest box containing every point.
func BoundsOf(points ...LatLng) Bounds {
	var b Bounds
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// Extend returns b grown to include p.
func (b Bounds) Extend(p LatLng) Bounds {
	pt := p.Point()
	if !b.set {
		return Bounds{bound: pt.Bound(), set: true}
	}
	return Bounds{bound: b.bound.Extend(pt), set: true}
}

// Union returns a box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	switch {
	case !o.set:
		return b
	case !b.set:
		return o
	}
	return Bounds{bound: b.bound.Union(o.bound), set: true}
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return !b.set
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p LatLng) bool {
	return b.set && b.bound.Contains(p.Point())
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LatLng {
	return FromPoint(b.bound.Center())
}

// SouthWest returns the minimum corner.
func (b Bounds) SouthWest() LatLng {
	return FromPoint(b.bound.Min)
}

// NorthEast returns the maximum corner.
func (b Bounds) NorthEast() LatLng {
	return FromPoint(b.bound.Max)
}

// Rect is an axis-aligned property boundary.
type Rect struct {
	North float64 `json:"northLat"`
	South float64 `json:"southLat"`
	East  float64 `json:"eastLng"`
	West  float64 `json:"westLng"`
}

// Polygon returns the boundary as a closed ring, corners in
// NW, NE, SE, SW order.
func (r Rect) Polygon() orb.Polygon {
	ring := orb.Ring{
		{r.West, r.North},
		{r.East, r.North},
		{r.East, r.South},
		{r.West, r.South},
		{r.West, r.North},
	}
	return orb.Polygon{ring}
}

// Bounds returns the boundary box.
func (r Rect) Bounds() Bounds {
	return BoundsOf(LatLng{Lat: r.North, Lng: r.West}, LatLng{Lat: r.South, Lng: r.East})
}
