// Package dataset loads and searches the wealthy-individuals document.
package dataset

import (
	"github.com/evcraddock/wealth-map/internal/geo"
)

// Document is the top-level shape of the dataset file.
type Document struct {
	WealthyIndividuals []WealthyIndividual `json:"wealthyIndividuals"`
}

// WealthyIndividual is an owner and the properties they hold, in source order.
type WealthyIndividual struct {
	Name       string     `json:"name"`
	NetWorth   string     `json:"netWorth"`
	Properties []Property `json:"properties"`
}

// Property is a single holding of an individual.
// Value and NetWorth are display strings and may not parse.
type Property struct {
	Address       string      `json:"address"`
	Value         string      `json:"value,omitempty"`
	Coordinates   [2]float64  `json:"coordinates"`
	Bedrooms      *float64    `json:"bedrooms,omitempty"`
	Bathrooms     *float64    `json:"bathrooms,omitempty"`
	SquareFootage *int64      `json:"squareFootage,omitempty"`
	LotSize       *string     `json:"lotSize,omitempty"`
	History       []Valuation `json:"history,omitempty"`
	Description   *string     `json:"description,omitempty"`
	Boundaries    *geo.Rect   `json:"boundaries,omitempty"`
}

// Valuation is one entry of a property's value history.
type Valuation struct {
	Year  int    `json:"year"`
	Value string `json:"value"`
}

// Location returns the property coordinates as a LatLng.
func (p Property) Location() geo.LatLng {
	return geo.LatLng{Lat: p.Coordinates[0], Lng: p.Coordinates[1]}
}

// MatchKind distinguishes individual-level and property-level matches.
type MatchKind string

const (
	MatchIndividual MatchKind = "individual"
	MatchProperty   MatchKind = "property"
)

// Match is one local search result.
//
// For MatchIndividual, Name, NetWorth and Properties are set.
// For MatchProperty, Owner, NetWorth, Address, Value, Coordinates and Property are set.
type Match struct {
	Kind MatchKind `json:"type"`

	Name          string     `json:"name,omitempty"`
	NetWorth      string     `json:"netWorth,omitempty"`
	PropertyCount int        `json:"propertyCount,omitempty"`
	Properties    []Property `json:"properties,omitempty"`

	Owner       string     `json:"owner,omitempty"`
	Address     string     `json:"address,omitempty"`
	Value       string     `json:"value,omitempty"`
	Coordinates [2]float64 `json:"coordinates,omitempty"`
	Property    *Property  `json:"details,omitempty"`
}
