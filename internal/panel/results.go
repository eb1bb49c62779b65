// Package panel models the result list and property details panels.
package panel

import (
	"fmt"
	"sync"

	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/geo"
	"github.com/evcraddock/wealth-map/internal/listing"
)

// State is what the result panel is currently showing.
type State string

const (
	StatePrompt        State = "prompt"
	StateSearching     State = "searching"
	StateLocal         State = "local"
	StateLocationFound State = "location_found"
	StateListings      State = "listings"
	StateNoListings    State = "no_listings"
	StateNoLocation    State = "no_location"
)

// Fixed panel texts.
const (
	PromptText        = "Enter a search term"
	SearchingText     = "Searching..."
	LocationFoundText = "Location found - Searching for properties..."
	NoListingsText    = "No properties found in this area"
)

// Suggestions are shown when nothing matched a query.
var Suggestions = []string{
	`Owner names (e.g., "Elon Musk")`,
	`Locations (e.g., "Beverly Hills")`,
	`Property features (e.g., "waterfront", "mansion")`,
	`Bedroom/bathroom counts (e.g., "5 bedroom")`,
}

// RowKind tells a frontend what clicking a row does.
type RowKind string

const (
	// RowIndividual fits the map to all of the individual's properties.
	RowIndividual RowKind = "individual"
	// RowProperty centres the map on Lat/Lng.
	RowProperty RowKind = "property"
	// RowInfo is not clickable.
	RowInfo RowKind = "info"
)

// Row is one entry of the result list. Name, Lat and Lng are the data
// attributes used to re-centre the map when the row is clicked.
type Row struct {
	Kind     RowKind `json:"type"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Name     string  `json:"name,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
}

// View is a snapshot of the result panel.
type View struct {
	State   State    `json:"state"`
	Message string   `json:"message,omitempty"`
	Hints   []string `json:"hints,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`
}

// Results is the result panel. It is safe for concurrent use.
type Results struct {
	mu   sync.Mutex
	view View
}

// NewResults creates a panel showing the search prompt.
func NewResults() *Results {
	r := &Results{}
	r.ShowPrompt()
	return r
}

// View returns a copy of the panel content.
func (r *Results) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.view
	v.Hints = append([]string(nil), r.view.Hints...)
	v.Rows = append([]Row(nil), r.view.Rows...)
	return v
}

func (r *Results) set(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view = v
}

// ShowPrompt asks for a search term.
func (r *Results) ShowPrompt() {
	r.set(View{State: StatePrompt, Message: PromptText})
}

// ShowSearching shows the in-progress message.
func (r *Results) ShowSearching() {
	r.set(View{State: StateSearching, Message: SearchingText})
}

// ShowLocalMatches lists local dataset matches.
func (r *Results) ShowLocalMatches(matches []dataset.Match) {
	rows := make([]Row, 0, len(matches))
	for _, m := range matches {
		switch m.Kind {
		case dataset.MatchIndividual:
			rows = append(rows, Row{
				Kind:     RowIndividual,
				Title:    m.Name,
				Subtitle: fmt.Sprintf("Net Worth: %s | %d properties", m.NetWorth, m.PropertyCount),
				Name:     m.Name,
			})
		case dataset.MatchProperty:
			rows = append(rows, Row{
				Kind:     RowProperty,
				Title:    m.Address,
				Subtitle: fmt.Sprintf("Owner: %s | Value: %s", m.Owner, m.Value),
				Name:     m.Owner,
				Lat:      m.Coordinates[0],
				Lng:      m.Coordinates[1],
			})
		}
	}
	r.set(View{State: StateLocal, Rows: rows})
}

// ShowLocationFound reports a geocoded location while listings load.
// name falls back to the query when the geocoder gave none.
func (r *Results) ShowLocationFound(name, query string) {
	title := name
	if title == "" {
		title = query
	}
	r.set(View{
		State: StateLocationFound,
		Rows:  []Row{{Kind: RowInfo, Title: title, Subtitle: LocationFoundText}},
	})
}

// ShowListings summarizes a listing search around center.
func (r *Results) ShowListings(center geo.LatLng, listings []listing.Listing) {
	rows := []Row{{
		Kind:     RowInfo,
		Title:    fmt.Sprintf("Properties near (%.4f, %.4f)", center.Lat, center.Lng),
		Subtitle: fmt.Sprintf("%d properties found", len(listings)),
	}}
	for _, l := range listings {
		if !l.HasCoordinates() {
			continue
		}
		title := l.Address
		if title == "" {
			title = "Property"
		}
		loc := l.Location()
		rows = append(rows, Row{
			Kind:     RowProperty,
			Title:    title,
			Subtitle: listingSubtitle(l),
			Lat:      loc.Lat,
			Lng:      loc.Lng,
		})
	}
	r.set(View{State: StateListings, Rows: rows})
}

// ShowNoListings reports an empty listing search.
func (r *Results) ShowNoListings() {
	r.set(View{State: StateNoListings, Message: NoListingsText})
}

// ShowNoLocation reports that nothing matched query and suggests
// other query styles.
func (r *Results) ShowNoLocation(query string) {
	r.set(View{
		State:   StateNoLocation,
		Message: "No matching results found for \"" + query + "\"",
		Hints:   append([]string(nil), Suggestions...),
	})
}

func listingSubtitle(l listing.Listing) string {
	s := ""
	add := func(part string) {
		if s != "" {
			s += " | "
		}
		s += part
	}
	if l.Price != "" {
		add("Price: " + string(l.Price))
	}
	if l.Bedrooms != nil {
		add(fmt.Sprintf("Beds: %g", *l.Bedrooms))
	}
	if l.Bathrooms != nil {
		add(fmt.Sprintf("Baths: %g", *l.Bathrooms))
	}
	return s
}
