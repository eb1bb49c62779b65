package search

import (
	"strconv"

	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/geo"
	"github.com/evcraddock/wealth-map/internal/listing"
	"github.com/evcraddock/wealth-map/internal/mapview"
	"github.com/evcraddock/wealth-map/internal/panel"
)

// BoundaryColor is the outline color of property boundaries.
const BoundaryColor = "#e74c3c"

// drawLocal replaces the markers with the properties of every match and
// fits the view to them. It returns the number of markers drawn.
func (o *Orchestrator) drawLocal(matches []dataset.Match) int {
	c := o.deps.Canvas
	c.ClearMarkers()

	var (
		b geo.Bounds
		n int
	)
	add := func(p dataset.Property, owner, netWorth string) {
		pos := p.Location()
		if !pos.Valid() {
			return
		}
		c.AddMarker(mapview.Marker{
			Position: pos,
			Color:    o.WealthColor(netWorth),
			Popup:    propertyPopup(p, owner),
		})
		b = b.Extend(pos)
		n++

		if p.Boundaries != nil {
			c.AddPolygon(mapview.Polygon{Rect: *p.Boundaries, Color: BoundaryColor})
			b = b.Union(p.Boundaries.Bounds())
		}
	}

	for _, m := range matches {
		switch m.Kind {
		case dataset.MatchIndividual:
			for _, p := range m.Properties {
				add(p, m.Name, m.NetWorth)
			}
		case dataset.MatchProperty:
			if m.Property != nil {
				add(*m.Property, m.Owner, m.NetWorth)
			}
		}
	}

	c.FitBounds(b, o.opts.FitPadding)
	return n
}

// drawListings replaces the markers with one per placeable listing,
// circles the searched radius and fits the view to the listings.
func (o *Orchestrator) drawListings(center geo.LatLng, listings []listing.Listing) int {
	c := o.deps.Canvas
	c.ClearMarkers()

	var (
		b geo.Bounds
		n int
	)
	for _, l := range listings {
		if !l.HasCoordinates() {
			continue
		}
		pos := l.Location()
		c.AddMarker(mapview.Marker{
			Position: pos,
			Color:    o.opts.MarkerColor,
			Popup:    listingPopup(l),
		})
		b = b.Extend(pos)
		n++
	}

	c.AddCircle(mapview.Circle{Center: center, RadiusMeters: geo.MilesToMeters(o.opts.RadiusMiles)})
	c.FitBounds(b, o.opts.FitPadding)
	return n
}

// WealthColor picks the marker color for an owner's net worth. Amounts
// that do not parse get the default marker color.
func (o *Orchestrator) WealthColor(netWorth string) string {
	amount, ok := dataset.ParseNetWorth(netWorth)
	if !ok || len(o.opts.WealthColors) == 0 {
		return o.opts.MarkerColor
	}
	band := dataset.Band(amount)
	if band >= len(o.opts.WealthColors) {
		band = len(o.opts.WealthColors) - 1
	}
	return o.opts.WealthColors[band]
}

func propertyPopup(p dataset.Property, owner string) mapview.Popup {
	pop := mapview.Popup{
		Title:   p.Address,
		Lines:   []mapview.PopupLine{{Label: "Owner", Value: owner}},
		Details: &mapview.DetailsRef{Owner: owner, Address: p.Address},
	}
	if p.Value != "" {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "Value", Value: p.Value})
	}
	if p.Bedrooms != nil && *p.Bedrooms != 0 {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "Beds", Value: formatCount(*p.Bedrooms)})
	}
	if p.Bathrooms != nil && *p.Bathrooms != 0 {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "Baths", Value: formatCount(*p.Bathrooms)})
	}
	if p.SquareFootage != nil && *p.SquareFootage != 0 {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "Size", Value: panel.SquareFeet(*p.SquareFootage)})
	}
	if p.Description != nil && *p.Description != "" {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "Description", Value: *p.Description})
	}
	return pop
}

func listingPopup(l listing.Listing) mapview.Popup {
	pop := mapview.Popup{Title: l.Address}
	if pop.Title == "" {
		pop.Title = "Property"
	}
	if l.Price != "" {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "Price", Value: string(l.Price)})
	}
	if l.Bedrooms != nil && *l.Bedrooms != 0 {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "Beds", Value: formatCount(*l.Bedrooms)})
	}
	if l.Bathrooms != nil && *l.Bathrooms != 0 {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "Baths", Value: formatCount(*l.Bathrooms)})
	}
	if l.ZPID != "" {
		pop.Lines = append(pop.Lines, mapview.PopupLine{Label: "ZPID", Value: string(l.ZPID)})
	}
	return pop
}

func formatCount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
