package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evcraddock/wealth-map/internal/config"
	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/geo"
	"github.com/evcraddock/wealth-map/internal/geocode"
	"github.com/evcraddock/wealth-map/internal/history"
	"github.com/evcraddock/wealth-map/internal/listing"
	"github.com/evcraddock/wealth-map/internal/panel"
)

// State is a step of the search flow.
type State string

const (
	StateIdle             State = "idle"
	StateSearching        State = "searching"
	StateLocalResults     State = "localResults"
	StateGeocoding        State = "geocoding"
	StateCoordinateSearch State = "coordinateSearch"
	StateListingResults   State = "listingResults"
	StateNoListings       State = "noListings"
	StateNoLocation       State = "noLocation"
)

// Terminal reports whether the flow stops in s.
func (s State) Terminal() bool {
	switch s {
	case StateIdle, StateLocalResults, StateListingResults, StateNoListings, StateNoLocation:
		return true
	}
	return false
}

var (
	// ErrUnknownIndividual is returned by Focus for a name not in the dataset.
	ErrUnknownIndividual = errors.New("unknown individual")
	// ErrNotFocusable is returned by Focus for informational rows.
	ErrNotFocusable = errors.New("row cannot be focused")
	// ErrPropertyNotFound is returned by ShowDetails.
	ErrPropertyNotFound = errors.New("property not found")
)

// Outcome describes how one search ended.
//
// A stale outcome belongs to a search that was overtaken by a newer one
// on the same session, or whose context ended. Nothing was drawn after
// it became stale and State is the step it had reached, except that a
// canceled search which is still current settles on StateNoLocation or
// StateNoListings.
type Outcome struct {
	SearchID    string            `json:"searchId,omitempty"`
	Query       string            `json:"query"`
	State       State             `json:"state"`
	Stale       bool              `json:"stale,omitempty"`
	Matches     []dataset.Match   `json:"matches,omitempty"`
	Location    *geocode.Location `json:"location,omitempty"`
	RadiusMiles float64           `json:"radiusMiles,omitempty"`
	Listings    []listing.Listing `json:"listings,omitempty"`
	Markers     int               `json:"markers"`
}

// ResultCount is the number of local matches or listings found.
func (o Outcome) ResultCount() int {
	if o.State == StateLocalResults {
		return len(o.Matches)
	}
	return len(o.Listings)
}

// Deps are the capabilities an Orchestrator works with. Local is
// required. Without Geocoder or Listings every query that misses the
// dataset ends in StateNoLocation. Renderer and Canvas default to the
// session's result panel and map.
type Deps struct {
	Local    LocalSearcher
	Geocoder Geocoder
	Listings ListingSearcher
	Recorder Recorder
	Renderer ResultRenderer
	Canvas   Canvas
}

// Options tune drawing and the listing lookup.
type Options struct {
	RadiusMiles  float64
	FitPadding   int
	FocusZoom    int
	WealthColors []string
	MarkerColor  string
}

// OptionsFromConfig copies the search and map settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RadiusMiles:  cfg.Search.RadiusMiles,
		FitPadding:   cfg.Map.FitPadding,
		FocusZoom:    cfg.Map.FocusZoom,
		WealthColors: append([]string(nil), cfg.UI.WealthColors...),
		MarkerColor:  cfg.UI.MarkerColor,
	}
}

// Orchestrator runs searches for one session.
type Orchestrator struct {
	sess *Session
	deps Deps
	opts Options
}

// New creates an orchestrator drawing into sess.
func New(sess *Session, deps Deps, opts Options) *Orchestrator {
	if deps.Renderer == nil {
		deps.Renderer = sess.Results
	}
	if deps.Canvas == nil {
		deps.Canvas = sess.Map
	}
	if opts.RadiusMiles <= 0 {
		opts.RadiusMiles = listing.DefaultRadiusMiles
	}
	return &Orchestrator{sess: sess, deps: deps, opts: opts}
}

// Session returns the session the orchestrator draws into.
func (o *Orchestrator) Session() *Session {
	return o.sess
}

// Search runs the flow for query: local dataset, then geocoding, then a
// listing lookup around the geocoded point. Each step that draws clears
// the markers first. Starting a search makes every earlier search on the
// session stale.
func (o *Orchestrator) Search(ctx context.Context, query string) Outcome {
	tok := o.sess.begin()
	q := strings.TrimSpace(query)
	out := Outcome{Query: q, State: StateIdle}

	if q == "" {
		if !o.sess.apply(tok, o.deps.Renderer.ShowPrompt) {
			return o.stale(out)
		}
		return out
	}

	out.State = StateSearching
	if !o.sess.apply(tok, o.deps.Renderer.ShowSearching) {
		return o.stale(out)
	}

	matches, err := o.deps.Local.Search(q)
	if err != nil {
		slog.Warn("local search unavailable", "query", q, "error", err)
	}
	if len(matches) > 0 {
		out.State = StateLocalResults
		out.Matches = matches
		if !o.sess.apply(tok, func() {
			out.Markers = o.drawLocal(matches)
			o.deps.Renderer.ShowLocalMatches(matches)
		}) {
			return o.stale(out)
		}
		return o.finish(ctx, out)
	}

	out.State = StateGeocoding
	if !o.sess.apply(tok, o.deps.Canvas.ClearMarkers) {
		return o.stale(out)
	}

	var (
		loc   geocode.Location
		found bool
	)
	if o.deps.Geocoder != nil && o.deps.Listings != nil {
		loc, found = o.deps.Geocoder.Geocode(ctx, q)
		if ctx.Err() != nil {
			return o.canceled(tok, out, StateNoLocation, func() { o.deps.Renderer.ShowNoLocation(q) })
		}
	}
	if !found {
		out.State = StateNoLocation
		if !o.sess.apply(tok, func() { o.deps.Renderer.ShowNoLocation(q) }) {
			return o.stale(out)
		}
		return o.finish(ctx, out)
	}

	out.State = StateCoordinateSearch
	out.Location = &loc
	out.RadiusMiles = o.opts.RadiusMiles
	if !o.sess.apply(tok, func() { o.deps.Renderer.ShowLocationFound(loc.Name, q) }) {
		return o.stale(out)
	}

	listings := o.deps.Listings.SearchByCoordinates(ctx, loc.Lat, loc.Lng, o.opts.RadiusMiles)
	if ctx.Err() != nil {
		return o.canceled(tok, out, StateNoListings, o.deps.Renderer.ShowNoListings)
	}
	out.Listings = listings

	if len(listings) == 0 {
		out.State = StateNoListings
		if !o.sess.apply(tok, o.deps.Renderer.ShowNoListings) {
			return o.stale(out)
		}
		return o.finish(ctx, out)
	}

	out.State = StateListingResults
	center := loc.LatLng()
	if !o.sess.apply(tok, func() {
		out.Markers = o.drawListings(center, listings)
		o.deps.Renderer.ShowListings(center, listings)
	}) {
		return o.stale(out)
	}
	return o.finish(ctx, out)
}

// canceled ends a search whose context was canceled. If no newer search
// has started, the panel is settled on a terminal state so it does not
// stay mid-search. Canceled searches are not recorded.
func (o *Orchestrator) canceled(tok token, out Outcome, terminal State, render func()) Outcome {
	if o.sess.apply(tok, render) {
		out.State = terminal
	}
	return o.stale(out)
}

func (o *Orchestrator) stale(out Outcome) Outcome {
	out.Stale = true
	slog.Debug("search superseded", "session", o.sess.ID, "query", out.Query, "state", out.State)
	return out
}

// finish records a completed search. Recording failures are logged only.
func (o *Orchestrator) finish(ctx context.Context, out Outcome) Outcome {
	slog.Info("search finished", "session", o.sess.ID, "query", out.Query, "state", out.State, "results", out.ResultCount())
	if o.deps.Recorder == nil {
		return out
	}

	e := history.Entry{
		SessionID:   o.sess.ID,
		Query:       out.Query,
		State:       string(out.State),
		ResultCount: out.ResultCount(),
	}
	if out.Location != nil {
		r := out.RadiusMiles
		e.RadiusMiles = &r
	}
	saved, err := o.deps.Recorder.Record(ctx, e)
	if err != nil {
		slog.Warn("recording search", "query", out.Query, "error", err)
		return out
	}
	out.SearchID = saved.SearchID
	return out
}

// Focus re-centres the map on a result row: a property row zooms to its
// coordinates and an individual row fits all of their properties.
func (o *Orchestrator) Focus(row panel.Row) error {
	switch row.Kind {
	case panel.RowProperty:
		o.deps.Canvas.SetView(geo.LatLng{Lat: row.Lat, Lng: row.Lng}, o.opts.FocusZoom)
		return nil
	case panel.RowIndividual:
		ind, ok := o.deps.Local.Individual(row.Name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownIndividual, row.Name)
		}
		var b geo.Bounds
		for _, p := range ind.Properties {
			b = b.Extend(p.Location())
		}
		o.deps.Canvas.FitBounds(b, o.opts.FitPadding)
		return nil
	default:
		return ErrNotFocusable
	}
}

// ShowDetails opens the details panel for one of owner's properties and
// records it as a recent view.
func (o *Orchestrator) ShowDetails(ctx context.Context, owner, address string) (panel.PropertyDetails, error) {
	p, _, ok := o.deps.Local.Property(owner, address)
	if !ok {
		return panel.PropertyDetails{}, fmt.Errorf("%w: %s, %s", ErrPropertyNotFound, owner, address)
	}

	details := o.sess.Details.Open(*p, owner)

	if o.deps.Recorder != nil {
		if err := o.deps.Recorder.RecordView(ctx, o.sess.ID, owner, address); err != nil {
			slog.Warn("recording view", "owner", owner, "address", address, "error", err)
		}
	}
	return details, nil
}

// CloseDetails hides the details panel.
func (o *Orchestrator) CloseDetails() {
	o.sess.Details.Close()
}
