// Package search runs the search flow: local dataset first, then
// geocoding and a listing lookup around the geocoded point.
package search

import (
	"sync"

	"github.com/evcraddock/wealth-map/internal/geo"
	"github.com/evcraddock/wealth-map/internal/mapview"
	"github.com/evcraddock/wealth-map/internal/panel"
)

// Session is the state one client sees: its map, result panel and
// details panel. A session is created once and handed to everything
// that draws.
type Session struct {
	ID      string
	Map     *mapview.Map
	Results *panel.Results
	Details *panel.Details

	mu  sync.Mutex
	gen uint64
}

// NewSession creates a session with a fresh map and empty panels.
// A click anywhere on the map closes the details panel.
func NewSession(id string, opts mapview.Options) *Session {
	s := &Session{
		ID:      id,
		Map:     mapview.New(opts),
		Results: panel.NewResults(),
		Details: panel.NewDetails(),
	}
	s.Map.OnClick(func(geo.LatLng) {
		s.Details.Close()
	})
	return s
}

// token identifies one search invocation.
type token uint64

// begin starts a new search and makes every earlier token stale.
func (s *Session) begin() token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return token(s.gen)
}

// MapState snapshots the map. A search draws and fits under the session
// lock, so the snapshot never shows a half-drawn search.
func (s *Session) MapState() mapview.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Map.State()
}

// apply runs fn if tok is still current. The check and fn happen under
// the session lock so a newer search cannot start in between.
func (s *Session) apply(tok token, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(tok) != s.gen {
		return false
	}
	fn()
	return true
}
