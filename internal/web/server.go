// Package web provides the HTTP JSON API for wealth-map.
package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evcraddock/wealth-map/internal/auth"
	"github.com/evcraddock/wealth-map/internal/config"
	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/geo"
	"github.com/evcraddock/wealth-map/internal/history"
	"github.com/evcraddock/wealth-map/internal/logging"
	"github.com/evcraddock/wealth-map/internal/mapview"
	"github.com/evcraddock/wealth-map/internal/search"
)

// Deps are what the server needs. Geocoder and Listings may be nil, in
// which case searches that miss the dataset end without a location.
type Deps struct {
	DB       *sql.DB
	Config   *config.Config
	Dataset  *dataset.Store
	Geocoder search.Geocoder
	Listings search.ListingSearcher
}

// Server is the API HTTP server.
type Server struct {
	cfg      *config.Config
	store    *dataset.Store
	history  *history.Repository
	apiKeys  *auth.APIKeyStore
	guard    *auth.Guard
	sessions *sessionRegistry
	network  bool
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer wires the routes and middleware.
func NewServer(d Deps) (*Server, error) {
	if d.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if d.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if d.Dataset == nil {
		d.Dataset = dataset.NewStore(d.Config.Data.Source)
	}

	s := &Server{
		cfg:     d.Config,
		store:   d.Dataset,
		history: history.NewRepository(d.DB, d.Config.Search.HistoryLimit, d.Config.Search.RecentViews),
		apiKeys: auth.NewAPIKeyStore(d.DB),
		network: d.Geocoder != nil && d.Listings != nil,
		mux:     http.NewServeMux(),
	}
	s.guard = auth.NewGuard(s.apiKeys, d.Config.Server.RequireKeys)

	opts := search.OptionsFromConfig(d.Config)
	mapOpts := MapOptions(d.Config)
	s.sessions = newSessionRegistry(func(id string) *search.Orchestrator {
		deps := search.Deps{
			Local:    s.store,
			Recorder: s.history,
		}
		if s.network {
			deps.Geocoder = d.Geocoder
			deps.Listings = d.Listings
		}
		return search.New(search.NewSession(id, mapOpts), deps, opts)
	}, sessionIdleTimeout, maxSessions)

	s.routes()
	s.handler = logging.RequestLogger(s.guard.RequireAPIKey(s.mux))
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/config", s.handleConfig)

	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/search/focus", s.handleFocus)
	s.mux.HandleFunc("GET /api/results", s.handleResults)

	s.mux.HandleFunc("GET /api/map", s.handleMap)
	s.mux.HandleFunc("POST /api/map/click", s.handleMapClick)

	s.mux.HandleFunc("GET /api/individuals", s.handleIndividuals)
	s.mux.HandleFunc("GET /api/individuals/{name}", s.handleIndividual)

	s.mux.HandleFunc("GET /api/details", s.handleDetails)
	s.mux.HandleFunc("DELETE /api/details", s.handleCloseDetails)

	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/history/{id}", s.handleHistoryEntry)
	s.mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
	s.mux.HandleFunc("GET /api/views", s.handleViews)

	s.mux.HandleFunc("GET /api/keys", s.handleListKeys)
	s.mux.HandleFunc("POST /api/keys", s.handleCreateKey)
	s.mux.HandleFunc("DELETE /api/keys/{id}", s.handleDeleteKey)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting api server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down api server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// MapOptions converts the map settings to map creation options.
func MapOptions(cfg *config.Config) mapview.Options {
	return mapview.Options{
		Center:      geo.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng},
		Zoom:        cfg.Map.Zoom,
		MinZoom:     cfg.Map.MinZoom,
		MaxZoom:     cfg.Map.MaxZoom,
		TileURL:     cfg.Map.TileURL,
		Attribution: cfg.Map.Attribution,
	}
}
