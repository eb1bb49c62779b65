package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/evcraddock/wealth-map/internal/cache"
	"github.com/evcraddock/wealth-map/internal/config"
	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/geocode"
	"github.com/evcraddock/wealth-map/internal/history"
	"github.com/evcraddock/wealth-map/internal/listing"
	"github.com/evcraddock/wealth-map/internal/search"
	"github.com/evcraddock/wealth-map/internal/web"
)

// cliSession is the history session used by local commands.
const cliSession = "cli"

// localEnv is what commands need to work without a server.
type localEnv struct {
	cfg     *config.Config
	db      *sql.DB
	store   *dataset.Store
	history *history.Repository
}

// openLocal loads the configuration, opens the database and loads the
// dataset. A dataset that fails to load is logged and left empty.
func openLocal(ctx context.Context) (*localEnv, error) {
	cfg, err := loadServiceConfig()
	if err != nil {
		return nil, err
	}
	database, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := dataset.NewStore(cfg.Data.Source)
	if _, err := store.Load(ctx); err != nil {
		slog.Warn("dataset unavailable, searches will use geocoding only", "error", err)
	}

	return &localEnv{
		cfg:     cfg,
		db:      database,
		store:   store,
		history: history.NewRepository(database, cfg.Search.HistoryLimit, cfg.Search.RecentViews),
	}, nil
}

func (e *localEnv) close() {
	closeDB(e.db)
}

// orchestrator builds a single-session search orchestrator.
func (e *localEnv) orchestrator() (*search.Orchestrator, error) {
	deps := search.Deps{Local: e.store, Recorder: e.history}
	gc, lc, err := networkClients(e.cfg, e.db)
	if err != nil {
		return nil, err
	}
	if gc != nil && lc != nil {
		deps.Geocoder = gc
		deps.Listings = lc
	}
	sess := search.NewSession(cliSession, web.MapOptions(e.cfg))
	return search.New(sess, deps, search.OptionsFromConfig(e.cfg)), nil
}

// networkClients builds the geocoding and listing clients, sharing one
// response cache. Both are nil when no RapidAPI key is configured.
func networkClients(cfg *config.Config, database *sql.DB) (*geocode.Client, *listing.Client, error) {
	if !cfg.HasRapidAPI() {
		return nil, nil, nil
	}
	c := cache.New(database, cfg.API.CacheTTL)

	gc, err := geocode.NewClient(cfg.API.RapidAPIKey, geocode.Options{
		URL:     cfg.API.GeocodeURL,
		Host:    cfg.API.GeocodeHost,
		Timeout: cfg.API.Timeout,
		Cache:   c,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating geocoder: %w", err)
	}

	lc, err := listing.NewClient(cfg.API.RapidAPIKey, listing.Options{
		URL:     cfg.API.ListingURL,
		Host:    cfg.API.ListingHost,
		Timeout: cfg.API.Timeout,
		Cache:   c,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating listing client: %w", err)
	}
	return gc, lc, nil
}
