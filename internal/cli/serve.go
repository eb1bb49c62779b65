package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/wealth-map/internal/cache"
	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/logging"
	"github.com/evcraddock/wealth-map/internal/web"
)

const minPurgeInterval = time.Minute

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP JSON API. Configuration is read from WM_* environment variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: $WM_PORT or 8080)")

	return cmd
}

func runServe(ctx context.Context, port int) error {
	cfg, err := loadServiceConfig()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	logging.Setup(cfg.Server.DevMode)

	database, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)

	gc, lc, err := networkClients(cfg, database)
	if err != nil {
		return err
	}

	deps := web.Deps{
		DB:      database,
		Config:  cfg,
		Dataset: dataset.NewStore(cfg.Data.Source),
	}
	if gc != nil && lc != nil {
		deps.Geocoder = gc
		deps.Listings = lc
	} else {
		slog.Info("RAPIDAPI_KEY not set, searches are limited to the dataset")
	}

	srv, err := web.NewServer(deps)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Port)
	})
	g.Go(func() error {
		// A failed load is retried by the first search.
		if _, err := deps.Dataset.Load(gctx); err != nil {
			slog.Warn("preloading dataset", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		purgeCache(gctx, cache.New(database, cfg.API.CacheTTL), cfg.API.CacheTTL)
		return nil
	})
	return g.Wait()
}

// purgeCache removes expired responses every interval until ctx is done.
func purgeCache(ctx context.Context, c *cache.Cache, interval time.Duration) {
	if interval < minPurgeInterval {
		interval = minPurgeInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.Purge(ctx)
			if err != nil {
				slog.Warn("purging response cache", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("purged response cache", "entries", n)
			}
		}
	}
}
