// Package cli defines the cobra command tree for wealth-map.
package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/wealth-map/internal/client"
	"github.com/evcraddock/wealth-map/internal/config"
	"github.com/evcraddock/wealth-map/internal/db"
	"github.com/evcraddock/wealth-map/internal/logging"
)

var (
	flagFormat  string
	flagDB      string
	flagDataset string
	flagRemote  bool
	flagVerbose bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wm",
		Short:         "Map where the wealthy own property",
		Long:          "Search a dataset of wealthy individuals and their properties, fall back to geocoding and nearby listings, and serve the results as a JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupCLI(flagVerbose)
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: $WM_DB or ~/.wealth-map/wm.db)")
	root.PersistentFlags().StringVar(&flagDataset, "dataset", "", "dataset file or URL (default: $WM_DATASET or the embedded sample)")
	root.PersistentFlags().BoolVar(&flagRemote, "remote", false, "run against the API server instead of locally")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newSearchCmd(),
		newIndividualsCmd(),
		newShowCmd(),
		newHistoryCmd(),
		newKeysCmd(),
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// loadServiceConfig reads the environment configuration and applies the
// global flag overrides.
func loadServiceConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDataset != "" {
		cfg.Data.Source = flagDataset
	}
	if flagDB != "" {
		cfg.Server.DBPath = flagDB
	}
	return cfg, nil
}

// openDB opens the SQLite database at the configured or default path.
func openDB(cfg *config.Config) (*sql.DB, error) {
	path := cfg.Server.DBPath
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the wealth-map API, resuming
// the stored session.
func newAPIClient() *client.Client {
	c := client.New(getServerURL(), getAPIKey())
	if cfg, err := loadConfig(); err == nil {
		c.SetSession(cfg.Session)
	}
	return c
}

// saveSession persists the client's session, warning on failure.
func saveSession(c *client.Client) {
	if err := rememberSession(c.Session()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving session: %v\n", err)
	}
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
