package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/wealth-map/internal/auth"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
		Long: `Manage the API keys accepted by the server. Keys are created directly
in the local database unless --remote is given. Once any key exists the
server requires one on every /api request.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create an API key",
			Args:  cobra.ExactArgs(1),
			RunE:  runKeysCreate,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List API keys",
			Args:  cobra.NoArgs,
			RunE:  runKeysList,
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Revoke an API key",
			Args:  cobra.ExactArgs(1),
			RunE:  runKeysDelete,
		},
	)

	return cmd
}

// withKeyStore runs fn against the local key store.
func withKeyStore(fn func(*auth.APIKeyStore) error) error {
	cfg, err := loadServiceConfig()
	if err != nil {
		return err
	}
	database, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)
	return fn(auth.NewAPIKeyStore(database))
}

func runKeysCreate(cmd *cobra.Command, args []string) error {
	var raw string
	var key *auth.APIKey
	if flagRemote {
		resp, err := newAPIClient().CreateKey(args[0])
		if err != nil {
			return err
		}
		raw, key = resp.Key, &resp.APIKey
	} else {
		err := withKeyStore(func(s *auth.APIKeyStore) error {
			var err error
			raw, key, err = s.Create(args[0])
			return err
		})
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string]interface{}{"key": raw, "api_key": key})
	}
	_, err := fmt.Fprintf(out, "✓ Created key #%d (%s)\n\n  %s\n\nStore it now; it cannot be shown again.\n", key.ID, key.Name, raw)
	return err
}

func runKeysList(cmd *cobra.Command, args []string) error {
	var keys []auth.APIKey
	if flagRemote {
		var err error
		if keys, err = newAPIClient().ListKeys(); err != nil {
			return err
		}
	} else {
		err := withKeyStore(func(s *auth.APIKeyStore) error {
			var err error
			keys, err = s.List()
			return err
		})
		if err != nil {
			return err
		}
	}

	if isJSON() {
		if keys == nil {
			keys = []auth.APIKey{}
		}
		return printJSON(cmd.OutOrStdout(), keys)
	}
	return printKeys(cmd.OutOrStdout(), keys)
}

func runKeysDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid key ID: %s", args[0])
	}

	if flagRemote {
		err = newAPIClient().DeleteKey(id)
	} else {
		err = withKeyStore(func(s *auth.APIKeyStore) error { return s.Delete(id) })
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Key #%d revoked.\n", id)
	return err
}
