package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored API key",
		Long:  "Removes the stored API key and server session from the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.OutOrStdout())
		},
	}
}

func runLogout(out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.APIKey == "" && cfg.Session == "" {
		_, err := fmt.Fprintln(out, "Not logged in.")
		return err
	}

	cfg.APIKey = ""
	cfg.Session = ""
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, err = fmt.Fprintln(out, "✓ Logged out. API key removed.")
	return err
}
