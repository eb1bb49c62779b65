package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/wealth-map/internal/auth"
)

func newLoginCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for remote commands",
		Long:  "Reads an API key (create one with 'wm keys create') from stdin and stores it in the CLI config.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.InOrStdin(), cmd.OutOrStdout(), server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or "+defaultServerURL+")")

	return cmd
}

func runLogin(in io.Reader, out io.Writer, serverFlag string) error {
	if _, err := fmt.Fprint(out, "Paste your API key: "); err != nil {
		return err
	}
	key, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading input: %w", err)
	}

	key = strings.TrimSpace(key)
	if err := validateAPIKey(key); err != nil {
		return err
	}

	// Keep the other fields.
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}

	cfg.APIKey = key
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
		cfg.Session = ""
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, err = fmt.Fprintln(out, "\n✓ API key saved. You're logged in!")
	return err
}

// validateAPIKey checks that the key is non-empty and has the expected prefix.
func validateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("no API key provided")
	}
	if !strings.HasPrefix(key, auth.RawKeyPrefix) {
		return fmt.Errorf("invalid API key format (should start with %s)", auth.RawKeyPrefix)
	}
	return nil
}
