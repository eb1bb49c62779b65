package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Tests the connection to the server and checks whether the stored API key is accepted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.OutOrStdout())
		},
	}
}

func runStatus(out io.Writer) error {
	serverURL := getServerURL()
	apiKey := getAPIKey()

	p := func(format string, a ...interface{}) {
		_, _ = fmt.Fprintf(out, format, a...)
	}

	p("Server:  %s\n", serverURL)
	if apiKey == "" {
		p("API Key: not configured\n")
	} else {
		prefix := apiKey
		if len(prefix) > 8 {
			prefix = prefix[:8]
		}
		p("API Key: %s…\n", prefix)
	}

	c := newAPIClient()
	health, err := c.Health()
	if err != nil {
		p("Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}
	if loaded, _ := health["dataset_loaded"].(bool); !loaded {
		p("Dataset: not loaded yet\n")
	}
	if network, _ := health["network_search"].(bool); !network {
		p("Network: geocoding and listings disabled\n")
	}

	// History needs auth whenever the server has keys.
	if _, err := c.History(); err != nil {
		p("Status:  ✗ %v\n", err)
		if apiKey == "" {
			p("\nCreate a key with 'wm keys create' and run 'wm login'.\n")
		} else {
			p("\nRun 'wm login' to store a valid key.\n")
		}
		return nil
	}
	p("Status:  ✓ connected\n")
	return nil
}
