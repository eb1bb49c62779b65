package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/panel"
)

func newShowCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show an individual or one of their properties",
		Long:  "Show an individual and their properties. With --address, show the detail panel for that property and add it to recently viewed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				return runShowProperty(cmd, args[0], address)
			}
			return runShow(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "exact address of one of the individual's properties")

	return cmd
}

func runShow(cmd *cobra.Command, name string) error {
	var ind *dataset.WealthyIndividual
	if flagRemote {
		var err error
		if ind, err = newAPIClient().Individual(name); err != nil {
			return err
		}
	} else {
		store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}
		var ok bool
		if ind, ok = store.Individual(name); !ok {
			return fmt.Errorf("individual not found: %s", name)
		}
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), ind)
	}
	return printIndividual(cmd.OutOrStdout(), ind)
}

func runShowProperty(cmd *cobra.Command, owner, address string) error {
	var details panel.PropertyDetails
	if flagRemote {
		c := newAPIClient()
		d, err := c.Details(owner, address)
		if err != nil {
			return err
		}
		saveSession(c)
		details = *d
	} else {
		env, err := openLocal(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		orch, err := env.orchestrator()
		if err != nil {
			return err
		}
		if details, err = orch.ShowDetails(cmd.Context(), owner, address); err != nil {
			return err
		}
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), details)
	}
	return printDetails(cmd.OutOrStdout(), details)
}
