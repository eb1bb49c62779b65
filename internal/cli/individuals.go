package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/web"
)

func newIndividualsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "individuals",
		Aliases: []string{"ls"},
		Short:   "List everyone in the dataset",
		Args:    cobra.NoArgs,
		RunE:    runIndividuals,
	}
}

func runIndividuals(cmd *cobra.Command, args []string) error {
	var list []web.IndividualSummary
	if flagRemote {
		var err error
		if list, err = newAPIClient().Individuals(); err != nil {
			return err
		}
	} else {
		store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}
		inds, err := store.Individuals()
		if err != nil {
			return err
		}
		list = make([]web.IndividualSummary, len(inds))
		for i, ind := range inds {
			list[i] = web.IndividualSummary{Name: ind.Name, NetWorth: ind.NetWorth, PropertyCount: len(ind.Properties)}
		}
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), list)
	}
	return printIndividuals(cmd.OutOrStdout(), list)
}

// loadStore loads the configured dataset without opening the database.
func loadStore(ctx context.Context) (*dataset.Store, error) {
	cfg, err := loadServiceConfig()
	if err != nil {
		return nil, err
	}
	store := dataset.NewStore(cfg.Data.Source)
	if _, err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("dataset unavailable: %w", err)
	}
	return store, nil
}
