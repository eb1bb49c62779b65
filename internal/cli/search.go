package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/wealth-map/internal/web"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search individuals, addresses and places",
		Long: `Search the dataset for an individual or address. If nothing matches,
the query is geocoded and properties listed near the location are shown
(requires RAPIDAPI_KEY).`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	var resp web.SearchResponse
	if flagRemote {
		c := newAPIClient()
		r, err := c.Search(query)
		if err != nil {
			return err
		}
		saveSession(c)
		resp = *r
	} else {
		env, err := openLocal(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		orch, err := env.orchestrator()
		if err != nil {
			return err
		}
		out := orch.Search(ctx, query)
		sess := orch.Session()
		resp = web.SearchResponse{
			Session: sess.ID,
			Outcome: out,
			Results: sess.Results.View(),
			Map:     sess.MapState(),
		}
	}

	if resp.Outcome.Stale {
		return errors.New("search canceled")
	}
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	return printView(cmd.OutOrStdout(), resp.Results)
}
