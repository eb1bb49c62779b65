package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/wealth-map/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var clear, views bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Long:  "Show recent searches, newest first. Local commands share one history; with --remote the server session stored in the CLI config is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case clear:
				return runClearHistory(cmd)
			case views:
				return runViews(cmd)
			default:
				return runHistory(cmd)
			}
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "delete the search history")
	cmd.Flags().BoolVar(&views, "views", false, "show recently viewed properties instead")
	cmd.MarkFlagsMutuallyExclusive("clear", "views")

	return cmd
}

func runHistory(cmd *cobra.Command) error {
	var entries []*history.Entry
	if flagRemote {
		var err error
		if entries, err = newAPIClient().History(); err != nil {
			return err
		}
	} else {
		env, err := openLocal(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()
		if entries, err = env.history.Recent(cmd.Context(), cliSession); err != nil {
			return err
		}
	}

	if isJSON() {
		if entries == nil {
			entries = []*history.Entry{}
		}
		return printJSON(cmd.OutOrStdout(), entries)
	}
	return printHistory(cmd.OutOrStdout(), entries)
}

func runClearHistory(cmd *cobra.Command) error {
	var n int64
	if flagRemote {
		var err error
		if n, err = newAPIClient().ClearHistory(); err != nil {
			return err
		}
	} else {
		env, err := openLocal(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()
		if n, err = env.history.Clear(cmd.Context(), cliSession); err != nil {
			return err
		}
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]int64{"cleared": n})
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %d searches.\n", n)
	return err
}

func runViews(cmd *cobra.Command) error {
	var views []*history.View
	if flagRemote {
		var err error
		if views, err = newAPIClient().Views(); err != nil {
			return err
		}
	} else {
		env, err := openLocal(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()
		if views, err = env.history.RecentViews(cmd.Context(), cliSession); err != nil {
			return err
		}
	}

	if isJSON() {
		if views == nil {
			views = []*history.View{}
		}
		return printJSON(cmd.OutOrStdout(), views)
	}

	out := cmd.OutOrStdout()
	if len(views) == 0 {
		_, err := fmt.Fprintln(out, "No recently viewed properties.")
		return err
	}
	for _, v := range views {
		if _, err := fmt.Fprintf(out, "[%s] %s\n  %s\n", formatTime(&v.ViewedAt), v.Owner, v.Address); err != nil {
			return err
		}
	}
	return nil
}
