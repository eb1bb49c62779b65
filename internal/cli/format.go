package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/wealth-map/internal/auth"
	"github.com/evcraddock/wealth-map/internal/dataset"
	"github.com/evcraddock/wealth-map/internal/history"
	"github.com/evcraddock/wealth-map/internal/panel"
	"github.com/evcraddock/wealth-map/internal/web"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printView prints the results panel in text format.
func printView(w io.Writer, v panel.View) error {
	if v.Message != "" {
		if _, err := fmt.Fprintln(w, v.Message); err != nil {
			return err
		}
	}
	for _, h := range v.Hints {
		if _, err := fmt.Fprintf(w, "  - %s\n", h); err != nil {
			return err
		}
	}
	if len(v.Rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TYPE\tTITLE\tDETAILS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, r := range v.Rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Kind, truncate(r.Title, 50), r.Subtitle); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return tw.Flush()
}

// printIndividuals prints the individuals listing as a table.
func printIndividuals(w io.Writer, list []web.IndividualSummary) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No individuals found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "NAME\tNET WORTH\tPROPERTIES"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, ind := range list {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\n", ind.Name, ind.NetWorth, ind.PropertyCount); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d individuals\n", len(list))
	return err
}

// printIndividual prints one individual and their properties.
func printIndividual(w io.Writer, ind *dataset.WealthyIndividual) error {
	if _, err := fmt.Fprintf(w, "%s\n  Net Worth:  %s\n  Properties: %d\n\n", ind.Name, ind.NetWorth, len(ind.Properties)); err != nil {
		return err
	}
	for _, p := range ind.Properties {
		value := p.Value
		if value == "" {
			value = panel.Unknown
		}
		if _, err := fmt.Fprintf(w, "  %s\n    Value: %s  (%.4f, %.4f)\n", p.Address, value, p.Coordinates[0], p.Coordinates[1]); err != nil {
			return err
		}
	}
	return nil
}

// printDetails prints a property detail panel.
func printDetails(w io.Writer, d panel.PropertyDetails) error {
	fields := []struct{ label, value string }{
		{"Address", d.Address},
		{"Type", d.PropertyType},
		{"Built", d.YearBuilt},
		{"Size", d.SquareFootage},
		{"Lot", d.LotSize},
		{"Bedrooms", d.Bedrooms},
		{"Bathrooms", d.Bathrooms},
		{"Owner", d.CurrentOwner},
		{"Owner Since", d.OwnerSince},
		{"Owner Type", d.OwnerType},
		{"Mailing", d.MailingAddress},
		{"Related", d.RelatedProperties},
		{"Value", d.CurrentValue},
		{"Last Sale", d.LastSalePrice},
		{"Sale Date", d.LastSaleDate},
		{"Taxes", d.PropertyTaxes},
		{"Assessment", d.TaxAssessment},
		{"Mortgage", d.MortgageInfo},
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", f.label, f.value); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\nHistory:"); err != nil {
		return err
	}
	if len(d.History) == 0 {
		_, err := fmt.Fprintf(w, "  %s\n", d.HistoryMessage)
		return err
	}
	for _, e := range d.History {
		if _, err := fmt.Fprintf(w, "  %d  %s\n", e.Year, e.Text); err != nil {
			return err
		}
	}
	return nil
}

// printHistory prints recent searches, newest first.
func printHistory(w io.Writer, entries []*history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No searches yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "WHEN\tQUERY\tOUTCOME\tRESULTS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(e.Query, 40), e.State, e.ResultCount); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return tw.Flush()
}

// printKeys prints API keys without their secrets.
func printKeys(w io.Writer, keys []auth.APIKey) error {
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "No API keys.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tNAME\tCREATED\tLAST USED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", k.ID, k.Name, formatTime(&k.CreatedAt), formatTime(k.LastUsedAt)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return tw.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
