package cli

import (
	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"

	"weekly-etf-dashboard/internal/alerts"
	"weekly-etf-dashboard/internal/store"
)

func newAlertsCmd(app *App) *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Scan the current snapshot for distribution drops",
		Long: `Re-scans the published snapshot artifact with the configured (or
overridden) drop threshold and prints the alerts it would fire. The
published alerts.json is not rewritten; use 'run' for that.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			batch, err := app.loadArtifact()
			if err != nil {
				output.Error("No snapshot artifact: %v", err)
				return err
			}

			t := threshold
			if !cmd.Flags().Changed("threshold") {
				t = app.Config.Alerts.DropPct
			}

			gen := alerts.NewGenerator(t)
			emitted := gen.Scan(batch.Items)

			if output.IsJSON() {
				return output.JSON(gen.Artifact(batch.GeneratedAt))
			}

			output.Bold("Alerts at threshold %.1f%% (snapshot %s)", t, batch.GeneratedAt)
			if len(emitted) == 0 {
				output.Success("No distribution drops at or below threshold")
				return nil
			}
			for _, a := range emitted {
				output.Printf("  %s %-22s %s %s\n",
					output.Red(PadRight(a.Ticker, 6)),
					a.Type,
					PadLeft(FormatNullPct(null.FloatFrom(a.Pct)), 9),
					output.DimText(a.ExDividendDate.ValueOrZero()))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", alerts.DefaultDropPct, "drop threshold in percent (negative)")

	cmd.AddCommand(newAlertsHistoryCmd(app))
	return cmd
}

func newAlertsHistoryCmd(app *App) *cobra.Command {
	var ticker, alertType string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show persisted alerts from past runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			rec, err := store.NewSQLiteRecorder(app.Config.DatabasePath())
			if err != nil {
				output.Error("Failed to open recorder database: %v", err)
				return err
			}
			defer rec.Close()

			records, err := rec.AlertHistory(cmd.Context(), store.AlertFilter{
				Ticker: ticker,
				Type:   alertType,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}

			if len(records) == 0 {
				output.Dim("No persisted alerts")
				return nil
			}
			output.Bold("%-12s %-7s %-22s %9s  %s", "RUN DATE", "TICKER", "TYPE", "PCT", "EX-DIV")
			for _, r := range records {
				output.Printf("%-12s %-7s %-22s %9.2f  %s\n",
					r.RunDate, r.Ticker, r.Type, r.Pct, r.ExDividendDate)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ticker, "ticker", "", "filter by ticker")
	cmd.Flags().StringVar(&alertType, "type", "", "filter by alert type")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return cmd
}
