package cli

import (
	"github.com/spf13/cobra"

	"weekly-etf-dashboard/internal/history"
	"weekly-etf-dashboard/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the snapshot history store",
	}
	cmd.AddCommand(newHistoryListCmd(app))
	cmd.AddCommand(newHistoryShowCmd(app))
	cmd.AddCommand(newHistoryRunsCmd(app))
	return cmd
}

func newHistoryListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored history days",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			hist := history.NewStore(app.Config.HistoryDir(), app.Logger)
			days, err := hist.Days()
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"days": days})
			}
			if len(days) == 0 {
				output.Dim("No history under %s", app.Config.HistoryDir())
				return nil
			}
			for _, d := range days {
				output.Println(d)
			}
			output.Dim("%d day(s)", len(days))
			return nil
		},
	}
}

func newHistoryShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <YYYY-MM-DD>",
		Short: "Show one day's snapshot batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			hist := history.NewStore(app.Config.HistoryDir(), app.Logger)
			batch, err := hist.LoadDay(args[0])
			if err != nil {
				output.Error("Failed to load %s: %v", args[0], err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(batch)
			}

			output.Bold("Snapshot %s (%d funds)", batch.GeneratedAt, len(batch.Items))
			output.Bold("%-7s %-14s %10s %-12s %10s", "TICKER", "ISSUER", "DIST", "EX-DIV", "PRICE")
			for i := range batch.Items {
				it := &batch.Items[i]
				output.Printf("%-7s %-14s %10s %-12s %10s\n",
					it.Ticker,
					TruncateString(it.Issuer, 14),
					FormatNullFloat(it.DistributionPerShare, 4),
					FormatNullString(it.ExDividendDate),
					FormatNullFloat(it.SharePrice, 2))
			}
			return nil
		},
	}
}

func newHistoryRunsCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recorded pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			rec, err := store.NewSQLiteRecorder(app.Config.DatabasePath())
			if err != nil {
				output.Error("Failed to open recorder database: %v", err)
				return err
			}
			defer rec.Close()

			runs, err := rec.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}
			if len(runs) == 0 {
				output.Dim("No recorded runs")
				return nil
			}
			output.Bold("%-5s %-12s %6s %10s %7s", "ID", "DATE", "ITEMS", "ANNOTATED", "ALERTS")
			for _, r := range runs {
				output.Printf("%-5d %-12s %6d %10d %7d\n",
					r.ID, r.RunDate, r.ItemCount, r.AnnotatedCount, r.AlertCount)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	return cmd
}
