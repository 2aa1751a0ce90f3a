package cli

import (
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"

	"weekly-etf-dashboard/internal/compare"
	"weekly-etf-dashboard/internal/history"
	"weekly-etf-dashboard/internal/models"

	apperrors "weekly-etf-dashboard/internal/errors"
)

func newCompareCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <ticker>",
		Short: "Show historical comparison metrics for one fund",
		Long: `Rebuilds the fund's observation timeline from the stored history
and prints its ex-dividend anchored changes, trailing-window sum and
slope, and payout stability score.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ticker := strings.ToUpper(strings.TrimSpace(args[0]))

			hist := history.NewStore(app.Config.HistoryDir(), app.Logger)
			batches, err := hist.Load(app.Config.History.LookbackDays)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				output.Error("No history found under %s", app.Config.HistoryDir())
				return apperrors.ErrHistoryUnavailable
			}

			rec := latestRecord(batches, ticker)
			if rec == nil {
				output.Error("Ticker %s not found in history", ticker)
				return apperrors.ErrTickerNotFound
			}

			engine := compare.NewEngine(
				compare.WithRecentWindow(app.Config.Compare.RecentWindow),
				compare.WithLogger(app.Logger),
			)
			annotated := engine.AnnotateTicker(rec, batches, time.Now().UTC())

			if output.IsJSON() {
				return output.JSON(rec)
			}

			output.Bold("%s (%s)", rec.Ticker, rec.Issuer)
			if rec.Name.Valid {
				output.Dim("%s", rec.Name.String)
			}
			output.Println()

			output.Printf("  Distribution:     %s\n", FormatNullFloat(rec.DistributionPerShare, 4))
			output.Printf("  Ex-Dividend Date: %s\n", FormatNullString(rec.ExDividendDate))
			output.Printf("  Pay Date:         %s\n", FormatNullString(rec.PayDate))
			output.Printf("  Share Price:      %s\n", FormatNullFloat(rec.SharePrice, 2))
			output.Println()

			if !annotated {
				output.Warning("Not enough history to compare (need at least two runs with ex-dividend dates)")
				return nil
			}

			output.Bold("Ex-dividend anchored changes")
			output.Printf("  Dist  1W: %s   1M: %s\n",
				output.ColoredString(changeColor(output, rec.DistChgEx1WPct), FormatNullPct(rec.DistChgEx1WPct)),
				output.ColoredString(changeColor(output, rec.DistChgEx1MPct), FormatNullPct(rec.DistChgEx1MPct)))
			output.Printf("  Price 1W: %s   1M: %s\n",
				FormatNullPct(rec.PriceChgEx1WPct), FormatNullPct(rec.PriceChgEx1MPct))
			output.Printf("  NAV   1W: %s   1M: %s\n",
				FormatNullPct(rec.NAVChgEx1WPct), FormatNullPct(rec.NAVChgEx1MPct))
			output.Println()

			output.Bold("Trailing window")
			output.Printf("  Days Since Ex-Div: %s\n", FormatNullInt(rec.DaysSinceExDiv))
			output.Printf("  Window Sum:        %s\n", FormatNullFloat(rec.DistSum8W, 4))
			output.Printf("  Window Slope:      %s\n", FormatNullFloat(rec.DistSlope8W, 6))
			output.Printf("  Stability Score:   %s\n", formatScore(output, rec.DistStabilityScore))
			return nil
		},
	}
	return cmd
}

// latestRecord finds the most recent snapshot record for a ticker,
// scanning batches newest-first.
func latestRecord(batches []models.SnapshotBatch, ticker string) *models.SnapshotRecord {
	for i := len(batches) - 1; i >= 0; i-- {
		for j := range batches[i].Items {
			if batches[i].Items[j].Ticker == ticker {
				rec := batches[i].Items[j]
				return &rec
			}
		}
	}
	return nil
}

func changeColor(output *Output, pct null.Float) string {
	return output.ChangeColor(pct.ValueOrZero())
}

// formatScore colors the stability score: green at 70+, yellow at 40+,
// red below.
func formatScore(output *Output, score null.Float) string {
	if !score.Valid {
		return nullPlaceholder
	}
	s := FormatNullFloat(score, 1)
	switch {
	case score.Float64 >= 70:
		return output.Green(s)
	case score.Float64 >= 40:
		return output.Yellow(s)
	default:
		return output.Red(s)
	}
}
