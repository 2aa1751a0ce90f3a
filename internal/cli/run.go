package cli

import (
	"github.com/spf13/cobra"

	"weekly-etf-dashboard/internal/notify"
	"weekly-etf-dashboard/internal/pipeline"
	"weekly-etf-dashboard/internal/store"
)

func newRunCmd(app *App) *cobra.Command {
	var noNotify, noRecord bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full collection and analysis pipeline",
		Long: `Collects weekly funds from every issuer source, writes today's
history snapshot, annotates every fund against the stored history, and
publishes the snapshot, items, and alerts artifacts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			opts := []pipeline.Option{}

			if noRecord {
				app.Logger.Debug().Msg("Run recording disabled")
			} else {
				rec, err := store.NewSQLiteRecorder(app.Config.DatabasePath())
				if err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to open run recorder, continuing without")
				} else {
					defer rec.Close()
					opts = append(opts, pipeline.WithRecorder(rec))
				}
			}
			if noNotify {
				opts = append(opts, pipeline.WithNotifier(notify.NewNoOpNotifier()))
			}

			p := pipeline.New(app.Config, app.Logger, opts...)
			result, err := p.Run(cmd.Context())
			if err != nil {
				output.Error("Run failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"generated_at": result.GeneratedAt,
					"items":        len(result.Items),
					"annotated":    result.Annotated,
					"alerts":       len(result.Alerts),
					"restored":     result.Restored,
				})
			}

			if result.Restored {
				output.Warning("Scrape collapsed; previous snapshot restored")
			}
			output.Success("Run complete: %d funds, %d annotated, %d alert(s)",
				len(result.Items), result.Annotated, len(result.Alerts))
			for _, a := range result.Alerts {
				output.Printf("  %s %s\n", output.Red(a.Ticker), a.Message)
			}
			output.Dim("Artifacts written to %s", app.Config.Data.Dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "skip notifications")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "skip the run recorder database")

	return cmd
}
