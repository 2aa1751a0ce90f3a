package cli

import (
	"github.com/spf13/cobra"

	"weekly-etf-dashboard/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current snapshot to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			batch, err := app.loadArtifact()
			if err != nil {
				output.Error("No snapshot artifact: %v", err)
				return err
			}

			if out == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), batch.Items)
			}
			if err := export.WriteCSVFile(out, batch.Items); err != nil {
				output.Error("Export failed: %v", err)
				return err
			}
			output.Success("Exported %d funds to %s", len(batch.Items), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "weekly_etfs.csv", "output path, or - for stdout")
	return cmd
}
