package cli

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"weekly-etf-dashboard/internal/config"
	"weekly-etf-dashboard/internal/logging"
	"weekly-etf-dashboard/internal/models"

	apperrors "weekly-etf-dashboard/internal/errors"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-08-28"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "etfdash",
		Short: "Weekly ETF dashboard - distribution tracking and stability analysis",
		Long: `etfdash tracks weekly-distribution ETFs across YieldMax, Roundhill,
and GraniteShares, keeps a day-keyed snapshot history, and computes
ex-dividend anchored comparisons, payout stability scores, and
distribution-drop alerts.

Use 'etfdash help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/weekly-etf-dashboard)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newCompareCmd(app))
	rootCmd.AddCommand(newAlertsCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newExportCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Weekly ETF Dashboard v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Data")
	output.Printf("  Directory:       %s\n", cfg.Data.Dir)
	output.Printf("  History:         %s\n", cfg.HistoryDir())
	output.Printf("  Database:        %s\n", cfg.DatabasePath())
	output.Println()

	output.Bold("History")
	output.Printf("  Lookback Days:   %d\n", cfg.History.LookbackDays)
	output.Println()

	output.Bold("Compare")
	output.Printf("  Recent Window:   %d ex-div events\n", cfg.Compare.RecentWindow)
	output.Printf("  Workers:         %d\n", cfg.Compare.Workers)
	output.Println()

	output.Bold("Alerts")
	output.Printf("  Drop Threshold:  %.1f%%\n", cfg.Alerts.DropPct)
	output.Println()

	output.Bold("Scrape")
	output.Printf("  Min Interval:    %s\n", cfg.Scrape.MinFetchInterval)
	output.Printf("  Timeout:         %s\n", cfg.Scrape.Timeout)
	output.Printf("  Min Items:       %d\n", cfg.Scrape.MinItems)
	output.Printf("  Manual Tickers:  %s\n", cfg.Scrape.ManualTickers)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:         %v\n", cfg.Notifications.Enabled)
	output.Printf("  Level:           %s\n", cfg.Notifications.Level)
	output.Printf("  Webhook:         %v\n", cfg.Notifications.Webhook.Enabled)
	output.Printf("  Telegram:        %v\n", cfg.Notifications.Telegram.Enabled)

	return nil
}

// loadArtifact reads the primary snapshot artifact.
func (app *App) loadArtifact() (*models.SnapshotBatch, error) {
	path := app.Config.SnapshotPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNoSnapshot
		}
		return nil, apperrors.NewStoreError("read", path, err)
	}
	var batch models.SnapshotBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, apperrors.NewStoreError("unmarshal", path, err)
	}
	return &batch, nil
}
