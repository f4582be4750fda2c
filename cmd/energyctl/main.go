package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"energychart/internal/config"
	"energychart/internal/logger"
	"energychart/internal/metrics"
)

var (
	historyDB string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "energyctl",
	Short: "Render and record edge energy history",
	Long: `energyctl renders the energy chart of an edge for a time range, records
live MQTT telemetry into a local history database and imports historic data
exports into it. Connection settings are read from the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Configure(logLevel, "text")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&historyDB, "db", "", "history database file (default $HISTORY_DB)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// loadConfig loads the environment configuration and applies the flags
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if historyDB != "" {
		cfg.HistoryDB = historyDB
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
