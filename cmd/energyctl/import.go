package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"energychart/internal/history"
	"energychart/internal/logger"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a historic data export into the history database",
	Long: `Reads a queryHistoricTimeseriesData response (with or without the JSON-RPC
envelope) and stores its values in the history database.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "JSON file to import (required)")
	importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("no history database: set --db or HISTORY_DB")
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	f, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", importFile, err)
	}
	defer f.Close()

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ImportJSON(ctx, f, loc)
	if err != nil {
		return err
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records (%d values for %d things stored)\n", n, stats.Values, stats.Things)
	if !stats.Last.IsZero() {
		fmt.Fprintf(cmd.OutOrStdout(), "Latest value from %s\n", logger.HumanSince(stats.Last))
	}
	return nil
}
