package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"energychart/internal/history"
	"energychart/internal/recorder"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record live MQTT telemetry into the history database",
	Long: `Subscribes to <MQTT_TOPIC_PREFIX>/<thing>/<channel> on MQTT_BROKER and
writes a snapshot of the latest values every RECORD_INTERVAL.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("no history database: set --db or HISTORY_DB")
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := recorder.New(recorder.Options{
		Broker:      cfg.MQTTBroker,
		TopicPrefix: cfg.MQTTTopicPrefix,
		ClientID:    cfg.MQTTClientID,
		Username:    cfg.MQTTUsername,
		Password:    cfg.MQTTPassword,
		Interval:    cfg.RecordInterval,
	}, store)
	return rec.Run(ctx)
}
