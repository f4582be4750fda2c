package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"energychart/internal/config"
	"energychart/internal/fetchers"
	"energychart/internal/logger"
	"energychart/internal/metrics"
	"energychart/internal/server"
	"energychart/internal/storage"
)

// app bundles the server with the resources it owns
type app struct {
	server *server.Server
	source *fetchers.Source
}

func (a *app) Close() {
	if err := a.server.Close(); err != nil {
		logger.Warn("Failed to close storage", map[string]interface{}{"error": err.Error()})
	}
	if err := a.source.Close(); err != nil {
		logger.Warn("Failed to close data source", map[string]interface{}{"error": err.Error()})
	}
}

// newApp wires the data source, report storage and HTTP server from cfg
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	source, err := fetchers.NewHistoricDataFetcher(cfg)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewReportStorage(ctx, cfg)
	if err != nil {
		source.Close()
		return nil, err
	}

	srv, err := server.NewServer(cfg, source.Fetcher, client)
	if err != nil {
		client.Close()
		source.Close()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return &app{server: srv, source: source}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		logger.Fatal("Failed to configure logging", err)
	}
	metrics.Register()

	logger.Info("Starting energy chart service", map[string]interface{}{
		"version":     config.GetVersion(),
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"deployment":  cfg.DeploymentMode,
		"mockup":      cfg.MockupMode,
	})

	a, err := newApp(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to start", err)
	}
	defer a.Close()

	if err := a.server.ListenAndServe(ctx); err != nil {
		logger.Error("Server failed", err)
	}
}
