package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energychart/internal/config"
	"energychart/internal/fetchers"
	"energychart/internal/i18n"
	"energychart/internal/logger"
	"energychart/internal/models"
	"energychart/internal/reports"
	"energychart/internal/storage"
)

// Server represents the main application server
type Server struct {
	Config     *config.Config
	Fetcher    fetchers.HistoricDataFetcher
	EdgeConfig *models.EdgeConfig
	Bundle     *i18n.Bundle
	Location   *time.Location
	Reports    *reports.ReportService
	Storage    storage.StorageClient

	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, fetcher fetchers.HistoricDataFetcher, client storage.StorageClient) (*Server, error) {
	edgeCfg, err := cfg.LoadEdgeConfig()
	if err != nil {
		return nil, err
	}
	bundle, err := i18n.NewBundle(cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Config:     cfg,
		Fetcher:    fetcher,
		EdgeConfig: edgeCfg,
		Bundle:     bundle,
		Location:   loc,
		Storage:    client,
		log:        logger.Component("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	if client != nil {
		s.Reports = reports.NewReportService(fetcher, edgeCfg, client)
	}
	return s, nil
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/api/energychart", s.HandleEnergyChartData)
	mux.HandleFunc("/energychart", s.HandleEnergyChartPage)
	mux.HandleFunc("/energychart.png", s.HandleEnergyChartPNG)
	mux.HandleFunc("/ws/energychart", s.HandleLiveEnergyChart)
	mux.HandleFunc("/api/reports", s.HandleGenerateReport)
	mux.HandleFunc("/reports", s.HandleListReports)
	mux.HandleFunc("/files/", s.HandleFileProxy)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         ":" + s.Config.Port,
		Handler:      s.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", map[string]interface{}{"port": s.Config.Port})
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("Server stopped", nil)
	return nil
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.Storage != nil {
		return s.Storage.Close()
	}
	return nil
}
