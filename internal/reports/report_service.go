package reports

import (
	"context"
	"fmt"
	"time"

	"energychart/internal/charts"
	"energychart/internal/fetchers"
	"energychart/internal/i18n"
	"energychart/internal/logger"
	"energychart/internal/metrics"
	"energychart/internal/models"
	"energychart/internal/storage"
)

// Result describes a stored report
type Result struct {
	Path   string `json:"path"`
	Totals Totals `json:"totals"`
}

// ReportService queries historic data and stores it as a report
type ReportService struct {
	fetcher      fetchers.HistoricDataFetcher
	cfg          *models.EdgeConfig
	storage      storage.StorageClient
	generator    *Generator
	orchestrator *StorageOrchestrator
	now          func() time.Time
	log          *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(fetcher fetchers.HistoricDataFetcher, cfg *models.EdgeConfig, client storage.StorageClient) *ReportService {
	return &ReportService{
		fetcher:      fetcher,
		cfg:          cfg,
		storage:      client,
		generator:    NewGenerator(),
		orchestrator: NewStorageOrchestrator(client),
		now:          time.Now,
		log:          logger.Component("reports"),
	}
}

// Create renders the energy chart of rng and stores it as a report
func (rs *ReportService) Create(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses, tr i18n.Translator) (*Result, error) {
	result, err := rs.create(ctx, rng, channels, tr)
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("error").Inc()
		rs.log.Error("Report generation failed", err, map[string]interface{}{
			"from": rng.From.Format(time.RFC3339),
			"to":   rng.To.Format(time.RFC3339),
		})
		return nil, err
	}
	metrics.ReportsGenerated.WithLabelValues("success").Inc()
	return result, nil
}

func (rs *ReportService) create(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses, tr i18n.Translator) (*Result, error) {
	if channels.Len() == 0 {
		channels = rs.cfg.ImportantChannels()
	}

	chart := charts.NewEnergyChart(rs.fetcher, rs.cfg, tr)
	defer chart.Close()
	if err := chart.Update(ctx, rng, channels); err != nil {
		return nil, fmt.Errorf("failed to load report data: %w", err)
	}

	files, err := rs.generator.Generate(ctx, chart.State(), tr, rs.now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	path, err := rs.orchestrator.Store(ctx, files)
	if err != nil {
		return nil, err
	}
	return &Result{Path: path, Totals: files.Totals}, nil
}

// List returns the index paths of stored reports, newest first
func (rs *ReportService) List(ctx context.Context, limit int) ([]string, error) {
	return rs.storage.ListReports(ctx, limit)
}

// GetFile returns a stored report file
func (rs *ReportService) GetFile(ctx context.Context, path string) ([]byte, error) {
	return rs.storage.GetFile(ctx, path)
}
