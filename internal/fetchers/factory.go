package fetchers

import (
	"fmt"
	"io"

	"energychart/internal/config"
	"energychart/internal/history"
	"energychart/internal/logger"
	"energychart/internal/mocks"
)

// Source names reported in metrics and logs
const (
	SourceMock    = "mock"
	SourceHistory = "history"
	SourceEdge    = "edge"
)

// Source is a configured fetcher plus whatever must be closed with it
type Source struct {
	Name    string
	Fetcher HistoricDataFetcher
	closer  io.Closer
}

// Close releases the resources of the source
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// NewHistoricDataFetcher picks the data source: mock data in mockup mode,
// the local history database when configured, the edge otherwise
func NewHistoricDataFetcher(cfg *config.Config) (*Source, error) {
	log := logger.Component("fetchers")

	switch {
	case cfg.MockupMode:
		log.Info("Using mock historic data", map[string]interface{}{"mocks_dir": cfg.MocksDir})
		return &Source{
			Name:    SourceMock,
			Fetcher: Instrument(SourceMock, mocks.NewMockService(cfg.MocksDir)),
		}, nil

	case cfg.HistoryDB != "":
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		log.Info("Using local history store", map[string]interface{}{"path": cfg.HistoryDB})
		return &Source{
			Name:    SourceHistory,
			Fetcher: Instrument(SourceHistory, store),
			closer:  store,
		}, nil

	default:
		if cfg.EdgeURL == "" {
			return nil, fmt.Errorf("no data source configured: set EDGE_URL, HISTORY_DB or MOCKUP_MODE")
		}
		client := NewEdgeClient(EdgeOptions{
			URL:        cfg.EdgeURL,
			Username:   cfg.EdgeUsername,
			Password:   cfg.EdgePassword,
			Timeout:    cfg.EdgeTimeout,
			RetryCount: cfg.EdgeRetries,
		})
		log.Info("Using edge JSON-RPC", map[string]interface{}{"url": cfg.EdgeURL})
		return &Source{
			Name:    SourceEdge,
			Fetcher: Instrument(SourceEdge, NewEdgeFetcher(client, cfg.EdgeURL)),
		}, nil
	}
}
