package fetchers

import (
	"context"
	"errors"
	"time"

	"energychart/internal/metrics"
	"energychart/internal/models"
)

// instrumented records prometheus metrics around another fetcher
type instrumented struct {
	source string
	next   HistoricDataFetcher
}

// Instrument wraps fetcher so every query is counted and timed under source
func Instrument(source string, fetcher HistoricDataFetcher) HistoricDataFetcher {
	return &instrumented{source: source, next: fetcher}
}

func (i *instrumented) QueryHistoricData(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) (*models.HistoricData, error) {
	start := time.Now()
	data, err := i.next.QueryHistoricData(ctx, rng, channels)
	metrics.HistoryQueryDuration.WithLabelValues(i.source).Observe(time.Since(start).Seconds())
	metrics.HistoryQueries.WithLabelValues(i.source, resultLabel(err)).Inc()
	return data, err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
