package fetchers

import (
	"context"

	"energychart/internal/models"
)

// ErrNoData is returned when a query matched no records
var ErrNoData = models.ErrNoData

// HistoricDataFetcher queries historic channel values of an edge
type HistoricDataFetcher interface {
	QueryHistoricData(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) (*models.HistoricData, error)
}

// FetcherFunc adapts a function to HistoricDataFetcher
type FetcherFunc func(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) (*models.HistoricData, error)

// QueryHistoricData calls f
func (f FetcherFunc) QueryHistoricData(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) (*models.HistoricData, error) {
	return f(ctx, rng, channels)
}
