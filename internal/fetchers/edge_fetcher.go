package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"energychart/internal/logger"
	"energychart/internal/models"
)

// EdgeFetcher queries historic data from an edge over JSON-RPC
type EdgeFetcher struct {
	client   *resty.Client
	endpoint string
	log      *logger.Logger
}

// EdgeOptions configures the edge connection
type EdgeOptions struct {
	URL        string
	Username   string
	Password   string
	Timeout    time.Duration
	RetryCount int
}

// NewEdgeClient creates the resty client used to talk to the edge
func NewEdgeClient(opts EdgeOptions) *resty.Client {
	client := resty.New()
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.RetryCount)
	client.SetRetryWaitTime(2 * time.Second)
	if opts.URL != "" {
		client.SetBaseURL(opts.URL)
	}
	if opts.Username != "" || opts.Password != "" {
		client.SetBasicAuth(opts.Username, opts.Password)
	}
	return client
}

// NewEdgeFetcher creates a new edge fetcher posting to <baseURL>/jsonrpc
func NewEdgeFetcher(client *resty.Client, baseURL string) *EdgeFetcher {
	return &EdgeFetcher{
		client:   client,
		endpoint: strings.TrimRight(baseURL, "/") + "/jsonrpc",
		log:      logger.Component("edge-fetcher"),
	}
}

// QueryHistoricData implements HistoricDataFetcher
func (f *EdgeFetcher) QueryHistoricData(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) (*models.HistoricData, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	loc := rng.From.Location()
	params := models.HistoricTimeseriesParams{
		FromDate: rng.From.Format("2006-01-02"),
		ToDate:   rng.To.In(loc).Format("2006-01-02"),
		Channels: channels.Addresses(),
		Timezone: loc.String(),
	}
	request := models.JSONRPCRequest{
		JSONRPC: models.JSONRPCVersion,
		ID:      uuid.NewString(),
		Method:  models.MethodQueryHistoricTimeseriesData,
		Params:  params,
	}

	f.log.Debug("Querying historic data", map[string]interface{}{
		"id":       request.ID,
		"from":     params.FromDate,
		"to":       params.ToDate,
		"channels": channels.Len(),
	})

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetBody(request).
		Post(f.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to query historic data: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("edge API returned status %d", resp.StatusCode())
	}

	var rpc models.JSONRPCResponse
	if err := json.Unmarshal(resp.Body(), &rpc); err != nil {
		return nil, fmt.Errorf("failed to parse edge response: %w", err)
	}
	if rpc.Error != nil {
		return nil, fmt.Errorf("edge rejected historic data query: %w", rpc.Error)
	}
	if rpc.ID != "" && rpc.ID != request.ID {
		return nil, fmt.Errorf("edge response id %s does not match request %s", rpc.ID, request.ID)
	}

	var result models.HistoricTimeseriesResult
	if err := json.Unmarshal(rpc.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to parse historic data result: %w", err)
	}

	all, err := result.Records(loc)
	if err != nil {
		return nil, err
	}
	// the edge answers whole days
	data := all.Within(rng)
	if len(data.Data) == 0 {
		return nil, ErrNoData
	}

	f.log.Debug("Historic data received", map[string]interface{}{
		"id":      request.ID,
		"records": len(data.Data),
		"dropped": len(all.Data) - len(data.Data),
		"size":    logger.HumanBytes(len(resp.Body())),
	})
	return data, nil
}
