package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoData is returned when a query matched no records
var ErrNoData = errors.New("no data")

// JSON-RPC method names of the edge
const (
	MethodQueryHistoricTimeseriesData = "queryHistoricTimeseriesData"
	JSONRPCVersion                    = "2.0"
)

// JSONRPCRequest is a JSON-RPC 2.0 request envelope
type JSONRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// JSONRPCError is the error member of a failed JSON-RPC response
type JSONRPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements error
func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

// JSONRPCResponse is a JSON-RPC 2.0 response envelope
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// HistoricTimeseriesParams are the parameters of queryHistoricTimeseriesData.
// Dates are calendar days in Timezone, both inclusive.
type HistoricTimeseriesParams struct {
	FromDate string   `json:"fromDate"`
	ToDate   string   `json:"toDate"`
	Channels []string `json:"channels"`
	Timezone string   `json:"timezone"`
}

// HistoricTimeseriesResult is the result of queryHistoricTimeseriesData.
// Data holds one value per timestamp for every "thing/channel" address.
type HistoricTimeseriesResult struct {
	Timestamps []string              `json:"timestamps"`
	Data       map[string][]*float64 `json:"data"`
}

// Records turns the column-oriented result into records in timestamp order.
// Every channel column must match the timestamp count.
func (result HistoricTimeseriesResult) Records(loc *time.Location) (*HistoricData, error) {
	if len(result.Timestamps) == 0 {
		return nil, ErrNoData
	}
	if loc == nil {
		loc = time.UTC
	}

	records := make([]HistoricRecord, len(result.Timestamps))
	for i, ts := range result.Timestamps {
		t, err := parseTimestamp(ts, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
		}
		records[i] = HistoricRecord{Time: t, Channels: make(map[string]map[string]*float64)}
	}

	for address, values := range result.Data {
		thing, channel, ok := strings.Cut(address, "/")
		if !ok || thing == "" || channel == "" {
			return nil, fmt.Errorf("invalid channel address %q", address)
		}
		if len(values) != len(records) {
			return nil, fmt.Errorf("channel %s has %d values for %d timestamps", address, len(values), len(records))
		}
		for i, v := range values {
			records[i].Set(thing, channel, v)
		}
	}

	return &HistoricData{Data: records}, nil
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, loc)
}
