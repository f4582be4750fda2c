package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"energychart/internal/models"
	"energychart/internal/utils"
)

// HistoricDataFile is the fixture replayed for every day of a query
const HistoricDataFile = "historic_data.json"

// MockService replays recorded edge data instead of talking to an edge
type MockService struct {
	mocksDir string
}

// NewMockService creates a new mock service
func NewMockService(mocksDir string) *MockService {
	return &MockService{
		mocksDir: filepath.Join(mocksDir, "data"),
	}
}

// LoadDayProfile loads the recorded day. When no fixture exists a
// synthetic sunny day is returned.
func (m *MockService) LoadDayProfile() (*models.HistoricData, error) {
	var result models.HistoricTimeseriesResult
	found, err := m.loadTypedJSONFile(HistoricDataFile, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to load mock historic data: %w", err)
	}
	if !found {
		day := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
		return SyntheticDay(day, 15*time.Minute), nil
	}
	data, err := result.Records(time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mock historic data: %w", err)
	}
	return data, nil
}

// QueryHistoricData replays the day profile onto every day of rng, keeping
// only records inside rng and the requested channels
func (m *MockService) QueryHistoricData(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) (*models.HistoricData, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profile, err := m.LoadDayProfile()
	if err != nil {
		return nil, err
	}
	if len(profile.Data) == 0 {
		return nil, models.ErrNoData
	}

	return Replay(profile, rng, channels), nil
}

// Replay shifts the records of a single day onto each day of rng
func Replay(profile *models.HistoricData, rng models.TimeRange, channels models.ChannelAddresses) *models.HistoricData {
	first := profile.Data[0].Time
	origin := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())

	loc := rng.From.Location()
	out := &models.HistoricData{}
	for day := time.Date(rng.From.Year(), rng.From.Month(), rng.From.Day(), 0, 0, 0, 0, loc); !day.After(rng.To); day = day.AddDate(0, 0, 1) {
		for _, record := range profile.Data {
			ts := day.Add(record.Time.Sub(origin))
			if ts.Before(rng.From) || ts.After(rng.To) {
				continue
			}
			out.Data = append(out.Data, selectChannels(record, ts, channels))
		}
	}
	sort.SliceStable(out.Data, func(i, j int) bool { return out.Data[i].Time.Before(out.Data[j].Time) })
	return out
}

func selectChannels(record models.HistoricRecord, ts time.Time, channels models.ChannelAddresses) models.HistoricRecord {
	out := models.HistoricRecord{Time: ts}
	for thing, chs := range record.Channels {
		for channel, v := range chs {
			if len(channels) > 0 && !channels.Contains(thing, channel) {
				continue
			}
			if v != nil {
				val := *v
				v = &val
			}
			out.Set(thing, channel, v)
		}
	}
	return out
}

// SyntheticDay builds a day of records for the default edge roles: a
// sine shaped production peak at noon, a flat base load and a battery
// that charges around noon.
func SyntheticDay(day time.Time, step time.Duration) *models.HistoricData {
	cfg := models.DefaultEdgeConfig()
	data := &models.HistoricData{}
	for ts := day; ts.Before(day.Add(24 * time.Hour)); ts = ts.Add(step) {
		hour := ts.Sub(day).Hours()

		production := 0.0
		if hour > 6 && hour < 20 {
			production = 5000 * math.Sin(math.Pi*(hour-6)/14)
		}
		consumption := 600 + 400*math.Max(0, math.Sin(math.Pi*(hour-17)/5))
		storage := 0.0
		if hour > 10 && hour < 14 {
			storage = -1500
		}
		grid := consumption - production - storage

		record := models.HistoricRecord{Time: ts}
		record.Set(cfg.ProductionMeters[0], models.ChannelActivePower, utils.Float(math.Round(production)))
		record.Set(cfg.GridMeters[0], models.ChannelActivePower, utils.Float(math.Round(grid)))
		record.Set(cfg.Storage[0], models.ChannelActivePower, utils.Float(storage))
		record.Set(cfg.Storage[0], models.ChannelSoc, utils.Float(math.Round(40+hour)))
		data.Data = append(data.Data, record)
	}
	return data
}

// loadTypedJSONFile decodes a fixture into v. It reports false when the
// file does not exist.
func (m *MockService) loadTypedJSONFile(filename string, v interface{}) (bool, error) {
	filePath := filepath.Join(m.mocksDir, filename)
	content, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return true, nil
}
