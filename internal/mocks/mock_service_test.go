package mocks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"energychart/internal/models"
)

const fixture = `{
  "timestamps": ["2024-01-10T00:00:00Z", "2024-01-10T12:00:00Z", "2024-01-10T18:00:00Z"],
  "data": {
    "meter0/ActivePower": [100, -2000, null],
    "meter1/ActivePower": [0, 3000, 200]
  }
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data", HistoricDataFile), []byte(fixture), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestQueryHistoricDataReplaysFixture(t *testing.T) {
	m := NewMockService(writeFixture(t))

	rng := models.TimeRange{
		From: time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 5, 2, 13, 0, 0, 0, time.UTC),
	}
	data, err := m.QueryHistoricData(context.Background(), rng, nil)
	if err != nil {
		t.Fatalf("QueryHistoricData failed: %v", err)
	}

	expected := []time.Time{
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	if len(data.Data) != len(expected) {
		t.Fatalf("Expected %d records, got %d", len(expected), len(data.Data))
	}
	for i, ts := range expected {
		if !data.Data[i].Time.Equal(ts) {
			t.Errorf("Record %d at %s, expected %s", i, data.Data[i].Time, ts)
		}
	}
	if v := data.Data[0].Value("meter0", "ActivePower"); v == nil || *v != -2000 {
		t.Errorf("Unexpected grid value %v", v)
	}
	if v := data.Data[1].Value("meter0", "ActivePower"); v != nil {
		t.Errorf("Expected gap, got %v", *v)
	}
}

func TestQueryHistoricDataFiltersChannels(t *testing.T) {
	m := NewMockService(writeFixture(t))
	rng := models.TimeRange{
		From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC),
	}
	channels := models.ChannelAddresses{"meter1": {"ActivePower"}}

	data, err := m.QueryHistoricData(context.Background(), rng, channels)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range data.Data {
		if _, ok := r.Channels["meter0"]; ok {
			t.Error("meter0 should have been filtered out")
		}
	}
}

func TestQueryHistoricDataInvalidRange(t *testing.T) {
	m := NewMockService(t.TempDir())
	now := time.Now()
	if _, err := m.QueryHistoricData(context.Background(), models.TimeRange{From: now, To: now.Add(-time.Hour)}, nil); err == nil {
		t.Error("Expected error for inverted range")
	}
}

func TestSyntheticFallback(t *testing.T) {
	m := NewMockService(t.TempDir())

	profile, err := m.LoadDayProfile()
	if err != nil {
		t.Fatal(err)
	}
	if len(profile.Data) != 96 {
		t.Errorf("Expected 96 quarter hours, got %d", len(profile.Data))
	}

	noon := profile.Data[48]
	production := noon.Value("meter1", "ActivePower")
	grid := noon.Value("meter0", "ActivePower")
	if production == nil || *production < 4000 {
		t.Errorf("Expected noon production peak, got %v", production)
	}
	if grid == nil || *grid >= 0 {
		t.Errorf("Expected export at noon, got %v", grid)
	}
}

func TestCorruptFixture(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "data"), 0755)
	os.WriteFile(filepath.Join(dir, "data", HistoricDataFile), []byte("{"), 0644)

	if _, err := NewMockService(dir).LoadDayProfile(); err == nil {
		t.Error("Expected error for corrupt fixture")
	}
}
