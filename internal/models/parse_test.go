package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2024, 6, 21, 15, 0, 0, 0, time.UTC)
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	tests := []struct {
		name     string
		from, to string
		loc      *time.Location
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "defaults to today",
			loc:      time.UTC,
			wantFrom: time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 6, 21, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "date range is inclusive",
			from: "2024-06-01", to: "2024-06-03",
			loc:      time.UTC,
			wantFrom: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 6, 3, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "rfc3339",
			from: "2024-06-21T10:00:00Z", to: "2024-06-21T12:00:00Z",
			loc:      time.UTC,
			wantFrom: time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "dates in local time zone",
			from: "2024-06-21",
			loc:      berlin,
			wantFrom: time.Date(2024, 6, 21, 0, 0, 0, 0, berlin),
			wantTo:   time.Date(2024, 6, 21, 23, 59, 59, 0, berlin),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := ParseTimeRange(tt.from, tt.to, tt.loc, now)
			if err != nil {
				t.Fatalf("ParseTimeRange failed: %v", err)
			}
			if !rng.From.Equal(tt.wantFrom) || !rng.To.Equal(tt.wantTo) {
				t.Errorf("Got %s - %s, expected %s - %s", rng.From, rng.To, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestParseTimeRangeErrors(t *testing.T) {
	now := time.Date(2024, 6, 21, 15, 0, 0, 0, time.UTC)

	if _, err := ParseTimeRange("yesterday", "", time.UTC, now); err == nil {
		t.Error("Expected error for invalid date")
	}
	if _, err := ParseTimeRange("2024-06-22", "2024-06-21", time.UTC, now); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}
}

func TestParseChannelAddresses(t *testing.T) {
	channels, err := ParseChannelAddresses("meter0/ActivePower, ess0/Soc,,ess0/ActivePower")
	if err != nil {
		t.Fatalf("ParseChannelAddresses failed: %v", err)
	}
	if channels.Len() != 3 || !channels.Contains("ess0", "Soc") {
		t.Errorf("Unexpected channels %v", channels)
	}

	if _, err := ParseChannelAddresses("meter0"); err == nil {
		t.Error("Expected error for address without channel")
	}
}
