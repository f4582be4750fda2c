package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energychart/internal/metrics"
	"energychart/internal/models"
)

type memorySink struct {
	records []models.HistoricRecord
	err     error
}

func (s *memorySink) InsertRecord(ctx context.Context, rec models.HistoricRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
		thing   string
		channel string
		value   *float64
		wantErr bool
	}{
		{name: "number", topic: "edge/meter0/ActivePower", payload: "-512.5", thing: "meter0", channel: "ActivePower", value: ptr(-512.5)},
		{name: "whitespace", topic: "edge/ess0/Soc", payload: " 80\n", thing: "ess0", channel: "Soc", value: ptr(80)},
		{name: "null", topic: "edge/meter1/ActivePower", payload: "null", thing: "meter1", channel: "ActivePower"},
		{name: "empty payload", topic: "edge/meter1/ActivePower", payload: "", thing: "meter1", channel: "ActivePower"},
		{name: "other prefix", topic: "other/meter0/ActivePower", payload: "1", wantErr: true},
		{name: "missing channel", topic: "edge/meter0", payload: "1", wantErr: true},
		{name: "too deep", topic: "edge/meter0/a/b", payload: "1", wantErr: true},
		{name: "not a number", topic: "edge/meter0/ActivePower", payload: "on", wantErr: true},
		{name: "nan", topic: "edge/meter0/ActivePower", payload: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thing, channel, value, err := ParseMessage("edge", tt.topic, []byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.thing, thing)
			assert.Equal(t, tt.channel, channel)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestSnapshot(t *testing.T) {
	r := New(Options{TopicPrefix: "edge/"}, &memorySink{})
	now := time.Date(2024, 6, 21, 12, 0, 0, 500, time.UTC)

	_, ok := r.Snapshot(now)
	assert.False(t, ok)

	r.Handle("edge/meter0/ActivePower", []byte("100"))
	r.Handle("edge/meter0/ActivePower", []byte("150"))
	r.Handle("edge/meter1/ActivePower", []byte("null"))
	r.Handle("garbage", []byte("1"))

	rec, ok := r.Snapshot(now)
	require.True(t, ok)
	assert.True(t, rec.Time.Equal(now.Truncate(time.Second)))
	assert.Equal(t, 150.0, *rec.Value("meter0", "ActivePower"))
	assert.Nil(t, rec.Value("meter1", "ActivePower"))
	assert.Contains(t, rec.Channels["meter1"], "ActivePower")

	_, ok = r.Snapshot(now)
	assert.False(t, ok, "snapshot should reset the received values")
}

func TestFlush(t *testing.T) {
	sink := &memorySink{}
	r := New(Options{}, sink)
	ctx := context.Background()
	now := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, r.Flush(ctx, now), ErrEmptySnapshot)

	before := testutil.ToFloat64(metrics.RecordedSnapshots.WithLabelValues("success"))
	r.Handle("edge/meter0/ActivePower", []byte("42"))
	require.NoError(t, r.Flush(ctx, now))
	require.Len(t, sink.records, 1)
	assert.Equal(t, 42.0, *sink.records[0].Value("meter0", "ActivePower"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RecordedSnapshots.WithLabelValues("success")))

	sink.err = errors.New("disk full")
	r.Handle("edge/meter0/ActivePower", []byte("43"))
	err := r.Flush(ctx, now)
	assert.ErrorIs(t, err, sink.err)
}

func ptr(v float64) *float64 { return &v }
