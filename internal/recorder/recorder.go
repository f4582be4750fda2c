// Package recorder subscribes to live edge telemetry over MQTT and writes
// periodic snapshots to the history store.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"energychart/internal/logger"
	"energychart/internal/metrics"
	"energychart/internal/models"
)

// ErrEmptySnapshot is returned by Flush when nothing was received since the last snapshot
var ErrEmptySnapshot = errors.New("no telemetry received")

// Sink receives snapshot records
type Sink interface {
	InsertRecord(ctx context.Context, rec models.HistoricRecord) error
}

// Options configures the MQTT connection
type Options struct {
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
	Interval    time.Duration
}

// Recorder keeps the latest value of every channel seen on the broker
type Recorder struct {
	opts Options
	sink Sink
	log  *logger.Logger

	mu     sync.Mutex
	latest map[string]map[string]*float64
}

// New creates a recorder writing to sink
func New(opts Options, sink Sink) *Recorder {
	if opts.TopicPrefix == "" {
		opts.TopicPrefix = "edge"
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	return &Recorder{
		opts:   opts,
		sink:   sink,
		log:    logger.Component("recorder"),
		latest: make(map[string]map[string]*float64),
	}
}

// ParseMessage extracts thing, channel and value from a telemetry message.
// The topic is <prefix>/<thing>/<channel> and the payload a number or null.
func ParseMessage(prefix, topic string, payload []byte) (thing, channel string, value *float64, err error) {
	rest, ok := strings.CutPrefix(topic, strings.TrimSuffix(prefix, "/")+"/")
	if !ok {
		return "", "", nil, fmt.Errorf("topic %q outside prefix %q", topic, prefix)
	}
	thing, channel, ok = strings.Cut(rest, "/")
	if !ok || thing == "" || channel == "" || strings.Contains(channel, "/") {
		return "", "", nil, fmt.Errorf("invalid telemetry topic %q", topic)
	}

	text := strings.TrimSpace(string(payload))
	if text == "" || text == "null" {
		return thing, channel, nil, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", "", nil, fmt.Errorf("invalid payload %q on %s", text, topic)
	}
	return thing, channel, &v, nil
}

// Handle records one message. Invalid messages are logged and dropped.
func (r *Recorder) Handle(topic string, payload []byte) {
	thing, channel, value, err := ParseMessage(r.opts.TopicPrefix, topic, payload)
	if err != nil {
		r.log.Debug("Dropping telemetry message", map[string]interface{}{"topic": topic, "error": err.Error()})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest[thing] == nil {
		r.latest[thing] = make(map[string]*float64)
	}
	r.latest[thing][channel] = value
}

// Snapshot returns a record with the values received since the previous
// snapshot and resets them. ok is false when nothing was received.
func (r *Recorder) Snapshot(now time.Time) (rec models.HistoricRecord, ok bool) {
	r.mu.Lock()
	latest := r.latest
	r.latest = make(map[string]map[string]*float64)
	r.mu.Unlock()

	rec.Time = now.Truncate(time.Second)
	for thing, channels := range latest {
		for channel, value := range channels {
			rec.Set(thing, channel, value)
		}
	}
	return rec, len(rec.Channels) > 0
}

// Flush writes the current snapshot to the sink
func (r *Recorder) Flush(ctx context.Context, now time.Time) error {
	rec, ok := r.Snapshot(now)
	if !ok {
		metrics.RecordedSnapshots.WithLabelValues("empty").Inc()
		return ErrEmptySnapshot
	}
	if err := r.sink.InsertRecord(ctx, rec); err != nil {
		metrics.RecordedSnapshots.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	metrics.RecordedSnapshots.WithLabelValues("success").Inc()
	return nil
}

// Run connects to the broker and records until ctx is cancelled
func (r *Recorder) Run(ctx context.Context) error {
	client := mqtt.NewClient(r.clientOptions())
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	defer client.Disconnect(250)

	topic := strings.TrimSuffix(r.opts.TopicPrefix, "/") + "/+/+"
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		r.Handle(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}
	r.log.Info("Recording telemetry", map[string]interface{}{
		"broker":   r.opts.Broker,
		"topic":    topic,
		"interval": r.opts.Interval.String(),
	})

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Recorder stopped", nil)
			return nil
		case now := <-ticker.C:
			err := r.Flush(ctx, now)
			switch {
			case errors.Is(err, ErrEmptySnapshot):
				r.log.Debug("No telemetry since last snapshot", nil)
			case err != nil:
				r.log.Error("Failed to record snapshot", err, nil)
			}
		}
	}
}

func (r *Recorder) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(r.opts.Broker)
	opts.SetClientID(r.opts.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	if r.opts.Username != "" {
		opts.SetUsername(r.opts.Username)
	}
	if r.opts.Password != "" {
		opts.SetPassword(r.opts.Password)
	}
	return opts
}
