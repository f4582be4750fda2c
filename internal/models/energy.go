package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidRange is returned when a time range ends before it starts
var ErrInvalidRange = errors.New("invalid time range")

// NoDataLabel is the series label of the canonical empty dataset
const NoDataLabel = "no data"

// TimeRange is the query boundary of a chart
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Validate checks that From is not after To
func (r TimeRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidRange)
	}
	if r.From.After(r.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange,
			r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	}
	return nil
}

// Duration returns the length of the range
func (r TimeRange) Duration() time.Duration {
	return r.To.Sub(r.From)
}

// ChannelAddresses maps a thing id to the channel ids requested from it
type ChannelAddresses map[string][]string

// Add appends channels to a thing, skipping ones already present
func (c ChannelAddresses) Add(thing string, channels ...string) {
	for _, ch := range channels {
		if !c.Contains(thing, ch) {
			c[thing] = append(c[thing], ch)
		}
	}
}

// Contains reports whether thing/channel is part of the selection
func (c ChannelAddresses) Contains(thing, channel string) bool {
	for _, ch := range c[thing] {
		if ch == channel {
			return true
		}
	}
	return false
}

// Merge returns a new selection holding the channels of both
func (c ChannelAddresses) Merge(other ChannelAddresses) ChannelAddresses {
	out := make(ChannelAddresses, len(c)+len(other))
	for thing, chs := range c {
		out.Add(thing, chs...)
	}
	for thing, chs := range other {
		out.Add(thing, chs...)
	}
	return out
}

// Len returns the total number of channels
func (c ChannelAddresses) Len() int {
	n := 0
	for _, chs := range c {
		n += len(chs)
	}
	return n
}

// Addresses returns "thing/channel" strings in sorted order
func (c ChannelAddresses) Addresses() []string {
	out := make([]string, 0, c.Len())
	for thing, chs := range c {
		for _, ch := range chs {
			out = append(out, thing+"/"+ch)
		}
	}
	sort.Strings(out)
	return out
}

// HistoricRecord is one timestamped snapshot of channel values.
// A nil value means the channel was not recorded at that time.
type HistoricRecord struct {
	Time     time.Time                      `json:"time"`
	Channels map[string]map[string]*float64 `json:"channels"`
}

// Value returns the value of thing/channel, or nil when absent
func (r HistoricRecord) Value(thing, channel string) *float64 {
	chs, ok := r.Channels[thing]
	if !ok {
		return nil
	}
	return chs[channel]
}

// Set stores a channel value on the record
func (r *HistoricRecord) Set(thing, channel string, value *float64) {
	if r.Channels == nil {
		r.Channels = make(map[string]map[string]*float64)
	}
	if r.Channels[thing] == nil {
		r.Channels[thing] = make(map[string]*float64)
	}
	r.Channels[thing][channel] = value
}

// HistoricData is the result of a historic data query, in time order
type HistoricData struct {
	Data []HistoricRecord `json:"data"`
}

// Within keeps the records whose time falls inside rng, bounds included
func (d *HistoricData) Within(rng TimeRange) *HistoricData {
	kept := make([]HistoricRecord, 0, len(d.Data))
	for _, r := range d.Data {
		if r.Time.Before(rng.From) || r.Time.After(rng.To) {
			continue
		}
		kept = append(kept, r)
	}
	return &HistoricData{Data: kept}
}

// Dataset is one named chart series. Nil entries are gaps.
type Dataset struct {
	Label string     `json:"label"`
	Data  []*float64 `json:"data"`
}

// EmptyDataset returns the canonical dataset shown when no data is available
func EmptyDataset() []Dataset {
	return []Dataset{{Label: NoDataLabel, Data: []*float64{}}}
}

// IsEmptyDataset reports whether datasets is the canonical empty dataset
func IsEmptyDataset(datasets []Dataset) bool {
	return len(datasets) == 1 && datasets[0].Label == NoDataLabel && len(datasets[0].Data) == 0
}

// ViewState is what a chart publishes to its renderers
type ViewState struct {
	Labels     []time.Time `json:"labels"`
	Datasets   []Dataset   `json:"datasets"`
	Loading    bool        `json:"loading"`
	Range      TimeRange   `json:"range"`
	Generation uint64      `json:"generation"`
}

// Clone returns a deep copy of the state
func (s ViewState) Clone() ViewState {
	out := s
	out.Labels = append([]time.Time(nil), s.Labels...)
	if out.Labels == nil {
		out.Labels = []time.Time{}
	}
	out.Datasets = make([]Dataset, len(s.Datasets))
	for i, ds := range s.Datasets {
		data := make([]*float64, len(ds.Data))
		for j, v := range ds.Data {
			if v != nil {
				val := *v
				data[j] = &val
			}
		}
		out.Datasets[i] = Dataset{Label: ds.Label, Data: data}
	}
	return out
}

// Consistent reports whether every series is aligned with the labels
func (s ViewState) Consistent() bool {
	for _, ds := range s.Datasets {
		if len(ds.Data) != len(s.Labels) {
			return false
		}
	}
	return true
}
