package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted for range bounds
const DateLayout = "2006-01-02"

// ParseTime accepts YYYY-MM-DD or RFC3339. A bare date resolves to the start
// of the day, or to its last second when endOfDay is set.
func ParseTime(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		if endOfDay {
			return t.AddDate(0, 0, 1).Add(-time.Second), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected YYYY-MM-DD or RFC3339", value)
	}
	return t.In(loc), nil
}

// ParseTimeRange reads from/to bounds. A missing from is the current day,
// a missing to is the end of the from day.
func ParseTimeRange(from, to string, loc *time.Location, now time.Time) (TimeRange, error) {
	today := now.In(loc).Format(DateLayout)
	if from == "" {
		from = today
	}
	if to == "" {
		to = from
		if _, err := time.Parse(DateLayout, from); err != nil {
			to = today
		}
	}

	var rng TimeRange
	var err error
	if rng.From, err = ParseTime(from, loc, false); err != nil {
		return rng, err
	}
	if rng.To, err = ParseTime(to, loc, true); err != nil {
		return rng, err
	}
	return rng, rng.Validate()
}

// ParseChannelAddresses reads a comma separated list of thing/Channel addresses
func ParseChannelAddresses(value string) (ChannelAddresses, error) {
	channels := make(ChannelAddresses)
	for _, addr := range strings.Split(value, ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		thing, channel, ok := strings.Cut(addr, "/")
		if !ok || thing == "" || channel == "" {
			return nil, fmt.Errorf("invalid channel address %q", addr)
		}
		channels.Add(thing, channel)
	}
	return channels, nil
}
