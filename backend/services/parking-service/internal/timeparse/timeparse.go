// Package timeparse converts the timestamp representations found in stored
// documents into time.Time. Records written by older clients hold epoch
// seconds, {seconds, nanoseconds} wrapper objects, or ISO strings; newer
// records hold native timestamps.
package timeparse

import (
	"encoding/json"
	"strconv"
	"time"
)

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Instant converts a decoded document value into a UTC time. The second
// return value is false when no representation matched; callers treat such
// values as epoch 0 for ordering.
func Instant(raw interface{}) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v.UTC(), true
	case float64:
		return fromEpochSeconds(v), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpochSeconds(f), true
	case string:
		return fromString(v)
	case map[string]interface{}:
		return fromWrapper(v)
	default:
		return time.Time{}, false
	}
}

// InstantOrZero is Instant with the match flag dropped.
func InstantOrZero(raw interface{}) time.Time {
	t, _ := Instant(raw)
	return t
}

func fromEpochSeconds(seconds float64) time.Time {
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

func fromString(s string) (time.Time, bool) {
	for _, layout := range stringLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	// Bare epoch seconds written as a string.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpochSeconds(f), true
	}
	return time.Time{}, false
}

// fromWrapper handles the {seconds, nanoseconds} shape the oldest writer
// used for timestamps.
func fromWrapper(m map[string]interface{}) (time.Time, bool) {
	rawSec, ok := m["seconds"]
	if !ok {
		return time.Time{}, false
	}
	sec, ok := asInt64(rawSec)
	if !ok {
		return time.Time{}, false
	}
	var nsec int64
	for _, key := range []string{"nanoseconds", "nanos"} {
		if rawNs, ok := m[key]; ok {
			if n, ok := asInt64(rawNs); ok {
				nsec = n
			}
			break
		}
	}
	return time.Unix(sec, nsec).UTC(), true
}

func asInt64(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
