package utils

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// TimestampMillis normalizes the timestamp encodings found in stored
// documents to epoch milliseconds. Supported: time.Time, values with a
// ToMillis, UnixMilli or Time accessor (driver timestamp types), {seconds}
// and {_seconds} maps, numeric epoch milliseconds and date strings.
func TimestampMillis(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return 0, false
		}
		return t.UnixMilli(), true
	case interface{ ToMillis() int64 }:
		return t.ToMillis(), true
	case interface{ UnixMilli() int64 }:
		return t.UnixMilli(), true
	case interface{ Time() time.Time }:
		return TimestampMillis(t.Time())
	case map[string]interface{}:
		return secondsMapMillis(t)
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		return parseDateMillis(t)
	}
	return 0, false
}

// TimeValue is TimestampMillis returning a time.Time.
func TimeValue(v interface{}) (time.Time, bool) {
	ms, ok := TimestampMillis(v)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func secondsMapMillis(m map[string]interface{}) (int64, bool) {
	secRaw, ok := m["seconds"]
	if !ok {
		secRaw, ok = m["_seconds"]
	}
	if !ok {
		return 0, false
	}
	sec, ok := ToFloat(secRaw)
	if !ok {
		return 0, false
	}
	nanosRaw, ok := m["nanoseconds"]
	if !ok {
		nanosRaw = m["_nanoseconds"]
	}
	nanos, _ := ToFloat(nanosRaw)
	return int64(sec)*1000 + int64(nanos)/int64(time.Millisecond), true
}

func parseDateMillis(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
