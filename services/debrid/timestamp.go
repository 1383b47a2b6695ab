package debrid

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// epochMillisThreshold separates millisecond from second epoch values.
const epochMillisThreshold = 1e12

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp normalises an upstream timestamp. Numbers above 1e12 are
// epoch milliseconds, other numbers epoch seconds, strings ISO-8601.
// Absent or unparsable values yield nil.
func ParseTimestamp(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		t := v.UTC()
		return &t
	case *time.Time:
		if v == nil {
			return nil
		}
		t := v.UTC()
		return &t
	case json.RawMessage:
		return parseRawTimestamp(v)
	case string:
		return parseISOTimestamp(v)
	}

	n, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	var t time.Time
	if n > epochMillisThreshold {
		t = time.UnixMilli(int64(n)).UTC()
	} else {
		sec, frac := math.Modf(n)
		t = time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
	}
	return &t
}

func parseRawTimestamp(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	return ParseTimestamp(decoded)
}

func parseISOTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
