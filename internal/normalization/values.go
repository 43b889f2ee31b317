// Package normalization turns raw, heterogeneously-shaped upstream payloads
// into typed position records. All shape and field-alias handling lives
// here; the aggregation core never touches raw maps.
package normalization

import (
	"math"
	"strconv"
	"strings"
)

// millisThreshold separates second-precision from millisecond-precision
// timestamps. Values strictly above it are treated as milliseconds.
const millisThreshold = 10_000_000_000

// toFloat converts a raw JSON value to float64. Returns false for nil,
// non-numeric strings, non-finite values and unsupported types. ParseFloat
// accepts "NaN" and "Inf", which must never enter monetary sums.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeTimestamp converts a timestamp-like raw value to epoch seconds.
// Millisecond inputs (> 10,000,000,000) are integer-divided by 1000.
// Returns false when the value cannot be interpreted as an integer; such
// events are excluded from all window aggregates downstream.
func NormalizeTimestamp(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	ts := int64(f)
	if ts > millisThreshold {
		ts /= 1000
	}
	return ts, true
}

// asString renders a raw JSON value as a display string. Integral JSON
// numbers (decoded as float64) keep their integer form, matching upstream
// position ids.
func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int:
		return strconv.Itoa(x), true
	default:
		return "", false
	}
}

// lower trims and lowercases a raw string-ish value.
func lower(v any) string {
	s, _ := asString(v)
	return strings.ToLower(strings.TrimSpace(s))
}

// firstFloat returns the first parseable value among the named keys of m.
func firstFloat(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			if f, ok := toFloat(raw); ok {
				return &f
			}
		}
	}
	return nil
}
