package core

import (
	"maps"
	"strconv"
	"strings"
	"time"
)

// CloneMap returns a shallow copy of m. Nil input returns nil.
func CloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	maps.Copy(out, m)
	return out
}

// ToStringMap converts supported map forms into map[string]string.
// Unsupported inputs return nil.
func ToStringMap(v any) map[string]string {
	if v == nil {
		return nil
	}
	out := map[string]string{}
	switch m := v.(type) {
	case map[string]string:
		return CloneMap(m)
	case map[string]any:
		for k, vv := range m {
			if s, ok := vv.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

// AsString renders scalar values as strings. Non-scalars return "".
func AsString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ParseAnyInt parses an integer from common JSON decodings.
func ParseAnyInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ParseAnyTime parses an instant from the forms external systems emit:
// RFC3339 strings (Zephyr) and millisecond epoch numbers (qTest).
// Returned times are in UTC.
func ParseAnyTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		return time.Time{}, false
	case int64:
		return time.UnixMilli(t).UTC(), true
	case int:
		return time.UnixMilli(int64(t)).UTC(), true
	case float64:
		return time.UnixMilli(int64(t)).UTC(), true
	default:
		return time.Time{}, false
	}
}
