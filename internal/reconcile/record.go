package reconcile

import (
	"strconv"
	"strings"
	"time"
)

// Record is a booking exactly as the backend or local storage delivered
// it. Its shape drifts between backend versions; read it through
// ResolveField and Normalize rather than by key.
type Record map[string]any

// idKeys is the identifier lookup order.
var idKeys = []string{"_id", "id", "bookingId"}

// ID returns the record's identifier, or "" when it has none.
func ID(rec Record) string {
	for _, key := range idKeys {
		if s := scalarString(rec[key]); s != "" {
			return s
		}
	}
	return ""
}

// Clone returns a shallow copy of rec.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CreatedAt parses the record's createdAt as RFC 3339 or Unix
// milliseconds.
func CreatedAt(rec Record) (time.Time, bool) {
	switch v := rec["createdAt"].(type) {
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case int:
		return time.UnixMilli(int64(v)).UTC(), true
	case time.Time:
		return v, true
	}
	return time.Time{}, false
}

// scalarString renders strings and JSON numbers; anything else is "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// truthy follows the backend's loose notion of "set": zero numbers, empty
// strings, false and nil are unset, any object or list is set.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// asMap returns v as a map when it is a JSON object.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Record:
		return t, true
	}
	return nil, false
}
