// File: /models/fields.go
package models

import "time"

// Field accessors tolerant of both native values (memory store) and
// JSON round-tripped values (SQL-backed store), so callers never see
// the difference between adapters.

func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func optionalStringField(fields map[string]interface{}, key string) *string {
	switch v := fields[key].(type) {
	case string:
		return &v
	case *string:
		return v
	}
	return nil
}

func timeField(fields map[string]interface{}, key string) *time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
	}
	return nil
}

func stringSliceField(fields map[string]interface{}, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
