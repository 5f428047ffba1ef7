package domain

import "time"

// Timestamps persist in the upstream API wire format, ISO-8601 UTC with
// a trailing Z.
const TimeLayout = time.RFC3339

// ParseTime parses a persisted timestamp. Malformed or empty values are
// treated as absent, never as an error.
func ParseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// FormatTime renders an optional timestamp for persistence; absent
// values become the empty string.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}
