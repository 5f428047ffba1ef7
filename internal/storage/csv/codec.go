package csv

import (
	"fmt"
	"strconv"
	"strings"

	"prtrack/internal/domain"
)

// parseOptionalBool accepts the boolean spellings the original data set
// accumulated over time. Empty-ish values mean "absent". Anything else
// is a value error: guessing would silently corrupt the turn cache.
func parseOptionalBool(raw string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "null":
		return nil, nil
	case "1", "true", "t", "yes", "y":
		v := true
		return &v, nil
	case "0", "false", "f", "no", "n":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrBadBoolean, raw)
	}
}

func formatOptionalBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
