// Package fieldconv holds pure field coercion helpers used when merging
// freshly fetched provider data into existing store records.
package fieldconv

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CoordinatePrecision is the decimal precision ceiling the store accepts for
// coordinate fields. Enforced on every write path.
const CoordinatePrecision = 8

// Round rounds v to the given number of decimal places via
// multiply-round-divide. Negative precision leaves v untouched.
func Round(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}

// Numeric coerces a numeric field value: incoming wins when it parses to a
// finite number, existing is the fallback, and ok is false when neither
// parses. precision >= 0 rounds the result. A warning is logged when both
// inputs were non-empty but neither parsed.
func Numeric(incoming, existing any, precision int) (float64, bool) {
	if v, ok := parseFinite(incoming); ok {
		return Round(v, precision), true
	}
	if v, ok := parseFinite(existing); ok {
		return Round(v, precision), true
	}
	if !isEmpty(incoming) && !isEmpty(existing) {
		zap.L().Warn("fieldconv: numeric coercion failed for both values",
			zap.Any("incoming", incoming),
			zap.Any("existing", existing),
		)
	}
	return 0, false
}

// parseFinite extracts a finite float64 from the usual JSON value shapes.
func parseFinite(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
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

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Granularity is the timestamp precision a record's last-enriched column
// already carries.
type Granularity int

const (
	GranularityDate Granularity = iota
	GranularityDateTime
)

// Format renders t at the granularity.
func (g Granularity) Format(t time.Time) string {
	if g == GranularityDateTime {
		return t.UTC().Format(time.RFC3339)
	}
	return t.UTC().Format("2006-01-02")
}

// TimestampGranularity decides the stamp precision for a write. A record
// with no existing value gets date-only; an existing value that already
// carries a time component is re-stamped with full date-time; an existing
// date-only value stays date-only. Keeps an unrelated write from silently
// upgrading the column's granularity expectation.
func TimestampGranularity(existing string) Granularity {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return GranularityDate
	}
	if strings.ContainsAny(existing, "T ") && strings.Contains(existing, ":") {
		return GranularityDateTime
	}
	return GranularityDate
}

// MatchOption case-insensitively matches desired against the operator-
// configured option labels. Returns ok=false on no match, never a guess;
// the valid options are logged so a misconfiguration is visible.
func MatchOption(desired string, options []string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(desired)) {
			return opt, true
		}
	}
	zap.L().Debug("fieldconv: no configured option matches",
		zap.String("desired", desired),
		zap.Strings("options", options),
	)
	return "", false
}
