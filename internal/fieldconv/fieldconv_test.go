package fieldconv

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeric(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		incoming  any
		existing  any
		precision int
		want      float64
		ok        bool
	}{
		{"incoming float wins", 4.5, 3.0, -1, 4.5, true},
		{"incoming string parses", "42.5", nil, -1, 42.5, true},
		{"falls back to existing", "not a number", 3.0, -1, 3.0, true},
		{"falls back to existing string", nil, "12", -1, 12, true},
		{"neither parses", "abc", "def", -1, 0, false},
		{"both empty", nil, "", -1, 0, false},
		{"rounding applied", -0.12345678912, nil, 8, -0.12345679, true},
		{"rounding on fallback", nil, 1.23456789123, 8, 1.23456789, true},
		{"json number", json.Number("2.75"), nil, -1, 2.75, true},
		{"int incoming", 4, nil, -1, 4, true},
		{"nan rejected", math.NaN(), 1.0, -1, 1.0, true},
		{"inf rejected", math.Inf(1), nil, -1, 0, false},
		{"whitespace string empty", "  ", nil, -1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Numeric(tt.incoming, tt.existing, tt.precision)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestNumericRoundingIdempotent(t *testing.T) {
	t.Parallel()
	// Rounding an already-rounded value is a fixed point.
	for _, v := range []float64{-0.12345678912, 51.50000000049, 0.000000005, 179.99999999999} {
		once, ok := Numeric(v, nil, CoordinatePrecision)
		require.True(t, ok)
		twice, ok := Numeric(once, nil, CoordinatePrecision)
		require.True(t, ok)
		assert.Equal(t, once, twice)
	}
}

func TestRound(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, -0.12345679, Round(-0.12345678912, 8), 1e-12)
	assert.InDelta(t, 1.5, Round(1.5, -1), 1e-12)
	assert.InDelta(t, 2.0, Round(1.999999999, 2), 1e-12)
}

func TestTimestampGranularity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		existing string
		want     Granularity
	}{
		{"new record gets date", "", GranularityDate},
		{"whitespace is new", "  ", GranularityDate},
		{"date only stays date", "2026-08-30", GranularityDate},
		{"rfc3339 stays datetime", "2026-08-30T10:15:00Z", GranularityDateTime},
		{"space-separated datetime", "2026-08-30 10:15:00", GranularityDateTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TimestampGranularity(tt.existing))
		})
	}
}

func TestGranularityFormat(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-30", GranularityDate.Format(ts))
	assert.Equal(t, "2026-08-30T10:15:00Z", GranularityDateTime.Format(ts))
}

func TestMatchOption(t *testing.T) {
	t.Parallel()
	options := []string{"Pending", "Enriched", "Not Found"}

	got, ok := MatchOption("pending", options)
	require.True(t, ok)
	assert.Equal(t, "Pending", got)

	got, ok = MatchOption("NOT FOUND", options)
	require.True(t, ok)
	assert.Equal(t, "Not Found", got)

	_, ok = MatchOption("error", options)
	assert.False(t, ok)

	_, ok = MatchOption("pending", nil)
	assert.False(t, ok)
}
