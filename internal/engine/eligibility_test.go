package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablescout/enrich-cli/internal/status"
)

func TestEligibilityFormula(t *testing.T) {
	t.Parallel()
	resolver := status.NewResolver(nil)

	f := string(eligibilityFormula(resolver, false, false))

	// Status gate: pending, error, enriched, blank. Never not_found.
	assert.Contains(t, f, "{Status} = ''")
	assert.Contains(t, f, "LOWER({Status}) = 'pending'")
	assert.Contains(t, f, "LOWER({Status}) = 'error'")
	assert.Contains(t, f, "LOWER({Status}) = 'enriched'")
	assert.NotContains(t, f, "not_found")

	// Missing-field gate.
	assert.Contains(t, f, "{Place ID} = ''")
	assert.Contains(t, f, "{Photo URL} = ''")
	assert.NotContains(t, f, "{Description} = ''")
	assert.NotContains(t, f, "TRUE()")
}

func TestEligibilityFormulaWithDescriptions(t *testing.T) {
	t.Parallel()
	f := string(eligibilityFormula(status.NewResolver(nil), true, false))
	assert.Contains(t, f, "{Description} = ''")
}

func TestEligibilityFormulaForceRefresh(t *testing.T) {
	t.Parallel()
	f := string(eligibilityFormula(status.NewResolver(nil), false, true))
	// Force refresh overrides missingness but not the status gate.
	assert.Contains(t, f, "TRUE()")
	assert.Contains(t, f, "LOWER({Status}) = 'pending'")
}

func TestEligibilityFormulaCustomLabels(t *testing.T) {
	t.Parallel()
	// Only configured labels appear; unmatched logical states drop out
	// instead of guessing.
	f := string(eligibilityFormula(status.NewResolver([]string{"Pending", "Done"}), false, false))
	assert.Contains(t, f, "LOWER({Status}) = 'pending'")
	assert.NotContains(t, f, "enriched")
	assert.NotContains(t, f, "error")
}
