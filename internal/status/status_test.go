package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablescout/enrich-cli/internal/model"
)

func TestResolverDefaults(t *testing.T) {
	t.Parallel()
	r := NewResolver(nil)

	label, ok := r.Resolve(model.StatusEnriched, "")
	require.True(t, ok)
	assert.Equal(t, "enriched", label)
}

func TestResolverCaseInsensitive(t *testing.T) {
	t.Parallel()
	r := NewResolver([]string{"PENDING", "Enriched", "not_found", "Error"})

	label, ok := r.Resolve(model.StatusPending, "")
	require.True(t, ok)
	assert.Equal(t, "PENDING", label)

	label, ok = r.Resolve(model.StatusError, "")
	require.True(t, ok)
	assert.Equal(t, "Error", label)
}

func TestResolverFallback(t *testing.T) {
	t.Parallel()
	// Store only has a pending-ish label; error falls back to it.
	r := NewResolver([]string{"Pending", "Enriched"})

	label, ok := r.Resolve(model.StatusError, model.StatusPending)
	require.True(t, ok)
	assert.Equal(t, "Pending", label)
}

func TestResolverNoMatchOmits(t *testing.T) {
	t.Parallel()
	// Labels configured in another language; nothing matches, the caller
	// must omit the field rather than write a wrong label.
	r := NewResolver([]string{"Pendiente", "Hecho"})

	_, ok := r.Resolve(model.StatusPending, model.StatusError)
	assert.False(t, ok)
}

func TestLabels(t *testing.T) {
	t.Parallel()
	r := NewResolver([]string{"Pending", "Done", "error"})

	got := r.Labels(model.StatusPending, model.StatusEnriched, model.StatusError)
	assert.Equal(t, []string{"Pending", "error"}, got)
}
