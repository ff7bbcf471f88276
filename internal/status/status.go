// Package status maps the logical enrichment lifecycle onto whatever select
// labels the record store actually has configured.
package status

import (
	"github.com/tablescout/enrich-cli/internal/fieldconv"
	"github.com/tablescout/enrich-cli/internal/model"
)

// DefaultOptions is the option set assumed when the operator supplies none.
var DefaultOptions = []string{"pending", "enriched", "not_found", "error"}

// Resolver resolves logical statuses to configured store labels. Built once
// per run; matching is case-insensitive and never invents a label.
type Resolver struct {
	options []string
}

// NewResolver creates a Resolver over the configured option labels.
// An empty list falls back to DefaultOptions.
func NewResolver(options []string) *Resolver {
	if len(options) == 0 {
		options = DefaultOptions
	}
	return &Resolver{options: options}
}

// Options returns the configured labels.
func (r *Resolver) Options() []string { return r.options }

// Resolve returns the configured label for desired, trying fallback when
// desired has no match. ok=false means neither token is configured; callers
// must omit the status field from the write, never treat it as an error.
func (r *Resolver) Resolve(desired, fallback model.Status) (string, bool) {
	if label, ok := fieldconv.MatchOption(desired.String(), r.options); ok {
		return label, true
	}
	if fallback != "" {
		if label, ok := fieldconv.MatchOption(fallback.String(), r.options); ok {
			return label, true
		}
	}
	return "", false
}

// Labels returns every configured label that corresponds to one of the given
// logical statuses. Used to build eligibility predicates.
func (r *Resolver) Labels(statuses ...model.Status) []string {
	var out []string
	for _, s := range statuses {
		if label, ok := fieldconv.MatchOption(s.String(), r.options); ok {
			out = append(out, label)
		}
	}
	return out
}
