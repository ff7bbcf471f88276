package engine

import (
	"sort"

	"github.com/tablescout/enrich-cli/internal/model"
	"github.com/tablescout/enrich-cli/internal/status"
	"github.com/tablescout/enrich-cli/pkg/airtable"
)

// eligibilityFormula builds the selection predicate pushed down to the store:
//
//	status ∈ {pending, error, enriched, blank}
//	AND (place id blank OR photo blank
//	     OR (description generation enabled AND description blank)
//	     OR force refresh)
//
// not_found records never match; they stay excluded until an operator clears
// them back to pending. Force refresh ignores the missing-field terms but
// the status gate still applies.
func eligibilityFormula(resolver *status.Resolver, describeEnabled, forceRefresh bool) airtable.Formula {
	statusTerms := []airtable.Formula{airtable.Blank(fieldStatus)}
	for _, label := range resolver.Labels(model.StatusPending, model.StatusError, model.StatusEnriched) {
		statusTerms = append(statusTerms, airtable.EqFold(fieldStatus, label))
	}

	needTerms := []airtable.Formula{
		airtable.Blank(fieldPlaceID),
		airtable.Blank(fieldPhotoURL),
	}
	if describeEnabled {
		needTerms = append(needTerms, airtable.Blank(fieldDescription))
	}
	if forceRefresh {
		// TRUE() short-circuits the missing-field terms while keeping the
		// formula shape stable.
		needTerms = append(needTerms, airtable.Formula("TRUE()"))
	}

	return airtable.And(airtable.Or(statusTerms...), airtable.Or(needTerms...))
}

// excludeSeen narrows the predicate past records already handled this run.
// Error-status records stay eligible, so without the exclusion a front-ranked
// block of persistently failing records would pin the batch window and starve
// everything ranked behind it. IDs are sorted so the formula is deterministic.
func excludeSeen(base airtable.Formula, seen map[string]bool) airtable.Formula {
	if len(seen) == 0 {
		return base
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	terms := make([]airtable.Formula, len(ids))
	for i, id := range ids {
		terms[i] = airtable.RecordID(id)
	}
	return airtable.And(base, airtable.Not(airtable.Or(terms...)))
}
