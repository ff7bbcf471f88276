package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tablescout/enrich-cli/pkg/airtable"
)

// upsert performs the idempotent write: update by record ID when known,
// otherwise find by slug, otherwise create. A rejected notes column disables
// that field for the rest of the run and the write is retried once without it.
func (e *Engine) upsert(ctx context.Context, rlog *zap.Logger, recID, slug string, fields airtable.Fields) (*airtable.Record, error) {
	rec, err := e.write(ctx, recID, slug, fields)
	if err == nil {
		return rec, nil
	}

	ufe, ok := airtable.AsUnknownField(err)
	if !ok || ufe.Field != fieldNotes || e.notesDisabled {
		return nil, err
	}

	// The notes column is optional in the external schema. Latch once per
	// run, strip it, retry the same write once.
	e.notesDisabled = true
	rlog.Warn("store has no notes column, disabling it for the rest of the run")
	delete(fields, fieldNotes)
	return e.write(ctx, recID, slug, fields)
}

func (e *Engine) write(ctx context.Context, recID, slug string, fields airtable.Fields) (*airtable.Record, error) {
	if recID != "" {
		return e.store.Update(ctx, recID, fields)
	}

	if slug != "" {
		existing, err := e.store.List(ctx, airtable.Query{
			FilterFormula: airtable.EqFold(fieldSlug, slug),
			MaxRecords:    1,
		})
		if err != nil {
			return nil, eris.Wrap(err, "engine: find by slug")
		}
		if len(existing) > 0 {
			return e.store.Update(ctx, existing[0].ID, fields)
		}
	}

	return e.store.Create(ctx, fields)
}
