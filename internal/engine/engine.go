// Package engine drives the enrichment reconciliation sweep: it selects
// eligible records from the store, fills them from the providers, and writes
// the merged result back, safely re-runnable at any time.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tablescout/enrich-cli/internal/igprofile"
	"github.com/tablescout/enrich-cli/internal/linkcache"
	"github.com/tablescout/enrich-cli/internal/status"
	"github.com/tablescout/enrich-cli/pkg/airtable"
	"github.com/tablescout/enrich-cli/pkg/places"
	"github.com/tablescout/enrich-cli/pkg/textgen"
)

// Options configures one reconciliation sweep.
type Options struct {
	BatchSize     int
	Delay         time.Duration // inter-record pacing
	ForceRefresh  bool
	Once          bool // stop after a single batch
	Country       string
	PhotoMaxWidth int
	FindProfiles  bool
}

// Stats summarizes a completed run.
type Stats struct {
	Processed int
	Enriched  int
	NotFound  int
	Errors    int
	Skipped   int
}

// Engine owns the per-run state: provider clients, the status resolver, the
// profile-link cache, and the notes-column latch. Two engines can run in one
// process without sharing anything.
type Engine struct {
	store    airtable.Client
	places   places.Client
	describe textgen.Generator
	finder   igprofile.Finder
	links    linkcache.Cache
	resolver *status.Resolver
	opts     Options

	// notesDisabled latches when the store rejects the notes column; the
	// field is then dropped from every later write this run.
	notesDisabled bool

	log *zap.Logger
}

// New creates an Engine. links may be nil, in which case an in-memory
// per-run cache is used.
func New(store airtable.Client, pl places.Client, describe textgen.Generator, finder igprofile.Finder, links linkcache.Cache, resolver *status.Resolver, opts Options) *Engine {
	if links == nil {
		links = linkcache.NewMemory()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	return &Engine{
		store:    store,
		places:   pl,
		describe: describe,
		finder:   finder,
		links:    links,
		resolver: resolver,
		opts:     opts,
		log:      zap.L().With(zap.String("component", "engine")),
	}
}

// Run executes the batch loop until the eligibility query drains, single-shot
// mode ends the run, or the store turns out to be misconfigured.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	e.notesDisabled = false
	runID := uuid.New().String()
	log := e.log.With(zap.String("run_id", runID))

	describeEnabled := e.describe != nil && e.describe.Enabled()
	formula := eligibilityFormula(e.resolver, describeEnabled, e.opts.ForceRefresh)
	log.Debug("eligibility predicate", zap.String("formula", string(formula)))

	// error outcomes stay eligible for the next run, so within one run each
	// record is touched at most once: handled IDs are excluded from every
	// requery, which also keeps the batch window moving past records that
	// keep failing.
	seen := make(map[string]bool)

	var stats Stats
	for iteration := 0; ; iteration++ {
		records, err := e.store.List(ctx, airtable.Query{
			FilterFormula: excludeSeen(formula, seen),
			MaxRecords:    e.opts.BatchSize,
		})
		if err != nil {
			if airtable.IsNotFound(err) {
				return stats, eris.Wrap(err, "engine: store base or table not found; check the base ID, table name, and API key")
			}
			return stats, eris.Wrap(err, "engine: eligibility query")
		}

		fresh := records[:0]
		for _, rec := range records {
			if !seen[rec.ID] {
				fresh = append(fresh, rec)
			}
		}
		records = fresh

		if len(records) == 0 {
			if iteration == 0 {
				log.Info("nothing to do")
			} else {
				log.Info("no more eligible records")
			}
			break
		}

		log.Info("processing batch",
			zap.Int("iteration", iteration),
			zap.Int("count", len(records)),
		)

		for i, rec := range records {
			if i > 0 && e.opts.Delay > 0 {
				timer := time.NewTimer(e.opts.Delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return stats, ctx.Err()
				case <-timer.C:
				}
			}

			seen[rec.ID] = true
			if err := e.processRecord(ctx, log, rec, &stats); err != nil {
				// Only the fatal store misconfiguration escapes the
				// per-record boundary.
				return stats, err
			}
			stats.Processed++
		}

		if e.opts.Once {
			log.Info("single-shot mode, stopping after one batch")
			break
		}
	}

	log.Info("run complete",
		zap.Int("processed", stats.Processed),
		zap.Int("enriched", stats.Enriched),
		zap.Int("not_found", stats.NotFound),
		zap.Int("errors", stats.Errors),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}
