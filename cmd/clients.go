package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tablescout/enrich-cli/internal/linkcache"
	"github.com/tablescout/enrich-cli/internal/status"
	"github.com/tablescout/enrich-cli/pkg/airtable"
)

// newStore builds the record store client with a shared rate limiter. All
// store traffic in one process goes through one limiter.
func newStore() (airtable.Client, error) {
	if cfg.Airtable.Key == "" || cfg.Airtable.BaseID == "" {
		return nil, eris.New("store: airtable key and base_id are required")
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Airtable.RateRPS), 1)
	return airtable.NewClient(cfg.Airtable.Key, cfg.Airtable.BaseID, cfg.Airtable.Table,
		airtable.WithLimiter(limiter),
	), nil
}

// newResolver maps logical statuses onto the configured select labels. An
// override wins over config when non-empty.
func newResolver(override []string) *status.Resolver {
	if len(override) > 0 {
		return status.NewResolver(override)
	}
	return status.NewResolver(cfg.Airtable.StatusOptionList())
}

// newLinkCache picks the persistent cache when a path is configured and
// falls back to per-run memory otherwise.
func newLinkCache() linkcache.Cache {
	if cfg.Cache.Path == "" {
		return linkcache.NewMemory()
	}

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	c, err := linkcache.NewSQLite(cfg.Cache.Path, ttl)
	if err != nil {
		zap.L().Warn("link cache open failed, using in-memory cache",
			zap.String("path", cfg.Cache.Path),
			zap.Error(err),
		)
		return linkcache.NewMemory()
	}
	return c
}
