// Package linkcache caches profile-link lookups keyed by website URL, so
// several records sharing one website cost a single fetch. The memory cache
// lives for one engine run; the sqlite cache persists across runs with a TTL.
package linkcache

import (
	"context"

	"github.com/tablescout/enrich-cli/internal/igprofile"
)

// Cache stores profile lookup results by website URL.
type Cache interface {
	Get(ctx context.Context, websiteURL string) (igprofile.Result, bool)
	Set(ctx context.Context, websiteURL string, res igprofile.Result)
	Close() error
}

// Memory is the default per-run cache. The engine processes records
// sequentially, so no locking is needed.
type Memory struct {
	entries map[string]igprofile.Result
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]igprofile.Result)}
}

func (m *Memory) Get(_ context.Context, websiteURL string) (igprofile.Result, bool) {
	res, ok := m.entries[websiteURL]
	return res, ok
}

func (m *Memory) Set(_ context.Context, websiteURL string, res igprofile.Result) {
	m.entries[websiteURL] = res
}

func (m *Memory) Close() error { return nil }
