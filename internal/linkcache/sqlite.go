package linkcache

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/tablescout/enrich-cli/internal/igprofile"
)

// SQLite persists profile lookup results across runs with a TTL, so repeat
// sweeps don't re-fetch the same venue websites. Lookup and store failures
// degrade to cache misses.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLite opens (and migrates) a sqlite cache at the given path.
func NewSQLite(dsn string, ttl time.Duration) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "linkcache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "linkcache: exec %s", pragma)
		}
	}

	const migration = `
CREATE TABLE IF NOT EXISTS profile_links (
	website    TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	status     TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profile_links_expires_at ON profile_links(expires_at);
`
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "linkcache: migrate")
	}

	return &SQLite{db: db, ttl: ttl}, nil
}

func (s *SQLite) Get(ctx context.Context, websiteURL string) (igprofile.Result, bool) {
	var res igprofile.Result
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT url, status, reason FROM profile_links WHERE website = ? AND expires_at > ?`,
		websiteURL, time.Now().UTC(),
	).Scan(&res.URL, &status, &res.Reason)
	if err == sql.ErrNoRows {
		return igprofile.Result{}, false
	}
	if err != nil {
		zap.L().Debug("linkcache: lookup failed", zap.Error(err))
		return igprofile.Result{}, false
	}
	res.Status = igprofile.Status(status)
	return res, true
}

func (s *SQLite) Set(ctx context.Context, websiteURL string, res igprofile.Result) {
	// Transient lookup errors are not cached; the next run should retry.
	if res.Status == igprofile.StatusError {
		return
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile_links (website, url, status, reason, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(website) DO UPDATE SET
		   url = excluded.url, status = excluded.status, reason = excluded.reason,
		   fetched_at = excluded.fetched_at, expires_at = excluded.expires_at`,
		websiteURL, res.URL, string(res.Status), res.Reason, now, now.Add(s.ttl),
	)
	if err != nil {
		zap.L().Debug("linkcache: store failed", zap.Error(err))
	}
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
