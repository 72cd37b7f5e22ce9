// Package cache stores extracted articles in a local sqlite database so
// repeated renders of the same URL skip the network fetch. The cache is
// best-effort: read and write failures are logged, never surfaced.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"clipcast/internal/extract"
	"clipcast/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	url TEXT PRIMARY KEY,
	article_text TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	fetched_at INTEGER NOT NULL
);
`

// Store is a TTL-bounded article cache backed by sqlite.
type Store struct {
	db     *sql.DB
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Open creates or opens the cache database at path.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	store := &Store{
		db:     db,
		ttl:    ttl,
		logger: logging.NewComponentLogger(logger, "cache"),
		now:    time.Now,
	}
	store.pruneExpired()
	return store, nil
}

// Get returns the cached article for url if present and fresh.
func (s *Store) Get(ctx context.Context, url string) (extract.Result, bool) {
	if s == nil {
		return extract.Result{}, false
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT article_text, image_url, fetched_at FROM articles WHERE url = ?`, url)

	var result extract.Result
	var fetchedAt int64
	if err := row.Scan(&result.Text, &result.ImageURL, &fetchedAt); err != nil {
		if err != sql.ErrNoRows {
			s.logger.Debug("cache read failed", logging.Args(logging.Error(err))...)
		}
		return extract.Result{}, false
	}
	if s.now().Unix()-fetchedAt > int64(s.ttl.Seconds()) {
		return extract.Result{}, false
	}
	return result, true
}

// Put stores an extracted article for url.
func (s *Store) Put(ctx context.Context, url string, result extract.Result) {
	if s == nil {
		return
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (url, article_text, image_url, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			article_text = excluded.article_text,
			image_url = excluded.image_url,
			fetched_at = excluded.fetched_at`,
		url, result.Text, result.ImageURL, s.now().Unix())
	if err != nil {
		s.logger.Debug("cache write failed", logging.Args(logging.Error(err))...)
	}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) pruneExpired() {
	cutoff := s.now().Add(-s.ttl).Unix()
	if _, err := s.db.Exec(`DELETE FROM articles WHERE fetched_at < ?`, cutoff); err != nil {
		s.logger.Debug("cache prune failed", logging.Args(logging.Error(err))...)
	}
}
