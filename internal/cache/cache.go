// Package cache memoizes external API responses in SQLite for a fixed TTL.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Cache stores response bodies by key until they expire.
// Every failure is logged and reported as a miss; callers never fail
// because of the cache.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// New creates a cache whose entries live for ttl.
func New(db *sql.DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl, now: time.Now}
}

// Key builds a stable key for a GET request from its endpoint and query.
// url.Values.Encode sorts parameters, so equivalent requests share a key.
func Key(endpoint string, params url.Values) string {
	sum := sha256.Sum256([]byte(endpoint + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached body for key if it exists and has not expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	var body []byte
	var expiresAt time.Time
	err := c.db.QueryRowContext(ctx,
		"SELECT body, expires_at FROM api_cache WHERE key = ?", key,
	).Scan(&body, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		slog.Warn("reading api cache", "error", err)
		return nil, false
	}

	if !c.now().Before(expiresAt) {
		return nil, false
	}
	return body, true
}

// Set stores body under key, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, key string, body []byte) {
	if c == nil || c.ttl <= 0 {
		return
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO api_cache (key, body, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, expires_at = excluded.expires_at`,
		key, body, c.now().Add(c.ttl).UTC(),
	)
	if err != nil {
		slog.Warn("writing api cache", "error", err)
	}
}

// Delete removes a single entry.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM api_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Flush removes every entry.
func (c *Cache) Flush(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM api_cache"); err != nil {
		return fmt.Errorf("flushing cache: %w", err)
	}
	return nil
}

// Purge removes expired entries and returns how many were dropped.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM api_cache WHERE expires_at <= ?", c.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
