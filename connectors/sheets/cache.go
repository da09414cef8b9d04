package sheets

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"faculty-bills/domain/bills"
)

// Cache keeps the last successful fetch of a Fetcher for a fixed TTL. A failed
// refresh returns the error without serving stale rows.
type Cache struct {
	src Fetcher
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	rows      bills.Table
	fetchedAt time.Time
}

// NewCache wraps src. A ttl of zero disables caching.
func NewCache(src Fetcher, ttl time.Duration) *Cache {
	return &Cache{src: src, ttl: ttl, now: time.Now}
}

// FetchRows returns cached rows while fresh, otherwise fetches from the source.
func (c *Cache) FetchRows(ctx context.Context) (bills.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rows != nil && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.rows, nil
	}
	rows, err := c.src.FetchRows(ctx)
	if err != nil {
		c.rows = nil
		return nil, err
	}
	if rows == nil {
		rows = bills.Table{}
	}
	c.rows = rows
	c.fetchedAt = c.now()
	slog.Info("sheets.cache.refresh", "rows", len(rows), "ttl", c.ttl)
	return rows, nil
}

// Invalidate drops the cached rows so the next call refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.rows = nil
	c.mu.Unlock()
}
