// Package cache provides a TTL cache for aggregated source results,
// backed by a Badger database. Caching search responses keeps repeat
// queries from re-hitting the external APIs and their rate limits.
package cache

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bibliointel/bibliointel-server/internal/domain"
)

// Cache stores aggregated search results keyed by query and limit.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// New opens a Badger database at path for caching. Pass a TTL after
// which cached entries expire.
func New(path string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &Cache{
		db:     db,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// key builds the cache key for a search. Queries are matched verbatim;
// normalization happens upstream.
func key(query string, limit int) []byte {
	return []byte("search:" + query + ":" + strconv.Itoa(limit))
}

// Get returns the cached results for a search, or ok=false on a miss.
// Decode failures count as misses so a format change never wedges the
// pipeline.
func (c *Cache) Get(query string, limit int) ([]domain.Book, bool) {
	var books []domain.Book

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(query, limit))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &books)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("cache read failed", "query", query, "error", err)
		}
		return nil, false
	}

	return books, true
}

// Set stores results for a search. Write failures are logged and
// swallowed; the cache is an optimization, never a dependency.
func (c *Cache) Set(query string, limit int, books []domain.Book) {
	data, err := json.Marshal(books)
	if err != nil {
		c.logger.Warn("cache encode failed", "query", query, "error", err)
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key(query, limit), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn("cache write failed", "query", query, "error", err)
	}
}
