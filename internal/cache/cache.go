// Package cache keeps parsed mapping tables in memory between pipeline runs.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"tinymerge/internal/tiny"
	"tinymerge/internal/tree"
)

// DefaultSize is the number of parsed tables kept when no size is configured.
const DefaultSize = 16

// key identifies one version of a table file.
type key struct {
	path    string
	size    int64
	modTime int64
}

// Cache is an LRU of parsed tables keyed by file path, size and modification
// time, so edited files are reparsed. A nil *Cache always reads from disk.
type Cache struct {
	entries *lru.Cache[key, *tree.Tree]
	refresh bool
	logger  *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithRefresh makes every load reparse the file and replace the cached copy.
func WithRefresh(refresh bool) Option {
	return func(c *Cache) { c.refresh = refresh }
}

// WithLogger sets the logger for cache activity.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a cache holding at most size tables.
func New(size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}

	entries, err := lru.New[key, *tree.Tree](size)
	if err != nil {
		return nil, fmt.Errorf("creating table cache: %w", err)
	}

	c := &Cache{entries: entries, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Load returns the table at path. Callers get their own copy and may modify
// it freely.
func (c *Cache) Load(path string) (*tree.Tree, error) {
	if c == nil {
		return tiny.LoadFile(path)
	}

	k, err := fileKey(path)
	if err != nil {
		return nil, err
	}

	if !c.refresh {
		if t, ok := c.entries.Get(k); ok {
			c.hits.Add(1)
			c.logger.Debug("cache: hit", "path", path)

			return t.Copy(tree.Strict)
		}
	}

	c.misses.Add(1)

	t, err := tiny.LoadFile(path)
	if err != nil {
		return nil, err
	}

	c.entries.Add(k, t)
	c.logger.Debug("cache: stored", "path", path, "classes", t.Len(), "refresh", c.refresh)

	return t.Copy(tree.Strict)
}

// Stats returns the number of hits and misses so far.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}

	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	return c.entries.Len()
}

// Purge drops every cached table.
func (c *Cache) Purge() {
	if c != nil {
		c.entries.Purge()
	}
}

func fileKey(path string) (key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return key{}, fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return key{}, fmt.Errorf("opening table: %w", err)
	}

	return key{path: abs, size: info.Size(), modTime: info.ModTime().UnixNano()}, nil
}
