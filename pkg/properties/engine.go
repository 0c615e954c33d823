// Package properties gives records a dynamic, per-type set of named
// properties stored as entity-attribute-value rows.
//
// A record type declares its vocabulary through types.Record.Properties. An
// Engine hands out one Bag per loaded record; the Bag merges declared
// defaults with persisted values, accepts writes for declared names only and
// saves the values that changed. Attachment ties a Bag's lifetime to its
// owning record.
package properties

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/satchel/internal/cache"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Engine holds the collaborators shared by every Bag.
type Engine struct {
	catalog types.Catalog
	values  types.ValueStore
	cache   types.Cache
	prefix  string
	logger  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache replaces the default in-process cache.
func WithCache(c types.Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithKeyPrefix sets the cache key prefix. An empty prefix keeps
// types.DefaultCacheKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(e *Engine) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an Engine reading definitions from catalog and values
// from values.
func NewEngine(catalog types.Catalog, values types.ValueStore, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		values:  values,
		cache:   cache.NewMemory(),
		prefix:  types.DefaultCacheKeyPrefix,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CacheKey returns the cache key of r's value rows:
// {prefix}_{record type}_{record id}.
func (e *Engine) CacheKey(r types.Record) string {
	return fmt.Sprintf("%s_%s_%d", e.prefix, r.RecordType(), r.RecordID())
}
