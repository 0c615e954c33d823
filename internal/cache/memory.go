package cache

import (
	"context"

	"github.com/erni27/imcache"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Memory is an unbounded in-process cache. Entries never expire.
type Memory struct {
	cache *imcache.Cache[string, []*types.PropertyValue]
}

// NewMemory returns an empty memory cache.
func NewMemory() *Memory {
	return &Memory{cache: imcache.New[string, []*types.PropertyValue]()}
}

func (m *Memory) RememberForever(ctx context.Context, key string, produce types.Producer) ([]*types.PropertyValue, error) {
	return remember(ctx,
		func() ([]*types.PropertyValue, bool) { return m.cache.Get(key) },
		func(rows []*types.PropertyValue) { m.cache.Set(key, rows, imcache.WithNoExpiration()) },
		produce,
	)
}

func (m *Memory) Forget(_ context.Context, key string) error {
	m.cache.Remove(key)
	return nil
}

// Close drops every entry.
func (m *Memory) Close() error {
	m.cache.RemoveAll()
	return nil
}
