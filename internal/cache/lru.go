package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// LRU is a size-bounded in-process cache. Entries leave only by Forget or by
// eviction of the least recently used key when the cache is full.
type LRU struct {
	lru *lru.Cache[string, []*types.PropertyValue]
}

// NewLRU returns an empty cache holding at most size records.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[string, []*types.PropertyValue](size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCacheSizeInvalid, err)
	}
	return &LRU{lru: c}, nil
}

func (l *LRU) RememberForever(ctx context.Context, key string, produce types.Producer) ([]*types.PropertyValue, error) {
	return remember(ctx,
		func() ([]*types.PropertyValue, bool) { return l.lru.Get(key) },
		func(rows []*types.PropertyValue) { l.lru.Add(key, rows) },
		produce,
	)
}

func (l *LRU) Forget(_ context.Context, key string) error {
	l.lru.Remove(key)
	return nil
}

// Len returns the number of cached records.
func (l *LRU) Len() int {
	return l.lru.Len()
}

// Close drops every entry.
func (l *LRU) Close() error {
	l.lru.Purge()
	return nil
}
