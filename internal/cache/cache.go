// Package cache implements the read-through cache of per-record property
// value rows. Three drivers are available: memory (erni27/imcache), lru
// (hashicorp/golang-lru) and redis (redis/go-redis).
package cache

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Driver is a types.Cache that owns resources released by Close.
type Driver interface {
	types.Cache
	Close() error
}

// New returns the driver selected by cfg.Driver. An empty driver selects the
// memory driver.
func New(cfg types.CacheConfig) (Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case "", types.CacheMemory:
		return NewMemory(), nil
	case types.CacheLRU:
		size := cfg.Size
		if size == 0 {
			size = types.DefaultLRUSize
		}
		return NewLRU(size)
	case types.CacheRedis:
		return NewRedis(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrCacheDriverUnknown, cfg.Driver)
	}
}

// remember is the read-through step shared by the in-process drivers.
func remember(
	ctx context.Context,
	get func() ([]*types.PropertyValue, bool),
	put func([]*types.PropertyValue),
	produce types.Producer,
) ([]*types.PropertyValue, error) {
	if rows, ok := get(); ok {
		return rows, nil
	}
	rows, err := produce(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.PropertyValue{}
	}
	put(rows)
	return rows, nil
}
