package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Redis shares cached rows between processes. Rows are stored as a JSON array
// with no expiration.
type Redis struct {
	rdb *redis.Client
}

// NewRedis returns a cache backed by the server at cfg.Address. The
// connection is established lazily on first use.
func NewRedis(cfg types.CacheConfig) *Redis {
	return &Redis{rdb: redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) RememberForever(ctx context.Context, key string, produce types.Producer) ([]*types.PropertyValue, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		rows := []*types.PropertyValue{}
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decoding cached rows %s: %w", key, err)
		}
		return rows, nil
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("reading cached rows %s: %w", key, err)
	}

	rows, err := produce(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.PropertyValue{}
	}

	data, err = json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encoding cached rows %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, fmt.Errorf("writing cached rows %s: %w", key, err)
	}
	return rows, nil
}

func (r *Redis) Forget(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("forgetting cached rows %s: %w", key, err)
	}
	return nil
}

// Close releases the client connections.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
