package types

import "context"

// Producer loads the value rows of one record on a cache miss.
type Producer func(ctx context.Context) ([]*PropertyValue, error)

// Cache is a read-through cache of per-record value rows. Entries never
// expire on their own; they live until Forget.
type Cache interface {
	// RememberForever returns the rows cached under key, or calls produce,
	// stores its result under key and returns it. A produce error is returned
	// and nothing is stored.
	RememberForever(ctx context.Context, key string, produce Producer) ([]*PropertyValue, error)

	// Forget evicts key. Forgetting an absent key is not an error.
	Forget(ctx context.Context, key string) error
}
