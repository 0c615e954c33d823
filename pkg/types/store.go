package types

import (
	"context"
	"errors"
)

// Catalog is the persisted registry of property definitions shared by all
// record types.
type Catalog interface {
	// FindByName returns the definition named name, or ErrNotFound.
	FindByName(ctx context.Context, name string) (*Property, error)

	// Upsert creates or updates the definition named name with cast.
	Upsert(ctx context.Context, name, cast string) (*Property, error)

	// List returns every definition ordered by name.
	List(ctx context.Context) ([]*Property, error)
}

// ValueStore persists property values, one row per (entity, property) pair.
type ValueStore interface {
	// FetchForEntity returns every value row of entity with its definition
	// joined. An entity without rows yields an empty slice.
	FetchForEntity(ctx context.Context, entity Ref) ([]*PropertyValue, error)

	// FirstOrNew returns the row matching the (entity, property) tuple, or a
	// new unsaved value with a nil Value when none exists.
	FirstOrNew(ctx context.Context, entity, property Ref) (*PropertyValue, error)

	// Save inserts a new value or updates an existing one in place.
	Save(ctx context.Context, value *PropertyValue) error
}

// Backend gives access to a Catalog and a ValueStore over one storage
// connection. Callers attach, use the stores, and detach when done.
type Backend interface {
	// Attach connects to the storage described by config. Returns
	// ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases storage resources. Idempotent.
	Detach() error

	// Catalog returns the definition catalog, or ErrDetached.
	Catalog() (Catalog, error)

	// Values returns the value store, or ErrDetached.
	Values() (ValueStore, error)
}

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
