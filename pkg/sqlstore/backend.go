// Package sqlstore provides the public API for the SQL storage backend of the
// properties engine. It exposes the factory while keeping the table accessors
// internal.
package sqlstore

import (
	"github.com/mesh-intelligence/satchel/internal/sqlstore"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// NewBackend creates a new SQL backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlstore.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".satchel-db",
//	})
//	defer backend.Detach()
func NewBackend() types.Backend {
	return sqlstore.NewBackend()
}
