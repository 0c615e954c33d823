package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

var _ types.Catalog = (*catalogTable)(nil)

// catalogTable is the accessor for the properties table.
type catalogTable struct {
	backend *Backend
}

const selectProperties = `SELECT id, name, "cast", created_at, updated_at FROM properties`

// FindByName returns the definition named name, or ErrNotFound.
func (ct *catalogTable) FindByName(ctx context.Context, name string) (*types.Property, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}

	db, d, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, d.rebind(selectProperties+" WHERE name = ?"), name)
	prop, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting property %s: %w", name, err)
	}
	return prop, nil
}

// Upsert creates the definition named name or updates its cast. The name is
// the conflict key, so redeclaring a name with another cast overwrites it.
func (ct *catalogTable) Upsert(ctx context.Context, name, cast string) (*types.Property, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}
	if !types.IsValidCast(cast) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidCast, cast)
	}

	db, d, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}

	now := formatTime(ct.backend.now())
	row := db.QueryRowContext(ctx, d.rebind(
		`INSERT INTO properties (name, "cast", created_at, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET "cast" = excluded."cast", updated_at = excluded.updated_at
RETURNING id, name, "cast", created_at, updated_at`),
		name, cast, now, now,
	)
	prop, err := scanProperty(row)
	if err != nil {
		return nil, fmt.Errorf("persisting property %s: %w", name, err)
	}
	return prop, nil
}

// List returns every definition ordered by name.
func (ct *catalogTable) List(ctx context.Context) ([]*types.Property, error) {
	db, _, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectProperties+" ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("fetching properties: %w", err)
	}
	defer rows.Close()

	results := []*types.Property{}
	for rows.Next() {
		prop, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating property: %w", err)
		}
		results = append(results, prop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}
	return results, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanProperty converts one properties row into a *types.Property.
func scanProperty(s scanner) (*types.Property, error) {
	var p types.Property
	var createdAt, updatedAt string
	if err := s.Scan(&p.ID, &p.Name, &p.Cast, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
