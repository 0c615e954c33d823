package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

var _ types.ValueStore = (*valuesTable)(nil)

// valuesTable is the accessor for the property_values table.
type valuesTable struct {
	backend *Backend
}

// selectValues joins each value with its catalog definition. Values whose
// property_type is not the catalog type have no definition source and are
// excluded by the join.
const selectValues = `SELECT v.id, v.entity_type, v.entity_id, v.property_type, v.property_id,
       v.value, v.created_at, v.updated_at,
       p.id, p.name, p."cast", p.created_at, p.updated_at
FROM property_values v
JOIN properties p ON p.id = v.property_id AND v.property_type = ?`

// FetchForEntity returns every value row of entity, oldest first, with its
// definition joined.
func (vt *valuesTable) FetchForEntity(ctx context.Context, entity types.Ref) ([]*types.PropertyValue, error) {
	if !entity.Valid() {
		return nil, types.ErrInvalidRef
	}

	db, d, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, d.rebind(selectValues+`
WHERE v.entity_type = ? AND v.entity_id = ?
ORDER BY v.id ASC`),
		types.PropertyRefType, entity.Type, entity.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching values for %s: %w", entity, err)
	}
	defer rows.Close()

	results := []*types.PropertyValue{}
	for rows.Next() {
		v, err := scanValue(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating value: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating values: %w", err)
	}
	return results, nil
}

// FirstOrNew returns the row for the (entity, property) tuple or a new,
// unsaved value bound to both references.
func (vt *valuesTable) FirstOrNew(ctx context.Context, entity, property types.Ref) (*types.PropertyValue, error) {
	if !entity.Valid() || !property.Valid() {
		return nil, types.ErrInvalidRef
	}

	db, d, err := vt.backend.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, d.rebind(selectValues+`
WHERE v.entity_type = ? AND v.entity_id = ? AND v.property_type = ? AND v.property_id = ?`),
		types.PropertyRefType, entity.Type, entity.ID, property.Type, property.ID,
	)
	v, err := scanValue(row)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting value %s/%s: %w", entity, property, err)
	}
	return &types.PropertyValue{Entity: entity, Property: property}, nil
}

// Save inserts or updates value. The insert is an upsert on the
// (entity, property) tuple, so two writers racing on a new pair both succeed
// and the last write wins.
func (vt *valuesTable) Save(ctx context.Context, value *types.PropertyValue) error {
	if value == nil {
		return types.ErrInvalidRef
	}
	if !value.Entity.Valid() || value.Entity.ID == 0 || !value.Property.Valid() {
		return types.ErrInvalidRef
	}

	db, d, err := vt.backend.conn()
	if err != nil {
		return err
	}

	now := vt.backend.now()
	stamp := formatTime(now)

	if value.Exists() {
		res, err := db.ExecContext(ctx, d.rebind(
			"UPDATE property_values SET value = ?, updated_at = ? WHERE id = ?"),
			value.Value, stamp, value.ID,
		)
		if err != nil {
			return fmt.Errorf("updating value %d: %w", value.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating value %d: %w", value.ID, err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		value.UpdatedAt = now
		return nil
	}

	var createdAt string
	err = db.QueryRowContext(ctx, d.rebind(
		`INSERT INTO property_values
    (entity_type, entity_id, property_type, property_id, value, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (entity_type, entity_id, property_type, property_id)
DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
RETURNING id, created_at`),
		value.Entity.Type, value.Entity.ID, value.Property.Type, value.Property.ID,
		value.Value, stamp, stamp,
	).Scan(&value.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("inserting value %s/%s: %w", value.Entity, value.Property, err)
	}
	if value.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	value.UpdatedAt = now
	return nil
}

// scanValue converts one joined row into a *types.PropertyValue.
func scanValue(s scanner) (*types.PropertyValue, error) {
	var v types.PropertyValue
	var p types.Property
	var raw sql.NullString
	var createdAt, updatedAt, pCreatedAt, pUpdatedAt string
	if err := s.Scan(
		&v.ID, &v.Entity.Type, &v.Entity.ID, &v.Property.Type, &v.Property.ID,
		&raw, &createdAt, &updatedAt,
		&p.ID, &p.Name, &p.Cast, &pCreatedAt, &pUpdatedAt,
	); err != nil {
		return nil, err
	}
	if raw.Valid {
		text := raw.String
		v.Value = &text
	}

	var err error
	for _, ts := range []struct {
		dst *time.Time
		src string
	}{
		{&v.CreatedAt, createdAt},
		{&v.UpdatedAt, updatedAt},
		{&p.CreatedAt, pCreatedAt},
		{&p.UpdatedAt, pUpdatedAt},
	} {
		if *ts.dst, err = parseTime(ts.src); err != nil {
			return nil, err
		}
	}
	v.Definition = &p
	return &v, nil
}
