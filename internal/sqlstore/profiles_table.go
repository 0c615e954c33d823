package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// ProfileRow is one row of the profiles table, the owning record of the
// sample Profile record type.
type ProfileRow struct {
	ID        int64     `json:"id"`
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfilesTable is the accessor for the profiles table.
type ProfilesTable struct {
	backend *Backend
}

const selectProfiles = `SELECT id, uid, name, created_at, updated_at FROM profiles`

// Get returns the profile with the given id, or ErrNotFound.
func (pt *ProfilesTable) Get(ctx context.Context, id int64) (*ProfileRow, error) {
	db, d, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}

	row, err := scanProfile(db.QueryRowContext(ctx, d.rebind(selectProfiles+" WHERE id = ?"), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting profile %d: %w", id, err)
	}
	return row, nil
}

// Save creates the profile when row.ID is zero, assigning its ID, a UUID v7
// UID and timestamps; otherwise it updates the name in place.
func (pt *ProfilesTable) Save(ctx context.Context, row *ProfileRow) error {
	if row.Name == "" {
		return types.ErrInvalidName
	}

	db, d, err := pt.backend.conn()
	if err != nil {
		return err
	}

	now := pt.backend.now()
	stamp := formatTime(now)

	if row.ID != 0 {
		res, err := db.ExecContext(ctx, d.rebind("UPDATE profiles SET name = ?, updated_at = ? WHERE id = ?"),
			row.Name, stamp, row.ID)
		if err != nil {
			return fmt.Errorf("updating profile %d: %w", row.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating profile %d: %w", row.ID, err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		row.UpdatedAt = now
		return nil
	}

	if row.UID == "" {
		row.UID = generateUUID()
	}
	err = db.QueryRowContext(ctx, d.rebind(
		"INSERT INTO profiles (uid, name, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id"),
		row.UID, row.Name, stamp, stamp,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	row.CreatedAt = now
	row.UpdatedAt = now
	return nil
}

// List returns every profile ordered by id.
func (pt *ProfilesTable) List(ctx context.Context) ([]*ProfileRow, error) {
	db, _, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectProfiles+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("fetching profiles: %w", err)
	}
	defer rows.Close()

	results := []*ProfileRow{}
	for rows.Next() {
		row, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating profile: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}
	return results, nil
}

func scanProfile(s scanner) (*ProfileRow, error) {
	var row ProfileRow
	var createdAt, updatedAt string
	if err := s.Scan(&row.ID, &row.UID, &row.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if row.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if row.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &row, nil
}

// generateUUID generates a new UUID v7 for public profile identifiers.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
