// Stackchart - Stacked Time-Series Chart Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stackchart

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/stackchart/internal/models"
)

// UpsertColumnProfile stores the storage type of a column and returns the
// profile with its assigned ID.
func (db *DB) UpsertColumnProfile(ctx context.Context, profile string, col models.ColumnProfile) (models.ColumnProfile, error) {
	if profile == "" || col.Name == "" {
		return models.ColumnProfile{}, fmt.Errorf("%w: profile and column name are required", ErrInvalidColumnRef)
	}
	if !col.CSType.Defined() {
		return models.ColumnProfile{}, &models.ValidationError{
			Field:   "cs_type",
			Message: fmt.Sprintf("undefined storage type for column %q", col.Name),
		}
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		INSERT INTO column_profiles (profile, name, cs_type)
		VALUES (?, ?, ?)
		ON CONFLICT (profile, name) DO UPDATE SET
			cs_type = excluded.cs_type,
			updated_at = current_timestamp
		RETURNING id`

	var id int64
	if err := db.conn.QueryRowContext(ctx, query, profile, col.Name, string(col.CSType)).Scan(&id); err != nil {
		return models.ColumnProfile{}, fmt.Errorf("failed to upsert column profile %s/%s: %w", profile, col.Name, err)
	}
	col.ID = id
	return col, nil
}

// ColumnProfile returns the stored profile of a column. An unknown column
// yields ErrColumnNotFound.
func (db *DB) ColumnProfile(ctx context.Context, profile, column string) (models.ColumnProfile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		col    models.ColumnProfile
		csType string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, cs_type FROM column_profiles WHERE profile = ? AND name = ?`,
		profile, column,
	).Scan(&col.ID, &col.Name, &csType)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ColumnProfile{}, fmt.Errorf("%w: %s/%s", ErrColumnNotFound, profile, column)
	}
	if err != nil {
		return models.ColumnProfile{}, fmt.Errorf("failed to query column profile %s/%s: %w", profile, column, err)
	}
	col.CSType = models.ParseCSType(csType)
	return col, nil
}
