// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielhkuo/priors/db"
)

// SQLStore keeps documents in the kv_document table.
// Read-modify-write operations run in a transaction; on postgres the row is
// locked with FOR UPDATE, on sqlite the single connection serializes them.
type SQLStore struct {
	db     *sql.DB
	dbType string
}

func NewSQLStore(conn *sql.DB, dbType string) *SQLStore {
	return &SQLStore{db: conn, dbType: dbType}
}

func (s *SQLStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv_document WHERE path = $1
	`, path).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return json.RawMessage(value), nil
}

func (s *SQLStore) Write(ctx context.Context, path string, value any) error {
	enc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv_document (path, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, path, string(enc), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *SQLStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	return s.update(ctx, path, mergeFields(fields))
}

func (s *SQLStore) Claim(ctx context.Context, path, key string) (bool, error) {
	var claimed bool
	err := s.update(ctx, path, claimKey(key, &claimed))
	return claimed, err
}

func (s *SQLStore) update(ctx context.Context, path string, fn mutation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Make sure there is a row to lock
	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv_document (path, value, updated_at)
		VALUES ($1, '{}', $2)
		ON CONFLICT (path) DO NOTHING
	`, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to prepare %s: %w", path, err)
	}

	query := `SELECT value FROM kv_document WHERE path = $1`
	if s.dbType == db.TypePostgres {
		query += ` FOR UPDATE`
	}
	var current string
	if err := tx.QueryRowContext(ctx, query, path).Scan(&current); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated, changed, err := fn([]byte(current))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if changed {
		_, err = tx.ExecContext(ctx, `
			UPDATE kv_document SET value = $1, updated_at = $2 WHERE path = $3
		`, string(updated), time.Now().UTC(), path)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", path, err)
	}
	return nil
}
