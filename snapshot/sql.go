// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/retroboard/db"
)

// registryRowID is the primary key of the single snapshot row
const registryRowID = "registry"

// SQLStore keeps the snapshot as one row in the room_snapshot table. It
// works against both sqlite and postgres.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates the schema if needed. The store takes ownership of
// conn and closes it on Close.
func NewSQLStore(conn *sql.DB) (*SQLStore, error) {
	if err := db.CreateSchema(conn); err != nil {
		return nil, err
	}
	return &SQLStore{db: conn}, nil
}

func (s *SQLStore) Load(ctx context.Context) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM room_snapshot WHERE id = $1
	`, registryRowID).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return []byte(payload), nil
}

func (s *SQLStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO room_snapshot (id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, registryRowID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
