package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists collections as rows of a single key/value table with a
// JSONB value column.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a store backed by the given pool. Call Init once at
// startup to ensure the table exists.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Init creates the backing table if it does not exist.
func (s *PGStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS app_state (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("init app_state: %w", err)
	}
	return nil
}

// Load reads the document stored under key into v. A missing row reports
// found=false with no error.
func (s *PGStore) Load(ctx context.Context, key string, v interface{}) (bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM app_state WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save replaces the document stored under key with v.
func (s *PGStore) Save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, data)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
