package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
)

// PostgresStore keeps each queue as a JSONB array in the offline_queues table
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the queue stored under key, or an empty slice
func (s *PostgresStore) Get(ctx context.Context, key string) ([]domain.Intent, error) {
	query := `SELECT intents FROM offline_queues WHERE name = $1`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return []domain.Intent{}, nil
		}
		return nil, fmt.Errorf("failed to read queue %s: %w", key, err)
	}

	intents := []domain.Intent{}
	if err := json.Unmarshal(raw, &intents); err != nil {
		return nil, fmt.Errorf("failed to decode queue %s: %w", key, err)
	}
	return intents, nil
}

// Append adds intent to the end of the array in a single statement
func (s *PostgresStore) Append(ctx context.Context, key string, intent domain.Intent) error {
	payload, err := json.Marshal([]domain.Intent{intent})
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}

	query := `
		INSERT INTO offline_queues (name, intents, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (name) DO UPDATE
		SET intents = offline_queues.intents || EXCLUDED.intents,
		    updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, key, string(payload)); err != nil {
		return fmt.Errorf("failed to append to queue %s: %w", key, err)
	}
	return nil
}

// Delete removes the queue row
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM offline_queues WHERE name = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete queue %s: %w", key, err)
	}
	return nil
}
