package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/edubridge/platform/repositories"
	"go.uber.org/zap"
)

// KeyValueStore implements repositories.KeyValueStore on the client_storage table
type KeyValueStore struct {
	db     *DB
	logger *zap.Logger
}

// NewKeyValueStore creates a Postgres-backed key-value store
func NewKeyValueStore(db *DB, logger *zap.Logger) *KeyValueStore {
	return &KeyValueStore{db: db, logger: logger}
}

// Get implements repositories.KeyValueStore
func (s *KeyValueStore) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM client_storage WHERE key = $1`

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repositories.ErrNotFound
		}
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

// Set implements repositories.KeyValueStore
func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO client_storage (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	s.logger.Debug("client storage key written", zap.String("key", key))
	return nil
}

// Delete implements repositories.KeyValueStore
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM client_storage WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	s.logger.Debug("client storage key deleted", zap.String("key", key))
	return nil
}

// HealthCheck implements repositories.HealthChecker
func (s *KeyValueStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}
