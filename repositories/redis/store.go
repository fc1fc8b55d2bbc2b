package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edubridge/platform/config"
	"github.com/edubridge/platform/repositories"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store implements repositories.KeyValueStore on Redis. Keys are stored as-is
// and never expire.
type Store struct {
	rdb    goredis.UniversalClient
	logger *zap.Logger
}

// Connect opens a Redis client from config and verifies it with PING
func Connect(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis connection established", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return NewStore(rdb, logger), nil
}

// NewStore wraps an existing client
func NewStore(rdb goredis.UniversalClient, logger *zap.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

// Get implements repositories.KeyValueStore
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", repositories.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return v, nil
}

// Set implements repositories.KeyValueStore
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Delete implements repositories.KeyValueStore
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// HealthCheck implements repositories.HealthChecker
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (s *Store) Close() error {
	s.logger.Info("closing redis connection")
	return s.rdb.Close()
}
