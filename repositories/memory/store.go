package memory

import (
	"context"
	"sync"

	"github.com/edubridge/platform/repositories"
)

// Store is an in-process KeyValueStore
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get implements repositories.KeyValueStore
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return v, nil
}

// Set implements repositories.KeyValueStore
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Delete implements repositories.KeyValueStore
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// HealthCheck implements repositories.HealthChecker
func (s *Store) HealthCheck(context.Context) error {
	return nil
}
