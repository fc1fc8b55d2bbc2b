package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/edubridge/platform/models"
)

// ErrNotFound is returned by KeyValueStore.Get when the key is absent
var ErrNotFound = errors.New("key not found")

// KeyValueStore is the persistence boundary for client-side state.
// It mirrors the get/set/delete surface of browser local storage so the
// session logic runs unchanged over any backend.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}

// AuditRepository persists the identity audit trail
type AuditRepository interface {
	Insert(ctx context.Context, event *models.AuditEvent) error

	// Recent returns up to n of the newest events, newest first
	Recent(ctx context.Context, n int64) ([]*models.AuditEvent, error)
}

// HealthChecker is implemented by backends that can report readiness
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ScopedStore namespaces every key of an underlying store
type ScopedStore struct {
	store KeyValueStore
	scope string
}

// Scoped returns a store whose keys are written as "<scope>:<key>"
func Scoped(store KeyValueStore, scope string) *ScopedStore {
	return &ScopedStore{store: store, scope: strings.TrimSuffix(scope, ":")}
}

// Key returns the fully qualified key for key
func (s *ScopedStore) Key(key string) string {
	if s.scope == "" {
		return key
	}
	return s.scope + ":" + key
}

// Get implements KeyValueStore
func (s *ScopedStore) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.Key(key))
}

// Set implements KeyValueStore
func (s *ScopedStore) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.Key(key), value)
}

// Delete implements KeyValueStore
func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.Key(key))
}
