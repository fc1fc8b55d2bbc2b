// Package session persists the authenticated user of a client context in a
// key-value store so it survives restarts of that client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/repositories"
	"go.uber.org/zap"
)

// DefaultKey is the storage key of the persisted user record
const DefaultKey = "edubridge_user"

// Kind classifies a restore failure
type Kind string

const (
	KindCorrupted   Kind = "corrupted"
	KindUnavailable Kind = "unavailable"
)

// Error is returned by Store operations that fail
type Error struct {
	Kind Kind
	Err  error
}

// Sentinels for errors.Is
var (
	ErrCorrupted   = &Error{Kind: KindCorrupted}
	ErrUnavailable = &Error{Kind: KindUnavailable}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("session %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Store reads and writes a single user record under a fixed key
type Store struct {
	kv     repositories.KeyValueStore
	key    string
	logger *zap.Logger
}

// NewStore creates a session store. An empty key selects DefaultKey.
func NewStore(kv repositories.KeyValueStore, key string, logger *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key, logger: logger}
}

// Key returns the storage key
func (s *Store) Key() string {
	return s.key
}

// Save writes the user record, replacing any previous one
func (s *Store) Save(ctx context.Context, user *models.User) error {
	if user == nil {
		return s.Clear(ctx)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return &Error{Kind: KindCorrupted, Err: err}
	}

	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	return nil
}

// Restore loads the persisted user.
//
// It returns (nil, nil) when nothing is stored. A value that does not decode
// into a valid user is deleted and reported as KindCorrupted, so the next
// Restore returns (nil, nil).
func (s *Store) Restore(ctx context.Context) (*models.User, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}

	user, decodeErr := decode(raw)
	if decodeErr == nil {
		return user, nil
	}

	s.logger.Warn("discarding corrupted session",
		zap.String("key", s.key),
		zap.Error(decodeErr))

	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.logger.Error("failed to delete corrupted session", zap.String("key", s.key), zap.Error(err))
	}

	return nil, &Error{Kind: KindCorrupted, Err: decodeErr}
}

// Clear removes the persisted user. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	return nil
}

func decode(raw string) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return &user, nil
}
