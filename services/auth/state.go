package auth

import (
	"sync"

	"github.com/edubridge/platform/models"
)

// State holds the current user of one client context. It is either
// Anonymous (no user) or Authenticated(user). Only Service writes to it.
type State struct {
	mu   sync.RWMutex
	user *models.User
}

// NewState returns an Anonymous state
func NewState() *State {
	return &State{}
}

// Current returns a copy of the authenticated user, or nil when anonymous
func (s *State) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// IsAuthenticated reports whether a user is set
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *State) set(user *models.User) {
	s.mu.Lock()
	s.user = user.Clone()
	s.mu.Unlock()
}

func (s *State) clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}
