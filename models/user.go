package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStatus represents the lifecycle status of an account
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusPending   UserStatus = "pending"
	StatusSuspended UserStatus = "suspended"
)

// IsValid reports whether s is a known status
func (s UserStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending, StatusSuspended:
		return true
	}
	return false
}

// Profile holds display and contact attributes. None of it is security-relevant.
type Profile struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Avatar       string `json:"avatar,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Bio          string `json:"bio,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// DisplayName joins first and last name
func (p Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// User is the identity and authorization subject of the platform.
// Permissions is informational; authorization is derived from Role only.
type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	Status      UserStatus   `json:"status"`
	Profile     Profile      `json:"profile"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// userNamespace seeds name-based ids for directory accounts
var userNamespace = uuid.MustParse("6f1c3a52-4d0e-4c55-9b8e-2f0e8b1d7a10")

// NewUser creates a new active User with a random id
func NewUser(email string, role Role, profile Profile) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.NewString(),
		Email:     NormalizeEmail(email),
		Role:      role,
		Status:    StatusActive,
		Profile:   profile,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StableUserID derives a deterministic id from an email so that seeded
// accounts keep the same id across restarts
func StableUserID(email string) string {
	return uuid.NewSHA1(userNamespace, []byte(NormalizeEmail(email))).String()
}

// NormalizeEmail lowercases and trims an email used as a lookup key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the fields a persisted user record must carry
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("user id is required")
	}
	if u.Email == "" {
		return errors.New("user email is required")
	}
	if !u.Role.IsValid() {
		return ErrUnknownRole
	}
	if u.Status != "" && !u.Status.IsValid() {
		return errors.New("invalid user status")
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate shared state
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Permissions != nil {
		c.Permissions = make([]Permission, len(u.Permissions))
		copy(c.Permissions, u.Permissions)
	}
	return &c
}

// IsActive returns true if the account may sign in
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == StatusActive || u.Status == StatusPending
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
