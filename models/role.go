package models

import (
	"errors"
	"fmt"
	"strings"
)

// Role represents the single platform role a user holds
type Role string

const (
	RoleStudent     Role = "STUDENT"
	RoleParent      Role = "PARENT"
	RoleInstitution Role = "INSTITUTION"
	RoleCompany     Role = "COMPANY"
	RoleAdmin       Role = "ADMIN"
)

// ErrUnknownRole is returned when a role value is not one of the five platform roles
var ErrUnknownRole = errors.New("unknown role")

// AllRoles returns every platform role in a stable order
func AllRoles() []Role {
	return []Role{RoleStudent, RoleParent, RoleInstitution, RoleCompany, RoleAdmin}
}

// IsValid reports whether r is one of the platform roles
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleParent, RoleInstitution, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a case-insensitive role name into a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// RoleVisitor handles each platform role. Adding a role adds a method here,
// so every implementation stops compiling until it handles the new role.
type RoleVisitor[T any] interface {
	Student() T
	Parent() T
	Institution() T
	Company() T
	Admin() T
}

// VisitRole dispatches r to the matching visitor method
func VisitRole[T any](r Role, v RoleVisitor[T]) (T, error) {
	switch r {
	case RoleStudent:
		return v.Student(), nil
	case RoleParent:
		return v.Parent(), nil
	case RoleInstitution:
		return v.Institution(), nil
	case RoleCompany:
		return v.Company(), nil
	case RoleAdmin:
		return v.Admin(), nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
}
