package models

import "fmt"

// Action is the verb half of a permission
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// IsValid reports whether a is one of the supported actions
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// CRUD returns all four actions
func CRUD() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

// Permission is a (resource, action) capability pair
type Permission struct {
	Resource string `json:"resource"`
	Action   Action `json:"action"`
}

// String returns the resource:action form used in logs and metrics
func (p Permission) String() string {
	return fmt.Sprintf("%s:%s", p.Resource, p.Action)
}
