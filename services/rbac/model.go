package rbac

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/edubridge/platform/models"
)

// Model is the static role -> (resource, action) grant table.
// It is immutable after construction.
type Model struct {
	grants map[models.Role]map[models.Permission]struct{}
}

// NewModel builds a Model from a role -> grants mapping
func NewModel(table map[models.Role][]models.Permission) *Model {
	m := &Model{grants: make(map[models.Role]map[models.Permission]struct{}, len(table))}
	for role, perms := range table {
		set := make(map[models.Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		m.grants[role] = set
	}
	return m
}

// Allows reports whether role holds exactly (resource, action)
func (m *Model) Allows(role models.Role, resource string, action models.Action) bool {
	set, ok := m.grants[role]
	if !ok {
		return false
	}
	_, ok = set[models.Permission{Resource: resource, Action: action}]
	return ok
}

// Grants returns the sorted grants of a role; unknown roles have none
func (m *Model) Grants(role models.Role) []models.Permission {
	set := m.grants[role]
	out := make([]models.Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// Roles returns the roles that have an entry in the model
func (m *Model) Roles() []models.Role {
	roles := make([]models.Role, 0, len(m.grants))
	for _, r := range models.AllRoles() {
		if _, ok := m.grants[r]; ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// ParseModel decodes a JSON grant table of the form
// {"STUDENT": [{"resource": "dashboard", "action": "read"}]}
func ParseModel(r io.Reader) (*Model, error) {
	var raw map[string][]models.Permission
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode permission model: %w", err)
	}

	table := make(map[models.Role][]models.Permission, len(raw))
	for name, perms := range raw {
		role, err := models.ParseRole(name)
		if err != nil {
			return nil, err
		}
		for i, p := range perms {
			if strings.TrimSpace(p.Resource) == "" {
				return nil, fmt.Errorf("role %s grant %d: resource is required", role, i)
			}
			if !p.Action.IsValid() {
				return nil, fmt.Errorf("role %s grant %d: invalid action %q", role, i, p.Action)
			}
		}
		table[role] = append(table[role], perms...)
	}
	return NewModel(table), nil
}

// LoadModelFile reads a JSON grant table from disk
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open permission model: %w", err)
	}
	defer f.Close()
	return ParseModel(f)
}

func grant(resource string, actions ...models.Action) []models.Permission {
	out := make([]models.Permission, 0, len(actions))
	for _, a := range actions {
		out = append(out, models.Permission{Resource: resource, Action: a})
	}
	return out
}

func grants(groups ...[]models.Permission) []models.Permission {
	var out []models.Permission
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultModel returns the built-in EduBridge grant table
func DefaultModel() *Model {
	read, create, update, del := models.ActionRead, models.ActionCreate, models.ActionUpdate, models.ActionDelete
	crud := models.CRUD()

	return NewModel(map[models.Role][]models.Permission{
		models.RoleStudent: grants(
			grant("dashboard", read),
			grant("analytics", read),
			grant("courses", read),
			grant("assignments", read, create, update),
			grant("achievements", read),
			grant("chat", read, create),
			grant("forum", read, create),
			grant("notifications", read),
			grant("profile", read, update),
		),
		models.RoleParent: grants(
			grant("dashboard", read),
			grant("analytics", read),
			grant("children", read),
			grant("reports", read),
			grant("chat", read, create),
			grant("notifications", read),
			grant("profile", read, update),
		),
		models.RoleInstitution: grants(
			grant("dashboard", read),
			grant("analytics", read),
			grant("students", crud...),
			grant("courses", crud...),
			grant("reports", read, create),
			grant("chat", read, create),
			grant("forum", read, create, update, del),
			grant("notifications", read, create),
			grant("profile", read, update),
		),
		models.RoleCompany: grants(
			grant("dashboard", read),
			grant("analytics", read),
			grant("jobs", crud...),
			grant("candidates", read),
			grant("chat", read, create),
			grant("notifications", read),
			grant("profile", read, update),
		),
		models.RoleAdmin: grants(
			grant("dashboard", read),
			grant("analytics", read),
			grant("admin_panel", read, update),
			grant("users", crud...),
			grant("institutions", read, update),
			grant("companies", read, update),
			grant("reports", read, create),
			grant("settings", read, update),
			grant("notifications", read, create),
			grant("profile", read, update),
		),
	})
}
