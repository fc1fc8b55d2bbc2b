package rbac

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edubridge/platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userWithRole(role models.Role) *models.User {
	return &models.User{ID: "u-1", Email: "u@example.com", Role: role, Status: models.StatusActive}
}

// universe is every (resource, action) pair any role in the model mentions,
// plus a few that no role holds
func universe(m *Model) []models.Permission {
	seen := map[models.Permission]struct{}{}
	var out []models.Permission
	resources := []string{"nonexistent", "admin_panel", "dashboard"}
	for _, role := range models.AllRoles() {
		for _, p := range m.Grants(role) {
			resources = append(resources, p.Resource)
		}
	}
	for _, r := range resources {
		for _, a := range models.CRUD() {
			p := models.Permission{Resource: r, Action: a}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func TestEvaluator_HasPermission_MatchesModelExactly(t *testing.T) {
	model := DefaultModel()
	evaluator := NewEvaluator(model)

	for _, role := range models.AllRoles() {
		granted := map[models.Permission]bool{}
		for _, p := range model.Grants(role) {
			granted[p] = true
		}
		require.NotEmpty(t, granted, "role %s has no grants", role)

		user := userWithRole(role)
		for _, p := range universe(model) {
			assert.Equal(t, granted[p], evaluator.HasPermission(user, p.Resource, p.Action),
				"role=%s permission=%s", role, p)
		}
	}
}

func TestEvaluator_HasPermission_NilUser(t *testing.T) {
	evaluator := NewEvaluator(nil)

	for _, p := range universe(evaluator.Model()) {
		assert.False(t, evaluator.HasPermission(nil, p.Resource, p.Action))
	}
}

func TestEvaluator_HasPermission_UnknownRoleDeniesAll(t *testing.T) {
	evaluator := NewEvaluator(DefaultModel())
	user := userWithRole(models.Role("SUPERUSER"))

	for _, p := range universe(evaluator.Model()) {
		assert.False(t, evaluator.HasPermission(user, p.Resource, p.Action))
	}
}

func TestEvaluator_HasPermission_IgnoresUserPermissions(t *testing.T) {
	evaluator := NewEvaluator(DefaultModel())
	user := userWithRole(models.RoleStudent)
	user.Permissions = []models.Permission{{Resource: "admin_panel", Action: models.ActionRead}}

	assert.False(t, evaluator.HasPermission(user, "admin_panel", models.ActionRead))
}

func TestEvaluator_NoWildcardsOrInheritance(t *testing.T) {
	evaluator := NewEvaluator(DefaultModel())
	admin := userWithRole(models.RoleAdmin)

	// admin does not inherit student grants
	assert.False(t, evaluator.HasPermission(admin, "assignments", models.ActionCreate))
	assert.False(t, evaluator.HasPermission(admin, "*", models.ActionRead))
	assert.False(t, evaluator.HasPermission(admin, "Dashboard", models.ActionRead))
}

func TestEvaluator_StudentScenario(t *testing.T) {
	evaluator := NewEvaluator(DefaultModel())
	student := userWithRole(models.RoleStudent)

	assert.True(t, evaluator.HasPermission(student, "dashboard", models.ActionRead))
	assert.False(t, evaluator.HasPermission(student, "admin_panel", models.ActionRead))
}

func TestEvaluator_Deterministic(t *testing.T) {
	evaluator := NewEvaluator(DefaultModel())
	user := userWithRole(models.RoleCompany)

	first := evaluator.HasPermission(user, "jobs", models.ActionDelete)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, evaluator.HasPermission(user, "jobs", models.ActionDelete))
	}
}

func TestModel_Grants(t *testing.T) {
	model := NewModel(map[models.Role][]models.Permission{
		models.RoleParent: {
			{Resource: "reports", Action: models.ActionRead},
			{Resource: "children", Action: models.ActionRead},
			{Resource: "children", Action: models.ActionRead},
		},
	})

	assert.Equal(t, []models.Permission{
		{Resource: "children", Action: models.ActionRead},
		{Resource: "reports", Action: models.ActionRead},
	}, model.Grants(models.RoleParent))
	assert.Empty(t, model.Grants(models.RoleAdmin))
	assert.Equal(t, []models.Role{models.RoleParent}, model.Roles())
}

func TestParseModel(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := `{
			"student": [{"resource": "dashboard", "action": "read"}],
			"ADMIN": [{"resource": "users", "action": "delete"}, {"resource": "labs", "action": "create"}]
		}`
		model, err := ParseModel(strings.NewReader(doc))
		require.NoError(t, err)

		assert.True(t, model.Allows(models.RoleStudent, "dashboard", models.ActionRead))
		assert.True(t, model.Allows(models.RoleAdmin, "labs", models.ActionCreate))
		assert.False(t, model.Allows(models.RoleAdmin, "dashboard", models.ActionRead))
		assert.False(t, model.Allows(models.RoleParent, "dashboard", models.ActionRead))
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"invalid json", `{"STUDENT": [`},
		{"unknown role", `{"PRINCIPAL": [{"resource": "dashboard", "action": "read"}]}`},
		{"unknown action", `{"STUDENT": [{"resource": "dashboard", "action": "execute"}]}`},
		{"empty resource", `{"STUDENT": [{"resource": " ", "action": "read"}]}`},
		{"unknown field", `{"STUDENT": [{"resource": "dashboard", "action": "read", "scope": "all"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModel(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadModelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"COMPANY": [{"resource": "jobs", "action": "read"}]}`), 0o600))

	model, err := LoadModelFile(path)
	require.NoError(t, err)
	assert.True(t, model.Allows(models.RoleCompany, "jobs", models.ActionRead))

	_, err = LoadModelFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
