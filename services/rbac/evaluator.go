package rbac

import "github.com/edubridge/platform/models"

// Evaluator answers permission questions against a Model.
// It consults the user's role only; User.Permissions is never read.
type Evaluator struct {
	model *Model
}

// NewEvaluator creates an evaluator; a nil model means DefaultModel
func NewEvaluator(model *Model) *Evaluator {
	if model == nil {
		model = DefaultModel()
	}
	return &Evaluator{model: model}
}

// HasPermission returns true iff the user's role grants (resource, action).
// A nil user or an unknown role is denied.
func (e *Evaluator) HasPermission(user *models.User, resource string, action models.Action) bool {
	if user == nil {
		return false
	}
	return e.model.Allows(user.Role, resource, action)
}

// Model returns the underlying grant table
func (e *Evaluator) Model() *Model {
	return e.model
}
