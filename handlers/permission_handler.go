package handlers

import (
	"net/http"
	"strings"

	"github.com/edubridge/platform/middleware"
	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/utils"
	"go.uber.org/zap"
)

// GrantsResponse lists the permissions of the current role
type GrantsResponse struct {
	Role   models.Role         `json:"role"`
	Grants []models.Permission `json:"grants"`
}

// CheckResponse is the answer to a single permission question
type CheckResponse struct {
	Resource string        `json:"resource"`
	Action   models.Action `json:"action"`
	Allowed  bool          `json:"allowed"`
}

// PermissionHandler exposes the evaluator to clients
type PermissionHandler struct {
	logger *zap.Logger
}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler(logger *zap.Logger) *PermissionHandler {
	return &PermissionHandler{logger: logger}
}

// HandleList handles GET /api/v1/permissions
func (h *PermissionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	provider := middleware.MustProvider(r.Context())
	user := provider.User()
	if user == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	grants := provider.Grants()
	if grants == nil {
		grants = []models.Permission{}
	}
	_ = utils.WriteOK(w, GrantsResponse{Role: user.Role, Grants: grants})
}

// HandleCheck handles GET /api/v1/permissions/check?resource=&action=.
// Anonymous clients are answered, not rejected: they are never allowed.
func (h *PermissionHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resource := strings.TrimSpace(q.Get("resource"))
	action := models.Action(strings.ToLower(strings.TrimSpace(q.Get("action"))))

	fields := map[string]interface{}{}
	if resource == "" {
		fields["resource"] = "resource is required"
	}
	if !action.IsValid() {
		fields["action"] = "action must be one of: create, read, update, delete"
	}
	if len(fields) > 0 {
		_ = utils.WriteBadRequest(w, "Validation failed", fields)
		return
	}

	allowed := middleware.MustProvider(r.Context()).HasPermission(resource, action)
	_ = utils.WriteOK(w, CheckResponse{Resource: resource, Action: action, Allowed: allowed})
}
