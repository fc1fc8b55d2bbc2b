package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/edubridge/platform/middleware"
	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/utils"
	"go.uber.org/zap"
)

// UserLister lists directory accounts
type UserLister interface {
	List() []models.User
}

// AuditReader reads the identity audit trail
type AuditReader interface {
	Recent(ctx context.Context, n int64) ([]*models.AuditEvent, error)
}

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// UserListResponse is the admin directory listing
type UserListResponse struct {
	Users []models.User `json:"users"`
	Total int           `json:"total"`
}

// AdminHandler serves administrative views; routes are guarded by
// admin_panel permissions
type AdminHandler struct {
	users  UserLister
	events AuditReader
	logger *zap.Logger
}

// AuditListResponse is a page of the audit trail, newest first
type AuditListResponse struct {
	Events []*models.AuditEvent `json:"events"`
	Total  int                  `json:"total"`
}

// NewAdminHandler creates a new AdminHandler; events may be nil when
// auditing is disabled
func NewAdminHandler(users UserLister, events AuditReader, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, events: events, logger: logger}
}

// HandleListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.users.List()
	if users == nil {
		users = []models.User{}
	}
	_ = utils.WriteOK(w, UserListResponse{Users: users, Total: len(users)})
}

// HandleListAuditEvents handles GET /api/v1/admin/audit?limit=N
func (h *AdminHandler) HandleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		_ = utils.WriteError(w, http.StatusServiceUnavailable, "Audit trail is disabled", nil)
		return
	}

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAuditLimit {
			_ = utils.WriteBadRequest(w, "limit must be between 1 and 500", map[string]interface{}{"limit": raw})
			return
		}
		limit = n
	}

	events, err := h.events.Recent(r.Context(), int64(limit))
	if err != nil {
		h.logger.Error("failed to read audit trail",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		_ = utils.WriteError(w, http.StatusServiceUnavailable, "Audit trail is unavailable", nil)
		return
	}
	if events == nil {
		events = []*models.AuditEvent{}
	}
	_ = utils.WriteOK(w, AuditListResponse{Events: events, Total: len(events)})
}
