package handlers

import (
	"errors"
	"net/http"

	"github.com/edubridge/platform/dashboard"
	"github.com/edubridge/platform/middleware"
	"github.com/edubridge/platform/utils"
	"go.uber.org/zap"
)

// DashboardHandler serves the role-specific landing view
type DashboardHandler struct {
	logger *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{logger: logger}
}

// HandleDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	provider := middleware.MustProvider(r.Context())

	view, err := dashboard.Build(provider.User(), provider)
	if errors.Is(err, dashboard.ErrAnonymous) {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	if err != nil {
		h.logger.Error("failed to build dashboard",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, view)
}
