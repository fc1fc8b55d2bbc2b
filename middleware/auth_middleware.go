package middleware

import (
	"net/http"

	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/utils"
	"go.uber.org/zap"
)

// AuthMiddleware guards routes on the request's auth provider
type AuthMiddleware struct {
	audit  AuditRecorder
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware; denied requests are
// reported to audit, which may be nil
func NewAuthMiddleware(audit AuditRecorder, logger *zap.Logger) *AuthMiddleware {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &AuthMiddleware{audit: audit, logger: logger}
}

// RequireAuth rejects anonymous clients with 401
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !MustProvider(ctx).IsAuthenticated() {
			m.logger.Debug("anonymous request to protected route",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects clients whose role lacks resource:action.
// Anonymous clients get 401, signed-in clients without the grant get 403.
func (m *AuthMiddleware) RequirePermission(resource string, action models.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			provider := MustProvider(ctx)

			if !provider.IsAuthenticated() {
				_ = utils.WriteUnauthorized(w, "")
				return
			}
			if !provider.HasPermission(resource, action) {
				user := provider.User()
				permission := models.Permission{Resource: resource, Action: action}.String()
				m.logger.Warn("permission denied",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.String("user_id", user.ID),
					zap.String("role", string(user.Role)),
					zap.String("permission", permission))
				RecordAudit(m.audit, NewRequestAuditEvent(ctx, models.AuditActionAccessDenied).
					WithUser(user).
					WithDetail(permission), m.logger)
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
