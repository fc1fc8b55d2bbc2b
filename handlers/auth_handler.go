package handlers

import (
	"net/http"

	"github.com/edubridge/platform/middleware"
	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/services/auth"
	"github.com/edubridge/platform/utils"
	"go.uber.org/zap"
)

// invalidCredentialsMessage is shown for every failed login
const invalidCredentialsMessage = "Invalid email or password"

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	Role         string `json:"role" validate:"required,role"`
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"max=100"`
	Organization string `json:"organization,omitempty" validate:"max=200"`
}

// UserResponse wraps a user record
type UserResponse struct {
	User *models.User `json:"user"`
}

// SessionResponse describes the client's authentication context
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	IsLoading     bool         `json:"is_loading"`
	User          *models.User `json:"user"`
}

// AuthHandler serves login, registration, logout and the current session
type AuthHandler struct {
	audit  middleware.AuditRecorder
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler; audit may be nil
func NewAuthHandler(audit middleware.AuditRecorder, logger *zap.Logger) *AuthHandler {
	if audit == nil {
		audit = middleware.NopAuditRecorder{}
	}
	return &AuthHandler{audit: audit, logger: logger}
}

// HandleLogin handles POST /api/v1/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := middleware.MustProvider(ctx)

	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if !provider.Login(ctx, req.Email, req.Password) {
		middleware.RecordAudit(h.audit, middleware.NewRequestAuditEvent(ctx, models.AuditActionLoginFailed).
			WithEmail(req.Email), h.logger)
		_ = utils.WriteUnauthorized(w, invalidCredentialsMessage)
		return
	}

	user := provider.User()
	middleware.RecordAudit(h.audit, middleware.NewRequestAuditEvent(ctx, models.AuditActionLoginSucceeded).
		WithUser(user), h.logger)
	_ = utils.WriteOK(w, UserResponse{User: user})
}

// HandleRegister handles POST /api/v1/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := middleware.MustProvider(ctx)

	var req RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	ok, err := provider.Register(ctx, auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Profile: models.Profile{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Organization: req.Organization,
		},
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if !ok {
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	user := provider.User()
	middleware.RecordAudit(h.audit, middleware.NewRequestAuditEvent(ctx, models.AuditActionRegistered).
		WithUser(user), h.logger)
	_ = utils.WriteCreated(w, UserResponse{User: user})
}

// HandleLogout handles POST /api/v1/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := middleware.MustProvider(ctx)

	if user := provider.User(); user != nil {
		middleware.RecordAudit(h.audit, middleware.NewRequestAuditEvent(ctx, models.AuditActionLogout).
			WithUser(user), h.logger)
	}
	provider.Logout(ctx)
	utils.WriteNoContent(w)
}

// HandleMe handles GET /api/v1/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	provider := middleware.MustProvider(r.Context())
	user := provider.User()

	_ = utils.WriteOK(w, SessionResponse{
		Authenticated: user != nil,
		IsLoading:     provider.IsLoading(),
		User:          user,
	})
}
