package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/services"
	"github.com/edubridge/platform/services/rbac"
	"go.uber.org/zap"
)

// RegisterInput carries the fields of a self-service registration
type RegisterInput struct {
	Email    string
	Password string
	Role     models.Role
	Profile  models.Profile
}

// Service validates credentials against a Directory and owns the
// current-user State of one client context
type Service struct {
	directory  Directory
	verifier   Verifier
	state      *State
	model      *rbac.Model
	loginDelay time.Duration
	logger     *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLoginDelay adds a fixed wait before every credential check
func WithLoginDelay(d time.Duration) Option {
	return func(s *Service) { s.loginDelay = d }
}

// WithPermissionModel sets the model used to fill User.Permissions on registration
func WithPermissionModel(m *rbac.Model) Option {
	return func(s *Service) { s.model = m }
}

// NewService creates an auth service bound to state
func NewService(directory Directory, verifier Verifier, state *State, logger *zap.Logger, opts ...Option) *Service {
	if verifier == nil {
		verifier = NonEmptyVerifier{}
	}
	if state == nil {
		state = NewState()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		directory: directory,
		verifier:  verifier,
		state:     state,
		model:     rbac.DefaultModel(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the credentials and, on success, makes the account the
// current user. On any failure the state is left untouched.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	account, ok := s.directory.Lookup(email)
	if !ok || !s.verifier.Verify(account, password) {
		s.logger.Info("login rejected", zap.String("email", models.NormalizeEmail(email)))
		return nil, services.ErrInvalidCredentials
	}
	if !account.User.IsActive() {
		s.logger.Info("login rejected for inactive account",
			zap.String("user_id", account.User.ID),
			zap.String("status", string(account.User.Status)))
		return nil, services.ErrAccountDisabled
	}

	s.state.set(&account.User)
	s.logger.Info("login succeeded",
		zap.String("user_id", account.User.ID),
		zap.String("role", string(account.User.Role)))
	return account.User.Clone(), nil
}

// Register adds a new account to the directory and logs it in. The login
// delay runs before the account is stored, so a cancelled registration
// leaves the directory untouched.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, services.ErrInvalidInput
	}
	if !in.Role.IsValid() {
		return nil, services.ErrInvalidRole.WithDetail("role", string(in.Role))
	}

	hash, err := s.verifier.Hash(in.Password)
	if err != nil {
		if services.IsValidationError(err) {
			return nil, err
		}
		return nil, services.WrapInternal("failed to store credential", err)
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user := models.NewUser(in.Email, in.Role, in.Profile)
	user.Permissions = s.model.Grants(in.Role)
	if err := s.directory.Add(&Account{User: *user, PasswordHash: hash}); err != nil {
		return nil, err
	}

	s.state.set(user)
	s.logger.Info("account registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return user.Clone(), nil
}

// Logout clears the current user. Calling it when anonymous is a no-op.
func (s *Service) Logout() {
	if u := s.state.Current(); u != nil {
		s.logger.Info("logout", zap.String("user_id", u.ID))
	}
	s.state.clear()
}

// SetCurrentUser installs a user without checking credentials. It is for
// session restore, where the record comes from an earlier successful login.
func (s *Service) SetCurrentUser(user *models.User) {
	if user == nil {
		s.state.clear()
		return
	}
	s.state.set(user)
}

// CurrentUser returns a copy of the current user, or nil
func (s *Service) CurrentUser() *models.User {
	return s.state.Current()
}

// Directory returns the account directory
func (s *Service) Directory() Directory {
	return s.directory
}

func (s *Service) wait(ctx context.Context) error {
	if s.loginDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.loginDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("login aborted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
