// Package identity exposes the authentication context consumed by the rest of
// the application: the current user, a loading flag covering session
// restore, and login/logout/permission operations that keep the session
// store in step with the auth service.
package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/edubridge/platform/internal/observability"
	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/services"
	"github.com/edubridge/platform/services/auth"
	"github.com/edubridge/platform/services/rbac"
	"github.com/edubridge/platform/services/session"
	"go.uber.org/zap"
)

// Provider is the authentication context of one client
type Provider struct {
	auth      *auth.Service
	sessions  *session.Store
	evaluator *rbac.Evaluator
	metrics   observability.Metrics
	logger    *zap.Logger

	mu      sync.RWMutex
	user    *models.User
	loading bool

	mountOnce sync.Once
	ready     chan struct{}
}

// Option configures a Provider
type Option func(*Provider)

// WithMetrics records login, restore and permission-check outcomes
func WithMetrics(m observability.Metrics) Option {
	return func(p *Provider) {
		if m != nil {
			p.metrics = m
		}
	}
}

// NewProvider creates a provider in the loading state. Call Mount to
// restore any persisted session and leave the loading state.
func NewProvider(authService *auth.Service, sessions *session.Store, evaluator *rbac.Evaluator, logger *zap.Logger, opts ...Option) *Provider {
	if evaluator == nil {
		evaluator = rbac.NewEvaluator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		auth:      authService,
		sessions:  sessions,
		evaluator: evaluator,
		metrics:   observability.NopMetrics{},
		logger:    logger,
		loading:   true,
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mount restores the persisted session, if any. A session that cannot be
// restored, or whose user no longer matches a directory account, is cleared
// and the provider starts anonymous; restore errors are never returned. Only
// the first call has any effect.
func (p *Provider) Mount(ctx context.Context) {
	p.mountOnce.Do(func() {
		defer close(p.ready)

		user, err := p.sessions.Restore(ctx)
		switch {
		case err != nil:
			outcome := observability.RestoreUnavailable
			if errors.Is(err, session.ErrCorrupted) {
				outcome = observability.RestoreCorrupted
			}
			p.metrics.RecordSessionRestore(outcome)
			p.logger.Warn("session restore failed, starting anonymous",
				zap.String("outcome", outcome),
				zap.Error(err))
			if clearErr := p.sessions.Clear(ctx); clearErr != nil {
				p.logger.Warn("failed to clear session after restore failure", zap.Error(clearErr))
			}
			p.finishMount(nil)
		case user == nil:
			p.metrics.RecordSessionRestore(observability.RestoreEmpty)
			p.finishMount(nil)
		case !p.knownAccount(user):
			p.metrics.RecordSessionRestore(observability.RestoreUnknown)
			p.logger.Warn("restored user has no matching account, starting anonymous",
				zap.String("user_id", user.ID),
				zap.String("email", user.Email))
			if clearErr := p.sessions.Clear(ctx); clearErr != nil {
				p.logger.Warn("failed to clear session for unknown account", zap.Error(clearErr))
			}
			p.finishMount(nil)
		default:
			p.metrics.RecordSessionRestore(observability.RestoreRestored)
			p.logger.Debug("session restored",
				zap.String("user_id", user.ID),
				zap.String("role", string(user.Role)))
			p.finishMount(user)
		}
	})
}

// knownAccount reports whether user still matches the directory account
// registered under its email
func (p *Provider) knownAccount(user *models.User) bool {
	dir := p.auth.Directory()
	if dir == nil {
		return true
	}
	account, ok := dir.Lookup(user.Email)
	return ok && account.User.ID == user.ID
}

func (p *Provider) finishMount(user *models.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// a login that completed while restoring wins over the restored record
	if p.user == nil && user != nil {
		p.auth.SetCurrentUser(user)
		p.user = user
	}
	p.loading = false
}

// Ready is closed once Mount has finished
func (p *Provider) Ready() <-chan struct{} {
	return p.ready
}

// IsLoading reports whether the initial session restore is still pending
func (p *Provider) IsLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// User returns a copy of the current user, or nil when anonymous
func (p *Provider) User() *models.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user.Clone()
}

// IsAuthenticated reports whether a user is signed in
func (p *Provider) IsAuthenticated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user != nil
}

// Login signs the user in and persists the session. It returns false on any
// failure and leaves the current user unchanged. A failure to persist does
// not fail the login.
func (p *Provider) Login(ctx context.Context, email, password string) bool {
	user, err := p.auth.Login(ctx, email, password)
	if err != nil {
		p.metrics.RecordLogin(loginResult(err))
		return false
	}

	p.metrics.RecordLogin(observability.LoginSuccess)
	p.signIn(ctx, user)
	return true
}

// Register creates an account, signs it in and persists the session. The
// domain error is returned so callers can tell a duplicate email apart from
// invalid input.
func (p *Provider) Register(ctx context.Context, in auth.RegisterInput) (bool, error) {
	user, err := p.auth.Register(ctx, in)
	if err != nil {
		return false, err
	}

	p.signIn(ctx, user)
	return true, nil
}

// Logout signs the current user out and removes the persisted session
func (p *Provider) Logout(ctx context.Context) {
	p.auth.Logout()

	p.mu.Lock()
	p.user = nil
	p.mu.Unlock()

	if err := p.sessions.Clear(ctx); err != nil {
		p.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
}

// HasPermission evaluates the current user's role grants. Anonymous callers
// are denied.
func (p *Provider) HasPermission(resource string, action models.Action) bool {
	user := p.User()
	allowed := p.evaluator.HasPermission(user, resource, action)

	var role models.Role
	if user != nil {
		role = user.Role
	}
	p.metrics.RecordPermissionCheck(role, allowed)
	return allowed
}

// Grants returns the permission set of the current user's role
func (p *Provider) Grants() []models.Permission {
	user := p.User()
	if user == nil {
		return nil
	}
	return p.evaluator.Model().Grants(user.Role)
}

func (p *Provider) signIn(ctx context.Context, user *models.User) {
	p.mu.Lock()
	p.user = user.Clone()
	p.mu.Unlock()

	if err := p.sessions.Save(ctx, user); err != nil {
		p.logger.Warn("failed to persist session",
			zap.String("user_id", user.ID),
			zap.Error(err))
	}
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, services.ErrAccountDisabled):
		return observability.LoginDisabled
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return observability.LoginCanceled
	default:
		return observability.LoginFailure
	}
}
