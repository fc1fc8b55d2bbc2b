package identity

import (
	"time"

	"github.com/edubridge/platform/internal/observability"
	"github.com/edubridge/platform/repositories"
	"github.com/edubridge/platform/services/auth"
	"github.com/edubridge/platform/services/rbac"
	"github.com/edubridge/platform/services/session"
	"go.uber.org/zap"
)

// Factory builds an independent Provider per client context. The directory,
// verifier and evaluator are shared; the auth state and session store are
// per client.
type Factory struct {
	Directory  auth.Directory
	Verifier   auth.Verifier
	Evaluator  *rbac.Evaluator
	SessionKey string
	LoginDelay time.Duration
	Metrics    observability.Metrics
	Logger     *zap.Logger
}

// NewProvider returns an unmounted Provider whose session lives in kv
func (f *Factory) NewProvider(kv repositories.KeyValueStore) *Provider {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	evaluator := f.Evaluator
	if evaluator == nil {
		evaluator = rbac.NewEvaluator(nil)
	}

	svc := auth.NewService(f.Directory, f.Verifier, auth.NewState(), logger,
		auth.WithLoginDelay(f.LoginDelay),
		auth.WithPermissionModel(evaluator.Model()),
	)
	sessions := session.NewStore(kv, f.SessionKey, logger)

	return NewProvider(svc, sessions, evaluator, logger, WithMetrics(f.Metrics))
}
