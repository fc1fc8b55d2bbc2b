package app

import (
	"context"
	"fmt"
	"time"

	"github.com/edubridge/platform/config"
	"github.com/edubridge/platform/internal/observability"
	"github.com/edubridge/platform/middleware"
	"github.com/edubridge/platform/repositories"
	"github.com/edubridge/platform/repositories/memory"
	"github.com/edubridge/platform/repositories/postgres"
	"github.com/edubridge/platform/repositories/redis"
	"github.com/edubridge/platform/services/audit"
	"github.com/edubridge/platform/services/auth"
	"github.com/edubridge/platform/services/identity"
	"github.com/edubridge/platform/services/rbac"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Session storage backend and its readiness probe
	Store  repositories.KeyValueStore
	Health map[string]repositories.HealthChecker

	// Identity
	Model     *rbac.Model
	Evaluator *rbac.Evaluator
	Directory *auth.MemoryDirectory
	Verifier  auth.Verifier
	Providers *identity.Factory

	// HTTP middleware
	ClientContext  *middleware.ClientContext
	AuthMiddleware *middleware.AuthMiddleware

	Metrics *observability.PrometheusMetrics

	// Audit trail; nil when AUDIT_ENABLED=false
	Audit *audit.Service

	auditRepo repositories.AuditRepository
	closers   []func() error
}

// auditStopTimeout bounds how long shutdown waits for queued audit events
const auditStopTimeout = 5 * time.Second

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Health: make(map[string]repositories.HealthChecker),
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = observability.NewPrometheusMetrics()
	}

	if err := deps.initStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	if err := deps.initIdentity(cfg); err != nil {
		deps.closeAll()
		return nil, fmt.Errorf("failed to initialize identity: %w", err)
	}

	if err := deps.initAudit(cfg); err != nil {
		deps.closeAll()
		return nil, fmt.Errorf("failed to initialize audit trail: %w", err)
	}

	deps.ClientContext = middleware.NewClientContext(cfg.Session, deps.Store, deps.Providers, logger)
	deps.AuthMiddleware = middleware.NewAuthMiddleware(deps.AuditRecorder(), logger)

	logger.Info("all dependencies initialized successfully",
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("strict_passwords", cfg.Auth.StrictPasswords),
		zap.Bool("audit_enabled", deps.Audit != nil))
	return deps, nil
}

// initStore opens the configured key-value backend
func (d *Dependencies) initStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Session.Backend {
	case config.BackendPostgres:
		db, err := postgres.NewDB(ctx, cfg.Database, d.Logger)
		if err != nil {
			return err
		}
		if err := db.InitSchema(ctx); err != nil {
			_ = db.Close()
			return err
		}
		store := postgres.NewKeyValueStore(db, d.Logger)
		d.Store = store
		d.Health["database"] = store
		d.auditRepo = postgres.NewAuditRepository(db, d.Logger)
		d.closers = append(d.closers, db.Close)

	case config.BackendRedis:
		store, err := redis.Connect(ctx, cfg.Redis, d.Logger)
		if err != nil {
			return err
		}
		d.Store = store
		d.Health["redis"] = store
		d.auditRepo = store.AuditRepository(int64(cfg.Audit.Retain))
		d.closers = append(d.closers, store.Close)

	default:
		store := memory.NewStore()
		d.Store = store
		d.Health["memory"] = store
		d.auditRepo = memory.NewAuditRepository(cfg.Audit.Retain)
	}

	d.Logger.Info("session store initialized", zap.String("backend", cfg.Session.Backend))
	return nil
}

// initIdentity loads the permission model and builds the shared directory
func (d *Dependencies) initIdentity(cfg *config.Config) error {
	model := rbac.DefaultModel()
	if cfg.RBAC.PolicyFile != "" {
		loaded, err := rbac.LoadModelFile(cfg.RBAC.PolicyFile)
		if err != nil {
			return err
		}
		model = loaded
		d.Logger.Info("permission model loaded", zap.String("file", cfg.RBAC.PolicyFile))
	}
	d.Model = model
	d.Evaluator = rbac.NewEvaluator(model)

	var demoHash []byte
	if cfg.Auth.StrictPasswords {
		verifier := auth.NewBcryptVerifier(cfg.Auth.BcryptCost)
		hash, err := verifier.Hash(cfg.Auth.DemoPassword)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}
		demoHash = hash
		d.Verifier = verifier
	} else {
		d.Verifier = auth.NonEmptyVerifier{}
		d.Logger.Warn("demo credential mode: any non-empty password is accepted")
	}

	d.Directory = auth.NewDemoDirectory(model, demoHash)

	var metrics observability.Metrics = observability.NopMetrics{}
	if d.Metrics != nil {
		metrics = d.Metrics
	}

	d.Providers = &identity.Factory{
		Directory:  d.Directory,
		Verifier:   d.Verifier,
		Evaluator:  d.Evaluator,
		SessionKey: cfg.Session.Key,
		LoginDelay: cfg.Auth.LoginDelay,
		Metrics:    metrics,
		Logger:     d.Logger,
	}
	return nil
}

// initAudit starts the background audit writer on the session backend
func (d *Dependencies) initAudit(cfg *config.Config) error {
	if !cfg.Audit.Enabled {
		d.Logger.Info("audit trail disabled")
		return nil
	}

	service := audit.NewService(d.auditRepo, d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.Workers,
	})
	if err := service.Start(); err != nil {
		return err
	}
	d.Audit = service
	// registered after the store so it drains before the backend closes
	d.closers = append(d.closers, func() error { return service.Stop(auditStopTimeout) })
	return nil
}

// AuditRecorder returns the sink for audit events, or nil when auditing is off
func (d *Dependencies) AuditRecorder() middleware.AuditRecorder {
	if d.Audit == nil {
		return nil
	}
	return d.Audit
}

func (d *Dependencies) closeAll() []error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errs
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	errs := d.closeAll()

	// Sync logger
	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
