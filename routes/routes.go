package routes

import (
	"net/http"
	"time"

	"github.com/edubridge/platform/app"
	"github.com/edubridge/platform/handlers"
	edumw "github.com/edubridge/platform/middleware"
	"github.com/edubridge/platform/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	var recorder edumw.RequestRecorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(edumw.RequestLogger(deps.Logger, recorder))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.Health, deps.Logger)
	var auditTrail handlers.AuditReader
	if deps.Audit != nil {
		auditTrail = deps.Audit
	}

	authHandler := handlers.NewAuthHandler(deps.AuditRecorder(), deps.Logger)
	permissions := handlers.NewPermissionHandler(deps.Logger)
	dashboardHandler := handlers.NewDashboardHandler(deps.Logger)
	admin := handlers.NewAdminHandler(deps.Directory, auditTrail, deps.Logger)
	guard := deps.AuthMiddleware

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	// API v1 routes; every request carries its client's auth provider
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.ClientContext.Handler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
		})

		r.Route("/permissions", func(r chi.Router) {
			r.With(guard.RequireAuth).Get("/", permissions.HandleList)
			r.Get("/check", permissions.HandleCheck)
		})

		r.With(guard.RequireAuth).Get("/dashboard", dashboardHandler.HandleDashboard)

		r.Route("/admin", func(r chi.Router) {
			r.Use(guard.RequirePermission("admin_panel", models.ActionRead))
			r.Get("/users", admin.HandleListUsers)
			r.Get("/audit", admin.HandleListAuditEvents)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
