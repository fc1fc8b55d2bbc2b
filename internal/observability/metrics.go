package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/edubridge/platform/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login results
const (
	LoginSuccess  = "success"
	LoginFailure  = "failure"
	LoginDisabled = "disabled"
	LoginCanceled = "canceled"
)

// Session restore outcomes
const (
	RestoreEmpty       = "empty"
	RestoreRestored    = "restored"
	RestoreCorrupted   = "corrupted"
	RestoreUnavailable = "unavailable"
	RestoreUnknown     = "unknown_account"
)

// Metrics collects identity metrics.
type Metrics interface {
	RecordLogin(result string)
	RecordSessionRestore(outcome string)
	RecordPermissionCheck(role models.Role, allowed bool)
}

// PrometheusMetrics implements Metrics on its own registry
type PrometheusMetrics struct {
	registry         *prometheus.Registry
	loginAttempts    *prometheus.CounterVec
	sessionRestores  *prometheus.CounterVec
	permissionChecks *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the EduBridge collectors on a fresh registry
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubridge_login_attempts_total",
				Help: "Login attempts by result.",
			},
			[]string{"result"},
		),
		sessionRestores: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubridge_session_restores_total",
				Help: "Session restores on provider mount by outcome.",
			},
			[]string{"outcome"},
		),
		permissionChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubridge_permission_checks_total",
				Help: "Permission checks by role and decision.",
			},
			[]string{"role", "decision"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edubridge_http_requests_total",
				Help: "HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edubridge_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		m.loginAttempts,
		m.sessionRestores,
		m.permissionChecks,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// RecordLogin implements Metrics
func (m *PrometheusMetrics) RecordLogin(result string) {
	m.loginAttempts.WithLabelValues(result).Inc()
}

// RecordSessionRestore implements Metrics
func (m *PrometheusMetrics) RecordSessionRestore(outcome string) {
	m.sessionRestores.WithLabelValues(outcome).Inc()
}

// RecordPermissionCheck implements Metrics
func (m *PrometheusMetrics) RecordPermissionCheck(role models.Role, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	if role == "" {
		role = "ANONYMOUS"
	}
	m.permissionChecks.WithLabelValues(string(role), decision).Inc()
}

// RecordRequest counts one finished HTTP request
func (m *PrometheusMetrics) RecordRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordLogin(string)                      {}
func (NopMetrics) RecordSessionRestore(string)             {}
func (NopMetrics) RecordPermissionCheck(models.Role, bool) {}
