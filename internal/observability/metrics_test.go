package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edubridge/platform/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordLogin(LoginSuccess)
	m.RecordLogin(LoginFailure)
	m.RecordLogin(LoginFailure)
	m.RecordSessionRestore(RestoreCorrupted)
	m.RecordPermissionCheck(models.RoleStudent, true)
	m.RecordPermissionCheck(models.RoleStudent, false)
	m.RecordPermissionCheck("", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues(LoginSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues(LoginFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionRestores.WithLabelValues(RestoreCorrupted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.permissionChecks.WithLabelValues("STUDENT", "allow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.permissionChecks.WithLabelValues("STUDENT", "deny")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.permissionChecks.WithLabelValues("ANONYMOUS", "deny")))
}

func TestPrometheusMetrics_PrivateRegistry(t *testing.T) {
	// two instances must not collide on registration
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()

	a.RecordLogin(LoginSuccess)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.loginAttempts.WithLabelValues(LoginSuccess)))
}

func TestPrometheusMetrics_Handler(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordLogin(LoginSuccess)
	m.RecordRequest("/api/v1/auth/login", http.MethodPost, http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `edubridge_login_attempts_total{result="success"} 1`))
	assert.Contains(t, body, `edubridge_http_requests_total{method="POST",route="/api/v1/auth/login",status="200"} 1`)
	assert.Contains(t, body, "edubridge_http_request_duration_seconds")
}

func TestNopMetrics(t *testing.T) {
	var m Metrics = NopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordLogin(LoginSuccess)
		m.RecordSessionRestore(RestoreEmpty)
		m.RecordPermissionCheck(models.RoleAdmin, true)
	})
}
