// Package observability provides structured logging and metrics for the
// EduBridge identity service.
//
// This package implements:
//   - zap logger construction from configuration
//   - Prometheus counters for logins, session restores, permission checks
//     and HTTP requests, kept on a private registry
//   - a no-op Metrics for tests and for deployments with metrics disabled
package observability
