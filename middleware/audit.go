package middleware

import (
	"context"

	"github.com/edubridge/platform/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditRecorder accepts identity audit events without blocking
type AuditRecorder interface {
	Record(event *models.AuditEvent) error
}

// NopAuditRecorder discards events
type NopAuditRecorder struct{}

// Record implements AuditRecorder
func (NopAuditRecorder) Record(*models.AuditEvent) error { return nil }

// NewRequestAuditEvent creates an event tagged with the request and client
// carried by ctx
func NewRequestAuditEvent(ctx context.Context, action models.AuditAction) *models.AuditEvent {
	var clientID string
	if id := GetClientIDFromContext(ctx); id != uuid.Nil {
		clientID = id.String()
	}
	return models.NewAuditEvent(action).WithRequest(clientID, GetRequestIDFromContext(ctx))
}

// RecordAudit hands event to recorder; a rejected event is logged, never
// surfaced to the caller
func RecordAudit(recorder AuditRecorder, event *models.AuditEvent, logger *zap.Logger) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(event); err != nil {
		logger.Debug("audit event not recorded",
			zap.String("action", string(event.Action)),
			zap.Error(err))
	}
}
