package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction names an identity event worth keeping a trail of
type AuditAction string

const (
	AuditActionLoginSucceeded AuditAction = "login_succeeded"
	AuditActionLoginFailed    AuditAction = "login_failed"
	AuditActionLogout         AuditAction = "logout"
	AuditActionRegistered     AuditAction = "user_registered"
	AuditActionAccessDenied   AuditAction = "access_denied"
)

// AuditEvent is one entry of the identity audit trail
type AuditEvent struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Action    AuditAction `json:"action" db:"action"`
	UserID    string      `json:"user_id,omitempty" db:"user_id"`
	Email     string      `json:"email,omitempty" db:"email"`
	Role      Role        `json:"role,omitempty" db:"role"`
	ClientID  string      `json:"client_id,omitempty" db:"client_id"`
	RequestID string      `json:"request_id,omitempty" db:"request_id"`
	Detail    string      `json:"detail,omitempty" db:"detail"`
	Timestamp time.Time   `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuditEvent model
func (AuditEvent) TableName() string {
	return "auth_events"
}

// NewAuditEvent creates an event stamped with a fresh id and the current time
func NewAuditEvent(action AuditAction) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.New(),
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

// WithUser copies the identifying fields of u; a nil user is a no-op
func (e *AuditEvent) WithUser(u *User) *AuditEvent {
	if u == nil {
		return e
	}
	e.UserID = u.ID
	e.Email = u.Email
	e.Role = u.Role
	return e
}

// WithEmail records the email a caller tried to use
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithRequest records the browser context and request that triggered the event
func (e *AuditEvent) WithRequest(clientID, requestID string) *AuditEvent {
	e.ClientID = clientID
	e.RequestID = requestID
	return e
}

// WithDetail attaches a short free-form note, e.g. the denied permission
func (e *AuditEvent) WithDetail(detail string) *AuditEvent {
	e.Detail = detail
	return e
}
