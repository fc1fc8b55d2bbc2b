package postgres

import (
	"context"
	"fmt"

	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements repositories.AuditRepository on auth_events
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Insert appends one event to the trail
func (r *AuditRepository) Insert(ctx context.Context, event *models.AuditEvent) error {
	query := `
		INSERT INTO auth_events (
			id, action, user_id, email, role, client_id, request_id, detail, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Action,
		event.UserID,
		event.Email,
		event.Role,
		event.ClientID,
		event.RequestID,
		event.Detail,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}

	r.logger.Debug("audit event inserted",
		zap.String("id", event.ID.String()),
		zap.String("action", string(event.Action)))
	return nil
}

// Recent returns up to n of the newest events, newest first
func (r *AuditRepository) Recent(ctx context.Context, n int64) ([]*models.AuditEvent, error) {
	if n <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, action, user_id, email, role, client_id, request_id, detail, timestamp
		FROM auth_events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []*models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		if err := rows.Scan(&e.ID, &e.Action, &e.UserID, &e.Email, &e.Role,
			&e.ClientID, &e.RequestID, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}
	return events, nil
}
