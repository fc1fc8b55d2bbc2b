package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edubridge/platform/models"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultAuditKey is the list that holds the audit trail
const DefaultAuditKey = "edubridge:auth_events"

// AuditRepository keeps the newest events in a capped Redis list
type AuditRepository struct {
	rdb    goredis.UniversalClient
	key    string
	maxLen int64
	logger *zap.Logger
}

// NewAuditRepository writes to key, keeping at most maxLen entries.
// maxLen <= 0 leaves the list uncapped.
func NewAuditRepository(rdb goredis.UniversalClient, key string, maxLen int64, logger *zap.Logger) *AuditRepository {
	if key == "" {
		key = DefaultAuditKey
	}
	return &AuditRepository{rdb: rdb, key: key, maxLen: maxLen, logger: logger}
}

// AuditRepository returns an audit repository sharing the store's client
func (s *Store) AuditRepository(maxLen int64) *AuditRepository {
	return NewAuditRepository(s.rdb, DefaultAuditKey, maxLen, s.logger)
}

// Insert pushes the event onto the head of the list
func (r *AuditRepository) Insert(ctx context.Context, event *models.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, r.key, payload)
		if r.maxLen > 0 {
			pipe.LTrim(ctx, r.key, 0, r.maxLen-1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push audit event: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest events, newest first
func (r *AuditRepository) Recent(ctx context.Context, n int64) ([]*models.AuditEvent, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := r.rdb.LRange(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit events: %w", err)
	}

	events := make([]*models.AuditEvent, 0, len(raw))
	for _, item := range raw {
		var event models.AuditEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			r.logger.Warn("skipping undecodable audit event", zap.Error(err))
			continue
		}
		events = append(events, &event)
	}
	return events, nil
}
