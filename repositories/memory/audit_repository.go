package memory

import (
	"context"
	"sync"

	"github.com/edubridge/platform/models"
)

// DefaultAuditCapacity bounds the in-process audit trail
const DefaultAuditCapacity = 1000

// AuditRepository keeps the newest events in a fixed-size ring
type AuditRepository struct {
	mu     sync.Mutex
	events []*models.AuditEvent
	next   int
	full   bool
}

// NewAuditRepository creates a ring holding at most capacity events
func NewAuditRepository(capacity int) *AuditRepository {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditRepository{events: make([]*models.AuditEvent, capacity)}
}

// Insert implements repositories.AuditRepository, overwriting the oldest entry when full
func (r *AuditRepository) Insert(ctx context.Context, event *models.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *event

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = &cp
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// Recent implements repositories.AuditRepository
func (r *AuditRepository) Recent(ctx context.Context, n int64) ([]*models.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.events)
	}
	if n > int64(size) {
		n = int64(size)
	}

	out := make([]*models.AuditEvent, 0, n)
	for i := int64(0); i < n; i++ {
		idx := (r.next - 1 - int(i) + len(r.events)) % len(r.events)
		cp := *r.events[idx]
		out = append(out, &cp)
	}
	return out, nil
}
