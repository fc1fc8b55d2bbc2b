package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edubridge/platform/models"
	"github.com/edubridge/platform/repositories"
	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when events are sent before Start or after Stop
	ErrNotStarted = errors.New("audit service not started")

	// ErrBufferFull is returned by Record when the queue cannot take the event
	ErrBufferFull = errors.New("audit event buffer full")
)

// Service writes identity audit events in the background so request
// handlers never wait on the audit backend.
type Service struct {
	repo        repositories.AuditRepository
	logger      *zap.Logger
	events      chan *models.AuditEvent
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	mu          sync.Mutex
	started     bool
	stopped     bool
}

// Config holds configuration for the Service
type Config struct {
	BufferSize  int // capacity of the event queue
	WorkerCount int // concurrent writers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1024,
		WorkerCount: 2,
	}
}

// NewService creates a stopped Service; call Start before recording
func NewService(repo repositories.AuditRepository, logger *zap.Logger, cfg Config) *Service {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultConfig().WorkerCount
	}

	return &Service{
		repo:        repo,
		logger:      logger,
		events:      make(chan *models.AuditEvent, cfg.BufferSize),
		workerCount: cfg.WorkerCount,
		bufferSize:  cfg.BufferSize,
	}
}

// Start launches the workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))
	return nil
}

// Stop closes the queue and waits up to timeout for pending events to drain
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	s.stopped = true
	close(s.events)
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.events)))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Record queues an event without blocking. When the queue is full the
// event is dropped and ErrBufferFull returned.
func (s *Service) Record(event *models.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	select {
	case s.events <- event:
		return nil
	default:
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(event.Action)),
			zap.String("request_id", event.RequestID))
		return ErrBufferFull
	}
}

// Recent reads the newest events straight from the repository
func (s *Service) Recent(ctx context.Context, n int64) ([]*models.AuditEvent, error) {
	return s.repo.Recent(ctx, n)
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	for event := range s.events {
		if err := s.write(event); err != nil {
			s.logger.Error("failed to write audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(event.Action)),
				zap.String("request_id", event.RequestID))
		}
	}
}

func (s *Service) write(event *models.AuditEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.repo.Insert(ctx, event)
}

// Stats describes the queue
type Stats struct {
	BufferSize    int  `json:"buffer_size"`
	PendingEvents int  `json:"pending_events"`
	WorkerCount   int  `json:"worker_count"`
	Started       bool `json:"started"`
}

// GetStats returns a snapshot of the queue
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.events),
		WorkerCount:   s.workerCount,
		Started:       s.started,
	}
}
