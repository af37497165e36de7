package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atinyakov/hajimigate/internal/models"
)

// EventRepository persists audit events.
type EventRepository interface {
	InsertEvent(ctx context.Context, event models.AuditEvent) error
}

// RepositorySink stores events through an EventRepository.
type RepositorySink struct {
	repo EventRepository
}

// NewRepositorySink returns a sink backed by repo.
func NewRepositorySink(repo EventRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

// Emit inserts event.
func (s *RepositorySink) Emit(ctx context.Context, event models.AuditEvent) error {
	if err := s.repo.InsertEvent(ctx, event); err != nil {
		return fmt.Errorf("store audit event: %w", err)
	}
	return nil
}

// StreamAdder is the subset of the go-redis client used by RedisSink.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisSink forwards events to a Redis stream, one entry per event.
type RedisSink struct {
	client StreamAdder
	stream string
	maxLen int64
}

// NewRedisSink returns a sink appending to stream. The stream is trimmed
// approximately to maxLen entries; zero disables trimming.
func NewRedisSink(client StreamAdder, stream string, maxLen int64) *RedisSink {
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

// Emit appends event to the stream.
func (s *RedisSink) Emit(ctx context.Context, event models.AuditEvent) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":         event.ID,
			"level":      string(event.Level),
			"action":     string(event.Action),
			"message":    event.Message,
			"client_ip":  event.ClientIP,
			"created_at": event.CreatedAt.Format(time.RFC3339Nano),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}
