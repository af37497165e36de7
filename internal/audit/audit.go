// Package audit delivers authentication audit events to one or more
// destinations: the application log, a rotating file, Postgres and a Redis
// stream.
package audit

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/atinyakov/hajimigate/internal/models"
)

// Sink receives audit events.
type Sink interface {
	Emit(ctx context.Context, event models.AuditEvent) error
}

// ZapSink writes audit events to a zap logger at the event's level.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink returns a sink logging to log under the "audit" name.
func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{log: log.Named("audit")}
}

// Emit logs event. It never fails.
func (s *ZapSink) Emit(_ context.Context, event models.AuditEvent) error {
	fields := []zap.Field{
		zap.String("id", event.ID),
		zap.String("action", string(event.Action)),
		zap.String("client_ip", event.ClientIP),
		zap.Time("created_at", event.CreatedAt),
	}

	switch event.Level {
	case models.LevelError:
		s.log.Error(event.Message, fields...)
	case models.LevelWarning:
		s.log.Warn(event.Message, fields...)
	default:
		s.log.Info(event.Message, fields...)
	}
	return nil
}

// Fanout emits every event to all of its sinks.
type Fanout struct {
	sinks []Sink
}

// NewFanout returns a sink delivering to each of sinks in order.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Emit delivers event to every sink, even when an earlier one fails, and
// returns the joined errors.
func (f *Fanout) Emit(ctx context.Context, event models.AuditEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
