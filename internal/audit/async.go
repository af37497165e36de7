package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/hajimigate/internal/models"
	"github.com/atinyakov/hajimigate/internal/telemetry"
)

const (
	bufferSize      = 256
	deliveryTimeout = 5 * time.Second
)

var (
	// ErrBufferFull is returned by AsyncSink.Emit when the event was dropped.
	ErrBufferFull = errors.New("audit buffer full, event dropped")
	// ErrClosed is returned by AsyncSink.Emit after Close.
	ErrClosed = errors.New("audit sink closed")
)

// AsyncSink decouples request handling from audit delivery.
// Events are queued on a bounded channel and delivered to the next sink by a
// background goroutine, so Emit never blocks the caller.
type AsyncSink struct {
	next   Sink
	log    *zap.Logger
	events chan models.AuditEvent
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsyncSink creates an AsyncSink in front of next. Call Start to begin
// delivering events.
func NewAsyncSink(next Sink, log *zap.Logger) *AsyncSink {
	return &AsyncSink{
		next:   next,
		log:    log,
		events: make(chan models.AuditEvent, bufferSize),
	}
}

// Start runs the delivery goroutine until ctx is cancelled or Close is called.
func (a *AsyncSink) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.run(ctx)
	}()
}

// Emit enqueues event. The request context is not used for delivery since
// it ends with the response.
func (a *AsyncSink) Emit(_ context.Context, event models.AuditEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.events <- event:
		return nil
	default:
		telemetry.AuditDropped.Inc()
		return ErrBufferFull
	}
}

// Close stops accepting events and waits until queued events are delivered.
func (a *AsyncSink) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.events)
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *AsyncSink) run(ctx context.Context) {
	for {
		select {
		case event, ok := <-a.events:
			if !ok {
				return
			}
			a.deliver(event)
		case <-ctx.Done():
			// Drain what is already queued.
			for {
				select {
				case event, ok := <-a.events:
					if !ok {
						return
					}
					a.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (a *AsyncSink) deliver(event models.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := a.next.Emit(ctx, event); err != nil {
		a.log.Error("delivering audit event",
			zap.String("id", event.ID),
			zap.String("action", string(event.Action)),
			zap.Error(err),
		)
	}
}
