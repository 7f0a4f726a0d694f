package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

// InMemoryEventEmitter calls every registered handler synchronously, in
// registration order, on the emitting goroutine.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(l *slog.Logger) *InMemoryEventEmitter {
	if l == nil {
		l = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: l.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler subscribes handler to every event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	count := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("event handler registered", slog.Int("handler_count", count))
}

// EmitEvent delivers event to all handlers even when one fails, and returns
// the first handler error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type))

	if len(handlers) == 0 {
		log.Debug("no handlers for event")
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed",
				slog.String("error", err.Error()),
				slog.Int("handler_index", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// NopEmitter drops every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
