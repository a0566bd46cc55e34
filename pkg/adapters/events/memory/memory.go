package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aescanero/survey/pkg/ports"
	"go.uber.org/zap"
)

// EventBus implements ports.EventBus with in-process handlers.
// Handlers run synchronously in Publish, in subscription order.
type EventBus struct {
	logger *zap.Logger

	mu          sync.RWMutex
	nextID      uint64
	subscribers map[string]map[uint64]ports.EventHandler
}

// NewEventBus creates a new in-memory event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger:      logger,
		subscribers: make(map[string]map[uint64]ports.EventHandler),
	}
}

// Publish delivers an event to all subscribers of a topic
func (e *EventBus) Publish(ctx context.Context, topic string, event ports.Event) error {
	e.mu.RLock()
	ids := make([]uint64, 0, len(e.subscribers[topic]))
	handlers := make(map[uint64]ports.EventHandler, len(e.subscribers[topic]))
	for id, h := range e.subscribers[topic] {
		ids = append(ids, id)
		handlers[id] = h
	}
	e.mu.RUnlock()

	slices.Sort(ids)
	for _, id := range ids {
		if err := handlers[id](ctx, event); err != nil {
			e.logger.Warn("event handler failed",
				zap.String("topic", topic),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}

	return nil
}

// Subscribe registers handler on a topic until ctx is cancelled
func (e *EventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	if e.subscribers[topic] == nil {
		e.subscribers[topic] = make(map[uint64]ports.EventHandler)
	}
	e.subscribers[topic][id] = handler
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.unsubscribe(topic, id)
	}()

	return nil
}

// Subscribers returns the number of handlers registered on a topic
func (e *EventBus) Subscribers(topic string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.subscribers[topic])
}

// Close removes all subscribers
func (e *EventBus) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscribers = make(map[string]map[uint64]ports.EventHandler)
	return nil
}

func (e *EventBus) unsubscribe(topic string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.subscribers[topic], id)
	if len(e.subscribers[topic]) == 0 {
		delete(e.subscribers, topic)
	}
}
