package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePointsChanged EventType = "points_changed"
	EventTypeTiersChanged  EventType = "tiers_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PointsChangedEvent fires after an append or tombstone changed a
// member's point total
type PointsChangedEvent struct {
	EventID  int64
	GuildID  int64
	UserID   int64
	Amount   int64
	NewTotal int64
	Category string
}

func (e PointsChangedEvent) Type() EventType {
	return EventTypePointsChanged
}

// TiersChangedEvent fires after a guild's tier family was modified
type TiersChangedEvent struct {
	GuildID int64
}

func (e TiersChangedEvent) Type() EventType {
	return EventTypeTiersChanged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking ledger writers
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
