package infrastructure

import (
	"context"

	"vnclub/events"
)

// NoopEventPublisher discards events. Used when NATS is not configured.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish does nothing
func (p *NoopEventPublisher) Publish(ctx context.Context, event events.Event) error {
	return nil
}
