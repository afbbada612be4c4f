package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vnclub/events"

	"github.com/google/uuid"
)

// eventEnvelope is the wire format for published ledger events
type eventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher implements the EventPublisher interface using NATS
type NATSEventPublisher struct {
	natsClient *NATSClient
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(natsClient *NATSClient) *NATSEventPublisher {
	return &NATSEventPublisher{natsClient: natsClient}
}

// Publish serializes the event into an envelope and publishes it on a
// subject derived from the event type
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := eventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "vnclub",
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := subjectForEvent(event)
	if err := p.natsClient.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type(), err)
	}

	return nil
}

// subjectForEvent maps an event to its NATS subject
func subjectForEvent(event events.Event) string {
	switch event.Type() {
	case events.EventTypePointsChanged:
		return "vnclub.points.changed"
	case events.EventTypeTiersChanged:
		return "vnclub.tiers.changed"
	default:
		return fmt.Sprintf("vnclub.events.%s", event.Type())
	}
}
