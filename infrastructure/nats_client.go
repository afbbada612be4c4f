package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// NATSClient wraps the NATS connection used to publish ledger events to
// external consumers
type NATSClient struct {
	servers              string
	nc                   *nats.Conn
	reconnectDelay       time.Duration
	maxReconnectAttempts int
}

// NewNATSClient creates a new NATS client
func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{
		servers:              servers,
		reconnectDelay:       2 * time.Second,
		maxReconnectAttempts: 10,
	}
}

// Connect establishes a connection to the NATS server
func (c *NATSClient) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name("vnclub"),
		nats.MaxReconnects(c.maxReconnectAttempts),
		nats.ReconnectWait(c.reconnectDelay),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(c.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	c.nc = nc

	log.WithField("servers", c.servers).Info("Connected to NATS")
	return nil
}

// Publish sends data to the given subject
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	if c.nc == nil {
		return fmt.Errorf("not connected to NATS")
	}

	if err := c.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	return nil
}

// Close drains and closes the NATS connection
func (c *NATSClient) Close() {
	if c.nc != nil {
		if err := c.nc.Drain(); err != nil {
			log.WithError(err).Warn("Error draining NATS connection")
		}
		c.nc = nil
	}
}
