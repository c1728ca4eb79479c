package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"greencode-backend/internal/shared/events"
	"greencode-backend/internal/shared/telemetry"
)

// NATSPublisher implements events.Publisher on NATS JetStream.
type NATSPublisher struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// NewNATSPublisher connects to natsURL, retrying in the background if the
// server is not yet reachable.
func NewNATSPublisher(natsURL string) (*NATSPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("greencode-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				telemetry.Warn("nats.disconnected", map[string]any{"error": err})
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			telemetry.Info("nats.reconnected", map[string]any{"url": nc.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	telemetry.Info("nats.connected", map[string]any{"url": natsURL})
	return &NATSPublisher{nc: nc, js: js}, nil
}

// PublishEvent marshals event to JSON and publishes it asynchronously.
func (p *NATSPublisher) PublishEvent(ctx context.Context, subject string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(event)
	if err != nil {
		return err
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	telemetry.Debug("nats.published", map[string]any{"subject": subject, "size": len(data)})
	return nil
}

// Ping reports an error unless the connection is established.
func (p *NATSPublisher) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.nc == nil || !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

// Close drains pending async publishes and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(5 * time.Second):
		telemetry.Warn("nats.flush_timeout", map[string]any{"pending": p.js.PublishAsyncPending()})
	}
	p.nc.Close()
	return nil
}

func encode(event any) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

var _ events.Publisher = (*NATSPublisher)(nil)
