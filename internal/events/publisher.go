package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tokowa/commerce-agent/internal/bus"
)

// Publisher publishes Events onto the bus's topic event exchange.
type Publisher struct {
	bus      *bus.Publisher
	exchange string
}

// NewPublisher builds a Publisher over exchange.
func NewPublisher(b *bus.Publisher, exchange string) *Publisher {
	return &Publisher{bus: b, exchange: exchange}
}

// Publish encodes and publishes event under its own routing key.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.RoutingKey, err)
	}
	return p.bus.PublishEvent(ctx, p.exchange, string(event.RoutingKey), body)
}
