package bus

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var publishOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bus_publisher_operations_total",
		Help: "Total number of bus publish attempts.",
	},
	[]string{"exchange", "status"},
)

// Publisher publishes task and domain-event messages onto the bus, wrapping
// every publish in a circuit breaker so a stalled broker fails fast instead
// of blocking callers indefinitely.
type Publisher struct {
	conn           *Connection
	breaker        *gobreaker.CircuitBreaker
	logger         *zap.Logger
	publishTimeout time.Duration
}

// NewPublisher builds a Publisher backed by conn.
func NewPublisher(conn *Connection, logger *zap.Logger) *Publisher {
	settings := gobreaker.Settings{
		Name:        "bus-publisher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Publisher{
		conn:           conn,
		breaker:        gobreaker.NewCircuitBreaker(settings),
		logger:         logger,
		publishTimeout: 5 * time.Second,
	}
}

// PublishTask publishes a task message to the named durable queue.
func (p *Publisher) PublishTask(ctx context.Context, queue string, body []byte) error {
	return p.publish(ctx, "", queue, body)
}

// PublishEvent publishes a domain event to the event exchange under routingKey.
func (p *Publisher) PublishEvent(ctx context.Context, exchange, routingKey string, body []byte) error {
	return p.publish(ctx, exchange, routingKey, body)
}

func (p *Publisher) publish(ctx context.Context, exchange, key string, body []byte) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		ch := p.conn.Channel()
		if ch == nil {
			return nil, fmt.Errorf("bus publisher: no live channel")
		}
		publishCtx, cancel := context.WithTimeout(ctx, p.publishTimeout)
		defer cancel()
		err := ch.PublishWithContext(publishCtx, exchange, key, false, false, amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
		return nil, err
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	publishOps.WithLabelValues(exchange, status).Inc()
	if err != nil {
		return errors.Wrapf(err, "publish to %s/%s", exchange, key)
	}
	return nil
}
