package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ttlRoundingUnit is the granularity delayed-retry TTLs are rounded up to,
// matching the coarse per-message-TTL resolution RabbitMQ already delivers.
const ttlRoundingUnit = 100 * time.Millisecond

// DelayedRetry re-publishes body to queue after delay elapses, implemented
// as a per-delay holding queue: a queue with no consumers, a message TTL of
// delay, and a dead-letter-exchange route back to queue. Once a message's
// TTL expires RabbitMQ dead-letters it back onto the original queue without
// any timer goroutine on our side.
type DelayedRetry struct {
	conn     *Connection
	declared sync.Map // holding queue name -> struct{}
}

// NewDelayedRetry builds a DelayedRetry bound to conn.
func NewDelayedRetry(conn *Connection) *DelayedRetry {
	return &DelayedRetry{conn: conn}
}

// Schedule re-publishes body onto queue after delay, declaring the holding
// queue for that (queue, delay) pair on first use and reusing it afterward.
func (d *DelayedRetry) Schedule(ctx context.Context, queue string, delay time.Duration, body []byte) error {
	ttl := roundUpTTL(delay)
	holding := fmt.Sprintf("%s%s.%dms", queue, holdingQueueSuffix, ttl.Milliseconds())

	if _, seen := d.declared.Load(holding); !seen {
		ch := d.conn.Channel()
		if ch == nil {
			return fmt.Errorf("delayed retry: no live channel")
		}
		args := amqp.Table{
			"x-message-ttl":             int32(ttl.Milliseconds()),
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue,
		}
		if _, err := ch.QueueDeclare(holding, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare holding queue %s: %w", holding, err)
		}
		d.declared.Store(holding, struct{}{})
	}

	ch := d.conn.Channel()
	if ch == nil {
		return fmt.Errorf("delayed retry: no live channel")
	}
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(publishCtx, "", holding, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
}

// roundUpTTL rounds delay up to the next multiple of ttlRoundingUnit so that
// repeated retries with slightly different delays reuse the same holding
// queue instead of each minting a new one.
func roundUpTTL(delay time.Duration) time.Duration {
	if delay <= 0 {
		return ttlRoundingUnit
	}
	rem := delay % ttlRoundingUnit
	if rem == 0 {
		return delay
	}
	return delay + (ttlRoundingUnit - rem)
}
