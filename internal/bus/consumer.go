package bus

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long Stop waits for in-flight handlers to drain.
const shutdownTimeout = 30 * time.Second

var consumerDeliveries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bus_consumer_deliveries_total",
		Help: "Total number of consumed deliveries by outcome.",
	},
	[]string{"queue", "outcome"},
)

// Handler processes one delivery body. A nil error acks the delivery; a
// non-nil error dead-letters it (nack, no requeue). The consumer never
// retries on its own: a handler that wants a delayed retry schedules it
// through DelayedRetry and returns nil.
type Handler func(ctx context.Context, body []byte) error

// KeyFunc extracts the ordering key (e.g. chat_id) from a delivery body.
// Deliveries sharing a key are always dispatched to the same worker, so
// they are handled strictly in the order the broker delivered them.
type KeyFunc func(body []byte) string

// Consumer pulls deliveries off a single queue and dispatches them to a
// Handler under a bounded worker pool, acking on success and routing
// every failed delivery to the dead-letter exchange on its first failure.
type Consumer struct {
	conn    *Connection
	queue   string
	prefetch int
	logger  *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewConsumer builds a Consumer for queue with the given prefetch (QoS) count.
func NewConsumer(conn *Connection, queue string, prefetch int, logger *zap.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		conn:     conn,
		queue:    queue,
		prefetch: prefetch,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins consuming deliveries and dispatching them to handler across
// concurrency worker goroutines with no ordering guarantee across
// deliveries. It is idempotent once already running.
func (c *Consumer) Start(handler Handler, concurrency int) error {
	return c.start(handler, concurrency, nil)
}

// StartKeyed begins consuming deliveries like Start, but routes each
// delivery to one of concurrency workers by hashing keyFunc(body), so any
// two deliveries with the same key are always handled by the same worker
// in delivery order and never run concurrently with each other. Use this
// instead of Start when deliveries for the same key must not interleave
// (e.g. the outgoing chunks of one chat's response).
func (c *Consumer) StartKeyed(handler Handler, concurrency int, keyFunc KeyFunc) error {
	return c.start(handler, concurrency, keyFunc)
}

func (c *Consumer) start(handler Handler, concurrency int, keyFunc KeyFunc) error {
	if c.running.Load() {
		return nil
	}

	ch := c.conn.Channel()
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.running.Store(true)

	if keyFunc == nil {
		c.wg.Add(concurrency)
		for i := 0; i < concurrency; i++ {
			go func() {
				defer c.wg.Done()
				c.work(deliveries, handler)
			}()
		}
		return nil
	}

	shards := make([]chan amqp.Delivery, concurrency)
	for i := range shards {
		shards[i] = make(chan amqp.Delivery, c.prefetch)
	}
	c.wg.Add(concurrency + 1)
	for i := 0; i < concurrency; i++ {
		shard := shards[i]
		go func() {
			defer c.wg.Done()
			c.work(shard, handler)
		}()
	}
	go func() {
		defer c.wg.Done()
		c.dispatch(deliveries, shards, keyFunc)
	}()
	return nil
}

// dispatch routes each delivery to shards[hash(keyFunc(body))%len(shards)],
// closing every shard once the source channel closes so its worker exits.
func (c *Consumer) dispatch(deliveries <-chan amqp.Delivery, shards []chan amqp.Delivery, keyFunc KeyFunc) {
	defer func() {
		for _, shard := range shards {
			close(shard)
		}
	}()
	for {
		select {
		case <-c.ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			shard := shards[shardIndex(keyFunc(d.Body), len(shards))]
			select {
			case shard <- d:
			case <-c.ctx.Done():
				return
			}
		}
	}
}

func shardIndex(key string, n int) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func (c *Consumer) work(deliveries <-chan amqp.Delivery, handler Handler) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := handler(c.ctx, d.Body); err != nil {
				c.logger.Warn("bus handler failed, dead-lettering",
					zap.String("queue", c.queue), zap.Error(err))
				consumerDeliveries.WithLabelValues(c.queue, "dead_lettered").Inc()
				_ = d.Nack(false, false)
				continue
			}
			consumerDeliveries.WithLabelValues(c.queue, "acked").Inc()
			_ = d.Ack(false)
		}
	}
}

// Stop signals the worker goroutines to exit and waits for in-flight
// handlers to finish, up to shutdownTimeout.
func (c *Consumer) Stop() error {
	if !c.running.Load() {
		return nil
	}
	c.running.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(shutdownTimeout):
		return context.DeadlineExceeded
	}
}
