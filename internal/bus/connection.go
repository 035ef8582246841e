package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// reconnectDelay is how long the connection supervisor waits before redialing
// after the broker connection drops.
const reconnectDelay = 2 * time.Second

// Connection supervises a single AMQP connection, transparently redialing
// and re-declaring the topology when the broker connection is lost. Callers
// obtain a fresh channel through Channel() after every reconnect.
type Connection struct {
	url      string
	topology Topology
	logger   *zap.Logger

	mu   sync.RWMutex
	conn *amqp.Connection
	ch   *amqp.Channel

	ctx    context.Context
	cancel context.CancelFunc
	closed chan struct{}
}

// Dial connects to the broker, declares the topology, and starts the
// background supervisor that redials on connection loss.
func Dial(url string, topology Topology, logger *zap.Logger) (*Connection, error) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		url:      url,
		topology: topology,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		closed:   make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		cancel()
		return nil, err
	}

	go c.supervise()
	return c, nil
}

func (c *Connection) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open amqp channel: %w", err)
	}

	if err := c.topology.Declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare topology: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.ch = ch
	c.mu.Unlock()
	return nil
}

func (c *Connection) supervise() {
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-c.ctx.Done():
			close(c.closed)
			return
		case err := <-notifyClose:
			if err != nil {
				c.logger.Warn("amqp connection lost, reconnecting", zap.Error(err))
			}
		}

		for {
			select {
			case <-c.ctx.Done():
				close(c.closed)
				return
			case <-time.After(reconnectDelay):
			}

			if dialErr := c.connect(); dialErr != nil {
				c.logger.Warn("amqp reconnect attempt failed", zap.Error(dialErr))
				continue
			}
			c.logger.Info("amqp connection restored")
			break
		}
	}
}

// Channel returns the current live channel. Callers must re-fetch after a
// publish/consume error in case a reconnect has swapped it out.
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ch
}

// Close stops the supervisor and closes the underlying connection.
func (c *Connection) Close() error {
	c.cancel()
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}
