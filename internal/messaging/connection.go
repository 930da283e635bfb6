package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"foodstall/internal/config"
	"foodstall/internal/logger"
)

// Exchange and queue names
const (
	ChangesExchange       = "store_changes"
	NotificationsExchange = "notifications_fanout"
	NotificationsQueue    = "notifications_queue"
)

// ErrNotConnected is returned by publishes while the connection is down.
var ErrNotConnected = errors.New("rabbitmq connection is down")

// Connection wraps RabbitMQ connection with reconnection logic
type Connection struct {
	// mu guards conn and channel; it is never held while dialling
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	// dialMu serializes reconnect attempts
	dialMu       sync.Mutex
	reconnecting atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	logger *logger.Logger
	url    string

	maxRetries int
	retryDelay time.Duration
}

// New creates a new RabbitMQ connection. ctx bounds the initial dial only.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	c := newConnection(cfg.RabbitMQURL(), log)
	if err := c.Reconnect(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return c, nil
}

func newConnection(url string, log *logger.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		ctx:        ctx,
		cancel:     cancel,
		logger:     log,
		url:        url,
		maxRetries: 5,
		retryDelay: 2 * time.Second,
	}
}

// dial opens a connection and channel with the topology declared, retrying
// with a growing delay until ctx is done.
func (c *Connection) dial(ctx context.Context) (*amqp091.Connection, *amqp091.Channel, error) {
	var err error
	for i := 0; i < c.maxRetries; i++ {
		var conn *amqp091.Connection
		conn, err = amqp091.Dial(c.url)
		if err == nil {
			var ch *amqp091.Channel
			ch, err = conn.Channel()
			if err == nil {
				if err = setupTopology(ch); err == nil {
					c.logger.Info("rabbitmq_connected", "Connected to RabbitMQ", "", map[string]interface{}{
						"attempt": i + 1,
					})
					return conn, ch, nil
				}
				c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "", err, nil)
				ch.Close()
			}
			conn.Close()
		}

		if i < c.maxRetries-1 {
			waitTime := time.Duration(i+1) * c.retryDelay
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", waitTime),
				"", err, map[string]interface{}{"attempt": i + 1})
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(waitTime):
			}
		}
	}

	return nil, nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", c.maxRetries, err)
}

// setupTopology declares the change fan-out and the durable notifications queue
func setupTopology(ch *amqp091.Channel) error {
	for _, exchange := range []string{ChangesExchange, NotificationsExchange} {
		err := ch.ExchangeDeclare(
			exchange, // name
			"fanout", // type
			true,     // durable
			false,    // auto-deleted
			false,    // internal
			false,    // no-wait
			nil,      // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare %s exchange: %w", exchange, err)
		}
	}

	_, err := ch.QueueDeclare(
		NotificationsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		amqp091.Table{
			"x-message-ttl": 3600000, // 1 hour
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare notifications queue: %w", err)
	}

	err = ch.QueueBind(
		NotificationsQueue,    // queue name
		"",                    // routing key (ignored for fanout)
		NotificationsExchange, // exchange
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind notifications queue: %w", err)
	}

	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// Close stops any background reconnect and closes the connection
func (c *Connection) Close() error {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsClosed reports whether the connection or its channel is down
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == nil || c.conn.IsClosed() || c.channel == nil || c.channel.IsClosed()
}

// Reconnect replaces a closed connection. It returns at once when the
// connection is healthy, so callers that race on the same outage dial once.
func (c *Connection) Reconnect(ctx context.Context) error {
	c.dialMu.Lock()
	defer c.dialMu.Unlock()
	if !c.IsClosed() {
		return nil
	}

	c.mu.Lock()
	c.close()
	c.mu.Unlock()

	conn, ch, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Err() != nil {
		ch.Close()
		conn.Close()
		return ErrNotConnected
	}
	c.conn, c.channel = conn, ch
	return nil
}

// reconnectInBackground starts one reconnect that lives until Close.
// Calls made while one is running are dropped.
func (c *Connection) reconnectInBackground() {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.reconnecting.Store(false)
		if err := c.Reconnect(c.ctx); err != nil && c.ctx.Err() == nil {
			c.logger.Error("rabbitmq_reconnect_failed", "Background reconnect gave up", "", err, nil)
		}
	}()
}
