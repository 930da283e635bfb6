package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"foodstall/internal/livequery"
	"foodstall/internal/logger"
	"foodstall/internal/models"
)

// ChangeFeed carries store change events between instances. Local writes
// signal the local broker directly; events from other instances arrive
// through an exclusive queue bound to the changes exchange.
type ChangeFeed struct {
	queue     changeQueue
	publisher changePublisher
	broker    *livequery.Broker
	logger    *logger.Logger
	source    string
}

type changePublisher interface {
	PublishChange(ctx context.Context, ev models.ChangeEvent) error
}

// changeQueue opens this instance's subscription to the changes exchange.
type changeQueue interface {
	consumeChanges(tag string) (<-chan amqp091.Delivery, string, error)
	Reconnect(ctx context.Context) error
}

// NewChangeFeed creates a feed for this instance
func NewChangeFeed(conn *Connection, pub *Publisher, broker *livequery.Broker, log *logger.Logger) *ChangeFeed {
	return newChangeFeed(conn, pub, broker, log)
}

func newChangeFeed(queue changeQueue, pub changePublisher, broker *livequery.Broker, log *logger.Logger) *ChangeFeed {
	return &ChangeFeed{
		queue:     queue,
		publisher: pub,
		broker:    broker,
		logger:    log,
		source:    uuid.NewString(),
	}
}

// Announce signals local subscribers and forwards the event to other instances.
func (f *ChangeFeed) Announce(ctx context.Context, ev models.ChangeEvent) {
	ev.Source = f.source
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	f.broker.Publish(ev.Collection)

	if err := f.publisher.PublishChange(context.WithoutCancel(ctx), ev); err != nil {
		f.logger.Error("change_publish_failed", "Failed to forward change event", "", err, map[string]interface{}{
			"collection":  ev.Collection,
			"document_id": ev.DocumentID,
		})
	}
}

// Listen consumes change events from other instances until ctx is done. A
// closed delivery channel re-subscribes on a fresh connection.
func (f *ChangeFeed) Listen(ctx context.Context) error {
	for {
		msgs, queue, err := f.queue.consumeChanges(f.source)
		if err != nil {
			return err
		}
		f.logger.Info("change_feed_started", "Listening for store changes", "", map[string]interface{}{
			"queue":  queue,
			"source": f.source,
		})

		if err := f.drain(ctx, msgs); err != nil {
			return err
		}

		f.logger.Warn("change_feed_closed", "Change channel closed, reconnecting", "", nil)
		// signals missed during the outage are made up by one refetch
		f.broker.Publish(models.CollectionMenu)
		f.broker.Publish(models.CollectionOrders)
		if err := f.reconnect(ctx); err != nil {
			return err
		}
	}
}

// reconnect retries until the connection is back or ctx is done. Each
// Reconnect call already backs off between its own attempts.
func (f *ChangeFeed) reconnect(ctx context.Context) error {
	for {
		err := f.queue.Reconnect(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Error("change_feed_reconnect_failed", "Change feed reconnect failed, retrying", "", err, nil)
	}
}

// drain handles deliveries until msgs closes, returning nil, or ctx is done.
func (f *ChangeFeed) drain(ctx context.Context, msgs <-chan amqp091.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			f.handle(d.Body)
		}
	}
}

// consumeChanges declares an exclusive server-named queue bound to the
// changes exchange and starts an auto-ack consumer on it.
func (c *Connection) consumeChanges(tag string) (<-chan amqp091.Delivery, string, error) {
	ch := c.Channel()
	if ch == nil {
		return nil, "", ErrNotConnected
	}

	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // non-durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, "", fmt.Errorf("could not declare change queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", ChangesExchange, false, nil); err != nil {
		return nil, "", fmt.Errorf("could not bind change queue: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		tag,    // consumer tag
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return nil, "", fmt.Errorf("could not start change consumer: %w", err)
	}
	return msgs, q.Name, nil
}

// handle signals the local broker for an event from another instance
func (f *ChangeFeed) handle(body []byte) {
	var ev models.ChangeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		f.logger.Error("change_decode_failed", "Failed to decode change event", "", err, nil)
		return
	}
	if ev.Source == f.source {
		return
	}

	switch ev.Collection {
	case models.CollectionMenu, models.CollectionOrders:
		f.broker.Publish(ev.Collection)
	default:
		f.logger.Warn("change_unknown_collection", "Ignoring change for unknown collection", "", map[string]interface{}{
			"collection": ev.Collection,
		})
	}
}
