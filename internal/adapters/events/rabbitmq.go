package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tdd/todo-app/internal/domain"
)

// ErrBrokerClosed is returned when publishing through a closed connection.
var ErrBrokerClosed = errors.New("rabbitmq connection closed")

// RabbitMQBroker publishes persistent JSON messages to a durable topic
// exchange. A single channel is shared, so publishes are serialized.
type RabbitMQBroker struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
	mu       sync.Mutex
}

// DialRabbitMQ connects to url, opens a channel and declares exchange.
func DialRabbitMQ(url, exchange string, logger *slog.Logger) (*RabbitMQBroker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	logger.Info("rabbitmq publisher connected", slog.String("exchange", exchange))

	return &RabbitMQBroker{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}, nil
}

// Name returns "rabbitmq".
func (b *RabbitMQBroker) Name() string {
	return "rabbitmq"
}

// Publish sends payload to the exchange under routingKey.
func (b *RabbitMQBroker) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn.IsClosed() {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, ErrBrokerClosed)
	}

	err := b.channel.PublishWithContext(ctx,
		b.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", b.exchange, err)
	}

	return nil
}

// HealthCheck reports whether the connection is open.
func (b *RabbitMQBroker) HealthCheck(_ context.Context) error {
	if b.conn.IsClosed() {
		return ErrBrokerClosed
	}
	return nil
}

// Close closes the channel and the connection.
func (b *RabbitMQBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		b.logger.Warn("error closing channel", slog.String("error", err.Error()))
	}
	if err := b.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("closing rabbitmq connection: %w", err)
	}

	b.logger.Info("rabbitmq publisher closed")
	return nil
}
