package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/nomad-crew-ledger/logger"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher implements types.EventPublisher on a durable direct
// exchange. The routing key is the event type, so consumers bind only the
// events they care about.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	log      *zap.SugaredLogger
	metrics  *metrics
	config   Config
	mu       sync.Mutex
}

var _ types.EventPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string, cfg ...Config) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newAMQPPublisher(channel, exchange, cfg...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(channel amqpChannel, exchange string, cfg ...Config) (*AMQPPublisher, error) {
	config := DefaultConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}

	err := channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{
		channel:  channel,
		exchange: exchange,
		log:      logger.GetLogger().Named("events"),
		metrics:  newMetrics(),
		config:   config,
	}, nil
}

// Publish sends one persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, tripID string, event types.Event) error {
	start := time.Now()
	defer func() {
		p.metrics.publishLatency.WithLabelValues("amqp").Observe(time.Since(start).Seconds())
	}()

	event = withDefaults(event)
	body, err := encode(event)
	if err != nil {
		p.metrics.errorCount.WithLabelValues("amqp", "encode").Inc()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.Timestamp,
			Headers:      amqp.Table{"tripId": tripID},
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		p.metrics.errorCount.WithLabelValues("amqp", "publish").Inc()
		return fmt.Errorf("publish message: %w", err)
	}

	p.metrics.eventCount.WithLabelValues("amqp", string(event.Type)).Inc()
	return nil
}

// PublishBatch publishes events one by one and stops at the first failure.
func (p *AMQPPublisher) PublishBatch(ctx context.Context, tripID string, events []types.Event) error {
	for _, event := range events {
		if err := p.Publish(ctx, tripID, event); err != nil {
			return fmt.Errorf("batch: %w", err)
		}
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warnw("Failed to close AMQP channel", "error", err)
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
