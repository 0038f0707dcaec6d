package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gurihub/payments/internal/port/output"
)

const (
	ExchangeName  = "payments"
	QueueName     = "payment_notifications"
	RoutingKey    = "payment.reconciled"
	PrefetchCount = 1 // Process one message at a time per worker

	// MaxDeliveryAttempts bounds how often a single event is retried before
	// it is dropped. Requeueing a permanently failing delivery would starve
	// every event behind it at QoS 1.
	MaxDeliveryAttempts = 5
)

// retryBackoff is the base delay between delivery attempts; attempt n waits
// n times this long. Variable so tests can run without sleeping.
var retryBackoff = 10 * time.Second

// RabbitMQClient is a secondary adapter that implements PaymentEvents output port
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitMQClient creates a new RabbitMQ client (returns interface for ports)
func NewRabbitMQClient(amqpURL string) (output.PaymentEvents, error) {
	return NewRabbitMQClientConcrete(amqpURL)
}

// NewRabbitMQClientConcrete creates a new RabbitMQ client (returns concrete type for workers)
func NewRabbitMQClientConcrete(amqpURL string) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare exchange
	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind queue to exchange
	err = channel.QueueBind(
		QueueName,
		RoutingKey,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
	}, nil
}

// PublishReconciliationEvent publishes a reconciliation outcome
func (c *RabbitMQClient) PublishReconciliationEvent(event output.ReconciliationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = c.channel.Publish(
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // Make message persistent
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Info("published reconciliation event",
		"transaction_id", event.TransactionID,
		"status", string(event.Status),
	)
	return nil
}

// ConsumeReconciliationEvents starts consuming reconciliation events
func (c *RabbitMQClient) ConsumeReconciliationEvents(handler func(output.ReconciliationEvent) error) error {
	// Set QoS to process one message at a time
	err := c.channel.Qos(
		PrefetchCount,
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack (we'll manually ack after processing)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	slog.Info("started consuming reconciliation events")

	go func() {
		for msg := range msgs {
			var event output.ReconciliationEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				slog.Error("failed to unmarshal event", "error", err)
				// An unparseable message will never succeed; drop it.
				msg.Ack(false)
				continue
			}

			if err := deliverWithRetry(event, handler, retryBackoff); err != nil {
				slog.Error("dropping reconciliation event after exhausting delivery attempts",
					"transaction_id", event.TransactionID,
					"attempts", MaxDeliveryAttempts,
					"error", err,
				)
				// Requeueing here would spin forever on a dead receiver.
				msg.Ack(false)
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}

// deliverWithRetry invokes handler for event up to MaxDeliveryAttempts times,
// sleeping attempt*backoff between tries. It returns the last handler error
// when every attempt fails.
func deliverWithRetry(event output.ReconciliationEvent, handler func(output.ReconciliationEvent) error, backoff time.Duration) error {
	var err error
	for attempt := 1; attempt <= MaxDeliveryAttempts; attempt++ {
		if err = handler(event); err == nil {
			return nil
		}
		if attempt < MaxDeliveryAttempts {
			slog.Warn("reconciliation event delivery failed, retrying",
				"transaction_id", event.TransactionID,
				"attempt", attempt,
				"error", err,
			)
			time.Sleep(time.Duration(attempt) * backoff)
		}
	}
	return err
}

// Close closes the RabbitMQ connection
func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
