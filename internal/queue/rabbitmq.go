package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/devialdimp/bank-ledger/internal/models"
)

const (
	// queue for committed transfer events
	TransferQueue = "transfers"
)

// handles RabbitMQ operations
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *zap.Logger
}

func NewRabbitMQ(uri string, logger *zap.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		TransferQueue, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: ch,
		queue:   q,
		logger:  logger,
	}, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// PublishTransfer publishes a committed transfer event to the queue.
func (r *RabbitMQ) PublishTransfer(ctx context.Context, ev *models.TransferEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer event: %w", err)
	}

	err = r.channel.Publish(
		"",            // exchange
		TransferQueue, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // make message persistent
		})
	if err != nil {
		return fmt.Errorf("failed to publish transfer event: %w", err)
	}

	return nil
}

// ConsumeTransfers consumes transfer events from the queue.
func (r *RabbitMQ) ConsumeTransfers(ctx context.Context) (<-chan models.TransferEvent, error) {
	msgs, err := r.channel.Consume(
		TransferQueue, // queue
		"",            // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	evChan := make(chan models.TransferEvent)

	go func() {
		defer close(evChan)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var ev models.TransferEvent
				if err := json.Unmarshal(msg.Body, &ev); err != nil {
					r.logger.Warn("dropping malformed transfer event", zap.Error(err))
					msg.Reject(false) // don't requeue
					continue
				}

				evChan <- ev

				msg.Ack(false)
			}
		}
	}()

	return evChan, nil
}
