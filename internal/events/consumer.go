package events

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HandlerFunc processes one message body. A nil error acks the message; any
// error nacks it without requeue.
type HandlerFunc func(ctx context.Context, body []byte) error

// StartCartCheckedOutConsumer binds the service queue to cart.checkedout.v1 and
// dispatches deliveries to handle until ctx is cancelled.
func StartCartCheckedOutConsumer(ctx context.Context, conn *amqp.Connection, handle HandlerFunc, logger *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare events exchange: %w", err)
	}

	queue := orderingQueueName(CartCheckedOutRoutingKey)
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("queue declare: %w", err)
	}

	if err := ch.QueueBind(queue, CartCheckedOutRoutingKey, EventsExchange, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("queue bind: %w", err)
	}

	// One unacked message at a time keeps order creation for a partition sequential.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("qos: %w", err)
	}

	msgs, err := ch.Consume(
		queue,
		orderingServiceName, // consumer tag
		false,               // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				logger.Info("stopping consumer", "queue", queue)
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("messages channel closed", "queue", queue)
					return
				}
				dispatch(ctx, msg, handle, logger)
			}
		}
	}()

	return nil
}

// acknowledger is the part of amqp.Delivery dispatch needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func dispatch(ctx context.Context, msg amqp.Delivery, handle HandlerFunc, logger *slog.Logger) {
	settle(ctx, &msg, msg.Body, handle, logger)
}

func settle(ctx context.Context, ack acknowledger, body []byte, handle HandlerFunc, logger *slog.Logger) {
	if err := handle(ctx, body); err != nil {
		logger.Error("handle message failed", "err", err)
		if err := ack.Nack(false, false); err != nil {
			logger.Error("nack failed", "err", err)
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		logger.Error("ack failed", "err", err)
	}
}
