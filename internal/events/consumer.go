package events

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartConsumer binds one durable queue per routing key for the named
// consumer and dispatches deliveries to the matching handler until ctx is
// done. Failed messages are dropped.
func StartConsumer(ctx context.Context, conn *amqp.Connection, consumerName string, handlers map[string]HandlerFunc, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	for routingKey, handler := range handlers {
		queue := serviceQueue(consumerName, routingKey)
		if _, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		); err != nil {
			return fmt.Errorf("queue declare %s: %w", queue, err)
		}
		if err := ch.QueueBind(queue, routingKey, EventsExchange, false, nil); err != nil {
			return fmt.Errorf("queue bind %s: %w", queue, err)
		}

		msgs, err := ch.Consume(
			queue,
			consumerName+"."+routingKey, // consumer tag
			false,                       // autoAck
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("consume %s: %w", queue, err)
		}

		go consume(ctx, queue, msgs, handler, logger)
	}

	go func() {
		<-ctx.Done()
		_ = ch.Close()
	}()
	return nil
}

func consume(ctx context.Context, queue string, msgs <-chan amqp.Delivery, handler HandlerFunc, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Printf("stopping %s consumer", queue)
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Printf("%s: messages channel closed", queue)
				return
			}

			if err := handler(ctx, msg.Body); err != nil {
				logger.Printf("%s: handle message error: %v", queue, err)
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}
