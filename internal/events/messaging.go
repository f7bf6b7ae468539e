package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange              = "fittingroom.events"
	SessionStartedRoutingKey    = "session.started.v1"
	ItemTriedRoutingKey         = "item.tried.v1"
	CheckoutCompletedRoutingKey = "checkout.completed.v1"
	ServiceName                 = "fitting-room-service-go"
)

// RoutingKeys lists every key the service publishes.
var RoutingKeys = []string{SessionStartedRoutingKey, ItemTriedRoutingKey, CheckoutCompletedRoutingKey}

func serviceQueue(serviceName, routingKey string) string {
	return serviceName + "." + routingKey
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// Dial connects to the broker at url.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}
