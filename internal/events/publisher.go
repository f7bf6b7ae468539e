package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/contracts"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/correlation"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/session"
)

const publishTimeout = 3 * time.Second

// Sink delivers a serialized envelope under a routing key.
type Sink interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Publisher turns kiosk milestones into enveloped, sequenced events. Each
// session is its own partition.
type Publisher struct {
	// mu keeps delivery order equal to sequence order.
	mu   sync.Mutex
	seq  sequence.Sequencer
	sink Sink
	now  func() time.Time
}

var _ session.Notifier = (*Publisher)(nil)

func NewPublisher(seq sequence.Sequencer, sink Sink) *Publisher {
	return &Publisher{
		seq:  seq,
		sink: sink,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (p *Publisher) SessionStarted(ctx context.Context, s *session.Session) error {
	payload := contracts.SessionStartedPayload{
		SessionID: s.ID,
		StartedAt: s.StartedAt,
	}
	return p.publish(ctx, contracts.SessionStarted, SessionStartedRoutingKey, s.ID, payload)
}

func (p *Publisher) ItemTried(ctx context.Context, s *session.Session, item catalog.Product) error {
	triedAt := s.UpdatedAt
	if triedAt.IsZero() {
		triedAt = p.now()
	}
	payload := contracts.ItemTriedPayload{
		SessionID: s.ID,
		ProductID: item.ID,
		Name:      item.Name,
		Type:      string(item.Type),
		Color:     string(item.Color),
		Gender:    string(item.Gender),
		TriedAt:   triedAt,
	}
	return p.publish(ctx, contracts.ItemTried, ItemTriedRoutingKey, s.ID, payload)
}

func (p *Publisher) CheckoutCompleted(ctx context.Context, s *session.Session, o session.Order) error {
	payload := contracts.CheckoutCompletedPayload{
		SessionID:   s.ID,
		OrderID:     o.ID,
		Items:       make([]contracts.CheckoutItem, 0, len(s.Cart)),
		ItemCount:   o.Items,
		TotalAmount: o.TotalAmount,
		Fulfillment: string(o.Fulfillment),
		Payment:     string(o.Payment),
		PlacedAt:    o.PlacedAt,
	}
	for _, it := range s.Cart {
		payload.Items = append(payload.Items, contracts.CheckoutItem{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
		})
	}
	return p.publish(ctx, contracts.CheckoutCompleted, CheckoutCompletedRoutingKey, s.ID, payload)
}

func (p *Publisher) publish(ctx context.Context, ev contracts.Event, routingKey, partitionKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq, err := p.seq.NextSequence(ctx, partitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env, err := contracts.Build(ev, payload, contracts.EnvelopeOptions{
		PartitionKey:  partitionKey,
		Sequence:      seq,
		CorrelationID: correlation.FromContext(ctx),
		OccurredAt:    p.now(),
	})
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", ev.Name, err)
	}
	if err := contracts.Validate(body); err != nil {
		return err
	}

	return p.sink.Publish(ctx, routingKey, body)
}

// AMQPSink publishes to the topic exchange on one channel.
type AMQPSink struct {
	ch *amqp.Channel
}

func NewAMQPSink(conn *amqp.Connection) (*AMQPSink, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &AMQPSink{ch: ch}, nil
}

func (s *AMQPSink) Publish(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return s.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (s *AMQPSink) Close() error {
	return s.ch.Close()
}
