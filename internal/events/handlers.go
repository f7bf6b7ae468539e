package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/contracts"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/dedup"
	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/stats"
)

const StatsConsumerName = "fitting-room-stats"

type applyFunc func(ctx context.Context, w stats.Writer, env contracts.Envelope) error

// StatsHandlers returns the handlers that fold kiosk events into the admin
// stats, keyed by routing key.
func StatsHandlers(store stats.Store, logger *log.Logger) map[string]HandlerFunc {
	return map[string]HandlerFunc{
		SessionStartedRoutingKey:    statsHandler(store, contracts.SessionStarted, logger, applySessionStarted),
		ItemTriedRoutingKey:         statsHandler(store, contracts.ItemTried, logger, applyItemTried),
		CheckoutCompletedRoutingKey: statsHandler(store, contracts.CheckoutCompleted, logger, applyCheckout),
	}
}

func statsHandler(store stats.Store, ev contracts.Event, logger *log.Logger, apply applyFunc) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		env, err := contracts.Decode(body)
		if err != nil {
			return err
		}
		if err := env.Check(ev.Name, ev.Version); err != nil {
			return err
		}

		return store.Atomically(ctx, func(ctx context.Context, w stats.Writer, cp dedup.Checkpointer) error {
			if env.Sequence != 0 {
				lastSeq, ok, err := cp.GetLastSequence(ctx, StatsConsumerName, env.PartitionKey)
				if err != nil {
					return err
				}
				if ok {
					if env.Sequence <= lastSeq {
						logger.Printf("skip duplicate %s partition=%s seq=%d last=%d", ev.Name, env.PartitionKey, env.Sequence, lastSeq)
						return nil
					}
					if env.Sequence > lastSeq+1 {
						logger.Printf("warning: sequence gap for partition=%s seq=%d last=%d", env.PartitionKey, env.Sequence, lastSeq)
					}
				}
			}

			if err := apply(ctx, w, env); err != nil {
				return err
			}

			if env.Sequence != 0 {
				return cp.UpsertLastSequence(ctx, StatsConsumerName, env.PartitionKey, env.Sequence)
			}
			return nil
		})
	}
}

func applySessionStarted(ctx context.Context, w stats.Writer, env contracts.Envelope) error {
	var p contracts.SessionStartedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.EventName, err)
	}
	return w.SessionStarted(ctx, p.StartedAt)
}

func applyItemTried(ctx context.Context, w stats.Writer, env contracts.Envelope) error {
	var p contracts.ItemTriedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.EventName, err)
	}
	if p.ProductID <= 0 {
		return fmt.Errorf("missing productId")
	}
	return w.ItemTried(ctx, p.TriedAt, p.ProductID, p.Name)
}

func applyCheckout(ctx context.Context, w stats.Writer, env contracts.Envelope) error {
	var p contracts.CheckoutCompletedPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.EventName, err)
	}
	if p.OrderID == "" {
		return fmt.Errorf("missing orderId")
	}
	return w.Checkout(ctx, p.PlacedAt, p.TotalAmount)
}
