package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// HandlerFunc processes one message body. A returned error rejects the
// message.
type HandlerFunc func(ctx context.Context, body []byte) error

// LocalBus delivers published events to in-process handlers synchronously.
// It stands in for the broker when no RabbitMQ URL is configured.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[string][]HandlerFunc)}
}

func (b *LocalBus) Subscribe(routingKey string, h HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], h)
}

func (b *LocalBus) Publish(ctx context.Context, routingKey string, body []byte) error {
	b.mu.RLock()
	hs := append([]HandlerFunc(nil), b.handlers[routingKey]...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h(ctx, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", routingKey, err))
		}
	}
	return errors.Join(errs...)
}
