package session

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
)

// Notifier is told about kiosk milestones after they are saved.
type Notifier interface {
	SessionStarted(ctx context.Context, s *Session) error
	ItemTried(ctx context.Context, s *Session, item catalog.Product) error
	CheckoutCompleted(ctx context.Context, s *Session, o Order) error
}

type nopNotifier struct{}

func (nopNotifier) SessionStarted(context.Context, *Session) error {
	return nil
}

func (nopNotifier) ItemTried(context.Context, *Session, catalog.Product) error {
	return nil
}

func (nopNotifier) CheckoutCompleted(context.Context, *Session, Order) error {
	return nil
}
