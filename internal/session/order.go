package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/cart"
)

var ErrInvalidCheckout = errors.New("invalid checkout option")

type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

type Payment string

const (
	PaymentUPICard Payment = "upi_card"
	PaymentCounter Payment = "counter"
)

const OrderConfirmed = "confirmed"

// CheckoutInput carries the cart page choices. Empty fields take the kiosk
// defaults: pick up now, pay by UPI or card.
type CheckoutInput struct {
	Fulfillment Fulfillment `json:"fulfillment"`
	Payment     Payment     `json:"payment"`
}

func (in CheckoutInput) normalize() (CheckoutInput, error) {
	switch in.Fulfillment {
	case "":
		in.Fulfillment = FulfillmentPickup
	case FulfillmentPickup, FulfillmentDelivery:
	default:
		return in, fmt.Errorf("%w: fulfillment %q", ErrInvalidCheckout, in.Fulfillment)
	}
	switch in.Payment {
	case "":
		in.Payment = PaymentUPICard
	case PaymentUPICard, PaymentCounter:
	default:
		return in, fmt.Errorf("%w: payment %q", ErrInvalidCheckout, in.Payment)
	}
	return in, nil
}

// Order is the simulated order summary shown on the checkout page.
type Order struct {
	ID          string      `json:"orderId"`
	Items       int         `json:"items"`
	TotalAmount int         `json:"totalAmount"`
	Fulfillment Fulfillment `json:"fulfillment"`
	Payment     Payment     `json:"payment"`
	Status      string      `json:"status"`
	PlacedAt    time.Time   `json:"placedAt"`
}

func newOrder(number int, c cart.Cart, in CheckoutInput, at time.Time) Order {
	return Order{
		ID:          fmt.Sprintf("VFR%04d", number%10000),
		Items:       c.Len(),
		TotalAmount: c.Total(),
		Fulfillment: in.Fulfillment,
		Payment:     in.Payment,
		Status:      OrderConfirmed,
		PlacedAt:    at,
	}
}
