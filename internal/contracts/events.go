package contracts

import "time"

// Event identifies one versioned contract.
type Event struct {
	Name       string
	Version    int
	SchemaPath string
	schemaFile string
}

var (
	SessionStarted = Event{
		Name:       "KioskSessionStarted",
		Version:    1,
		SchemaPath: "contracts/events/fittingroom/KioskSessionStarted.v1.enveloped.schema.json",
		schemaFile: "schemas/KioskSessionStarted.v1.enveloped.schema.json",
	}
	ItemTried = Event{
		Name:       "OutfitItemTried",
		Version:    1,
		SchemaPath: "contracts/events/fittingroom/OutfitItemTried.v1.enveloped.schema.json",
		schemaFile: "schemas/OutfitItemTried.v1.enveloped.schema.json",
	}
	CheckoutCompleted = Event{
		Name:       "KioskCheckoutCompleted",
		Version:    1,
		SchemaPath: "contracts/events/fittingroom/KioskCheckoutCompleted.v1.enveloped.schema.json",
		schemaFile: "schemas/KioskCheckoutCompleted.v1.enveloped.schema.json",
	}
)

// All lists every contract the service publishes.
var All = []Event{SessionStarted, ItemTried, CheckoutCompleted}

type SessionStartedPayload struct {
	SessionID string    `json:"sessionId"`
	StartedAt time.Time `json:"startedAt"`
}

type ItemTriedPayload struct {
	SessionID string    `json:"sessionId"`
	ProductID int       `json:"productId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Gender    string    `json:"gender"`
	TriedAt   time.Time `json:"triedAt"`
}

type CheckoutItem struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
}

type CheckoutCompletedPayload struct {
	SessionID   string         `json:"sessionId"`
	OrderID     string         `json:"orderId"`
	Items       []CheckoutItem `json:"items"`
	ItemCount   int            `json:"itemCount"`
	TotalAmount int            `json:"totalAmount"`
	Fulfillment string         `json:"fulfillment"`
	Payment     string         `json:"payment"`
	PlacedAt    time.Time      `json:"placedAt"`
}
