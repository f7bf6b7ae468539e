package contracts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const Producer = "fitting-room-service"

// Envelope wraps every event published by the kiosk service.
type Envelope struct {
	EventName     string          `json:"eventName"`
	EventVersion  int             `json:"eventVersion"`
	EventID       string          `json:"eventId"`
	CorrelationID string          `json:"correlationId,omitempty"`
	CausationID   string          `json:"causationId,omitempty"`
	Producer      string          `json:"producer"`
	PartitionKey  string          `json:"partitionKey"`
	Sequence      int64           `json:"sequence"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Schema        string          `json:"schema"`
	Payload       json.RawMessage `json:"payload"`
}

// Check verifies the envelope carries the expected event and the fields
// consumers rely on.
func (e Envelope) Check(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName %q", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	if e.EventID == "" {
		return fmt.Errorf("missing eventId")
	}
	return nil
}

type EnvelopeOptions struct {
	PartitionKey  string
	Sequence      int64
	Producer      string
	CorrelationID string
	CausationID   string
	EventID       string
	OccurredAt    time.Time
}

// Build wraps payload for the named event. Unset options get a fresh event
// id, the current time and the default producer.
func Build(ev Event, payload any, opts EnvelopeOptions) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", ev.Name, err)
	}

	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	producer := opts.Producer
	if producer == "" {
		producer = Producer
	}

	return Envelope{
		EventName:     ev.Name,
		EventVersion:  ev.Version,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  opts.PartitionKey,
		Sequence:      opts.Sequence,
		OccurredAt:    occurredAt,
		Schema:        ev.SchemaPath,
		Payload:       raw,
	}, nil
}

// Decode parses an envelope without touching its payload.
func Decode(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
