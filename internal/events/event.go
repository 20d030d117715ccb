// Package events defines the order lifecycle events accepted by the processor.
//
// An Event carries the shared envelope fields (eventId, timestamp, eventType)
// and keeps the original JSON body. Kind-specific fields are only decoded when
// the processor asks for the Payload, so a malformed amount or item list is a
// processing failure rather than a parse failure.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Type is the eventType discriminator.
type Type string

const (
	TypeOrderCreated      Type = "OrderCreated"
	TypePaymentReceived   Type = "PaymentReceived"
	TypeShippingScheduled Type = "ShippingScheduled"
	TypeOrderCancelled    Type = "OrderCancelled"
)

// Known reports whether t is one of the four supported kinds.
func (t Type) Known() bool {
	switch t {
	case TypeOrderCreated, TypePaymentReceived, TypeShippingScheduled, TypeOrderCancelled:
		return true
	}
	return false
}

// ErrUnsupportedType is returned when a payload is requested for an unknown kind.
var ErrUnsupportedType = errors.New("unsupported event type")

// Item is one order line.
type Item struct {
	ItemID string `json:"itemId"`
	Qty    int    `json:"qty"`
}

// Payload is the kind-specific part of an event. The set of implementations is
// closed; the processor switches over them exhaustively.
type Payload interface {
	EventType() Type
	TargetOrderID() string
	payload()
}

type OrderCreated struct {
	OrderID     string  `json:"orderId"`
	CustomerID  string  `json:"customerId"`
	Items       []Item  `json:"items"`
	TotalAmount float64 `json:"totalAmount"`
}

type PaymentReceived struct {
	OrderID    string  `json:"orderId"`
	AmountPaid float64 `json:"amountPaid"`
}

type ShippingScheduled struct {
	OrderID      string `json:"orderId"`
	ShippingDate string `json:"shippingDate"`
}

type OrderCancelled struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

func (OrderCreated) EventType() Type      { return TypeOrderCreated }
func (PaymentReceived) EventType() Type   { return TypePaymentReceived }
func (ShippingScheduled) EventType() Type { return TypeShippingScheduled }
func (OrderCancelled) EventType() Type    { return TypeOrderCancelled }

func (p OrderCreated) TargetOrderID() string      { return p.OrderID }
func (p PaymentReceived) TargetOrderID() string   { return p.OrderID }
func (p ShippingScheduled) TargetOrderID() string { return p.OrderID }
func (p OrderCancelled) TargetOrderID() string    { return p.OrderID }

func (OrderCreated) payload()      {}
func (PaymentReceived) payload()   {}
func (ShippingScheduled) payload() {}
func (OrderCancelled) payload()    {}

// Event is an immutable order lifecycle event.
type Event struct {
	ID        string
	Timestamp string
	Type      Type

	raw json.RawMessage
}

// New builds an event from a typed payload. The resulting event serializes to
// the same flat JSON shape Parse accepts.
func New(eventID, timestamp string, p Payload) (Event, error) {
	if p == nil {
		return Event{}, errors.New("payload required")
	}

	body, err := json.Marshal(p)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", p.EventType(), err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", p.EventType(), err)
	}
	fields["eventId"] = eventID
	fields["timestamp"] = timestamp
	fields["eventType"] = p.EventType()

	raw, err := json.Marshal(fields)
	if err != nil {
		return Event{}, fmt.Errorf("encode event %s: %w", eventID, err)
	}

	return Parse(raw)
}

// Payload decodes the kind-specific fields. Missing fields decode to their
// zero values; fields of the wrong JSON type are an error.
func (e Event) Payload() (Payload, error) {
	switch e.Type {
	case TypeOrderCreated:
		return decode[OrderCreated](e.raw)
	case TypePaymentReceived:
		return decode[PaymentReceived](e.raw)
	case TypeShippingScheduled:
		return decode[ShippingScheduled](e.raw)
	case TypeOrderCancelled:
		return decode[OrderCancelled](e.raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, e.Type)
	}
}

func decode[T Payload](raw json.RawMessage) (Payload, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", p.EventType(), err)
	}
	return p, nil
}

// OrderID returns the targeted order id, or "" when the field is absent or
// not a string.
func (e Event) OrderID() string {
	var target struct {
		OrderID json.RawMessage `json:"orderId"`
	}
	if err := json.Unmarshal(e.raw, &target); err != nil {
		return ""
	}
	var id string
	if err := json.Unmarshal(target.OrderID, &id); err != nil {
		return ""
	}
	return id
}

// OccurredAt parses the RFC3339 timestamp and normalizes it to UTC.
func (e Event) OccurredAt() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Raw returns a copy of the serialized event.
func (e Event) Raw() json.RawMessage {
	out := make(json.RawMessage, len(e.raw))
	copy(out, e.raw)
	return out
}

// MarshalJSON emits the event exactly as it was received.
func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.raw) == 0 {
		return []byte("null"), nil
	}
	return e.Raw(), nil
}

// UnmarshalJSON lets events be embedded in larger request bodies.
func (e *Event) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
