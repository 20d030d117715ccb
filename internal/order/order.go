// Package order holds the projected state of a single purchase order.
package order

import (
	"time"

	"github.com/PratikDhanave/order-event-processor/internal/events"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
	StatusPaid          Status = "PAID"
	StatusShipped       Status = "SHIPPED"
	StatusCancelled     Status = "CANCELLED"
)

// Presentation tags returned by StatusTag.
const (
	TagWarning     = "warning"
	TagPrimary     = "primary"
	TagSuccess     = "success"
	TagDestructive = "destructive"
	TagMuted       = "muted"
)

// Now is the clock used for CreatedAt/UpdatedAt. Tests may replace it.
var Now = func() time.Time { return time.Now().UTC() }

// Order is the mutable aggregate for one orderId.
//
// The aggregate does not enforce a transition table; legality of a status
// change is decided by the processor.
type Order struct {
	OrderID      string        `json:"orderId"`
	CustomerID   string        `json:"customerId"`
	Items        []events.Item `json:"items"`
	TotalAmount  float64       `json:"totalAmount"`
	Status       Status        `json:"status"`
	EventHistory []string      `json:"eventHistory"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// New creates an order in PENDING with an empty history.
func New(orderID, customerID string, items []events.Item, totalAmount float64) *Order {
	now := Now()
	return &Order{
		OrderID:      orderID,
		CustomerID:   customerID,
		Items:        append([]events.Item(nil), items...),
		TotalAmount:  totalAmount,
		Status:       StatusPending,
		EventHistory: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetStatus overwrites the status unconditionally.
func (o *Order) SetStatus(s Status) {
	o.Status = s
	o.UpdatedAt = Now()
}

// RecordEvent appends an event id to the history.
func (o *Order) RecordEvent(eventID string) {
	o.EventHistory = append(o.EventHistory, eventID)
	o.UpdatedAt = Now()
}

// StatusTag maps the status to a presentation category.
func (o *Order) StatusTag() string {
	return o.Status.Tag()
}

// Tag maps a status to a presentation category.
func (s Status) Tag() string {
	switch s {
	case StatusPending, StatusPartiallyPaid:
		return TagWarning
	case StatusPaid:
		return TagPrimary
	case StatusShipped:
		return TagSuccess
	case StatusCancelled:
		return TagDestructive
	default:
		return TagMuted
	}
}

// Clone returns a deep copy safe to hand out of the processor.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = append([]events.Item(nil), o.Items...)
	c.EventHistory = append([]string{}, o.EventHistory...)
	return &c
}
