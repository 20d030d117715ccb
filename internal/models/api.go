package models

import (
	"encoding/json"

	"github.com/PratikDhanave/order-event-processor/internal/order"
)

// EventIngestResponse is returned by POST /events.
// Replayed indicates the response came from the Idempotency-Key cache and the
// event was not processed again.
type EventIngestResponse struct {
	EventID  string `json:"event_id"`
	Result   string `json:"result"`
	Replayed bool   `json:"replayed"`
}

// BatchRequest is the POST /events/batch payload. Events are processed in order.
type BatchRequest struct {
	Events []json.RawMessage `json:"events" binding:"required,min=1"`
}

// BatchItemResult reports the outcome of one batch entry.
type BatchItemResult struct {
	Index   int    `json:"index"`
	EventID string `json:"event_id,omitempty"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResponse is returned by POST /events/batch.
type BatchResponse struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []BatchItemResult `json:"results"`
}

// OrderView is an order plus its presentation tag.
type OrderView struct {
	order.Order
	StatusTag string `json:"statusTag"`
}

// NewOrderView builds the API representation of an order.
func NewOrderView(o order.Order) OrderView {
	return OrderView{Order: o, StatusTag: o.Status.Tag()}
}
