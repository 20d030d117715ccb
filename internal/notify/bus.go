package notify

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

// Bus topics.
const (
	TopicEventProcessed = "order.event_processed"
	TopicStatusChanged  = "order.status_changed"
)

// Notification is the message envelope published on the bus.
type Notification struct {
	Kind        string       `json:"kind"`
	OrderID     string       `json:"order_id"`
	CustomerID  string       `json:"customer_id"`
	Status      order.Status `json:"status"`
	StatusTag   string       `json:"status_tag"`
	TotalAmount float64      `json:"total_amount"`
	EventCount  int          `json:"event_count"`
	EventID     string       `json:"event_id,omitempty"`
	EventType   events.Type  `json:"event_type,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

func newNotification(kind string, o order.Order) Notification {
	return Notification{
		Kind:        kind,
		OrderID:     o.OrderID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		StatusTag:   o.StatusTag(),
		TotalAmount: o.TotalAmount,
		EventCount:  len(o.EventHistory),
		OccurredAt:  o.UpdatedAt,
	}
}

// BusObserver publishes notifications to a watermill publisher. Publish
// failures are logged and do not affect processing.
type BusObserver struct {
	publisher message.Publisher
	logger    *zap.Logger
}

func NewBusObserver(publisher message.Publisher, logger *zap.Logger) *BusObserver {
	return &BusObserver{publisher: publisher, logger: logger.Named("bus")}
}

func (b *BusObserver) OnEventProcessed(evt events.Event, o order.Order) {
	n := newNotification("event_processed", o)
	n.EventID = evt.ID
	n.EventType = evt.Type
	b.publish(TopicEventProcessed, o.OrderID, n)
}

func (b *BusObserver) OnStatusChanged(o order.Order) {
	b.publish(TopicStatusChanged, o.OrderID, newNotification("status_changed", o))
}

func (b *BusObserver) publish(topic, orderID string, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		b.logger.Error("encode notification", zap.String("topic", topic), zap.Error(err))
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("order_id", orderID)

	if err := b.publisher.Publish(topic, msg); err != nil {
		b.logger.Error("publish notification",
			zap.String("topic", topic),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}
