package notify

import (
	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

// LoggerObserver writes every notification to the structured log.
type LoggerObserver struct {
	logger *zap.Logger
}

func NewLoggerObserver(logger *zap.Logger) *LoggerObserver {
	return &LoggerObserver{logger: logger.Named("orders")}
}

func (l *LoggerObserver) OnStatusChanged(o order.Order) {
	l.logger.Info("order status changed",
		zap.String("order_id", o.OrderID),
		zap.String("status", string(o.Status)),
	)
}

func (l *LoggerObserver) OnEventProcessed(evt events.Event, o order.Order) {
	l.logger.Info("event processed",
		zap.String("event_id", evt.ID),
		zap.String("event_type", string(evt.Type)),
		zap.String("order_id", o.OrderID),
	)
}

// criticalStatuses raise a warn-level alert.
var criticalStatuses = map[order.Status]bool{
	order.StatusShipped:   true,
	order.StatusCancelled: true,
}

// AlertObserver raises alerts for status changes. SHIPPED and CANCELLED are
// reported at warn level; an optional hook receives every critical alert.
type AlertObserver struct {
	logger *zap.Logger
	hook   func(Alert)
}

// Alert describes a critical status change.
type Alert struct {
	OrderID string
	Status  order.Status
	// Variant is "destructive" for cancellations and "default" otherwise.
	Variant string
}

func NewAlertObserver(logger *zap.Logger, hook func(Alert)) *AlertObserver {
	return &AlertObserver{logger: logger.Named("alerts"), hook: hook}
}

func (a *AlertObserver) OnStatusChanged(o order.Order) {
	if !criticalStatuses[o.Status] {
		a.logger.Info("order status alert",
			zap.String("order_id", o.OrderID),
			zap.String("status", string(o.Status)),
		)
		return
	}

	alert := Alert{OrderID: o.OrderID, Status: o.Status, Variant: "default"}
	if o.Status == order.StatusCancelled {
		alert.Variant = order.TagDestructive
	}
	a.logger.Warn("critical order status",
		zap.String("order_id", o.OrderID),
		zap.String("status", string(o.Status)),
		zap.String("variant", alert.Variant),
	)
	if a.hook != nil {
		a.hook(alert)
	}
}

func (a *AlertObserver) OnEventProcessed(evt events.Event, o order.Order) {
	a.logger.Debug("event alert",
		zap.String("event_type", string(evt.Type)),
		zap.String("order_id", o.OrderID),
	)
}
