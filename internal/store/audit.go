package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

const auditTimeout = 3 * time.Second

// AuditWriter is the subset of PostgresStore the observer needs.
type AuditWriter interface {
	InsertEvent(ctx context.Context, evt events.Event, orderID string) (bool, error)
	InsertStatusChange(ctx context.Context, o order.Order) error
}

// AuditObserver writes notifications to the audit trail. Write failures are
// logged and never reach the processor.
type AuditObserver struct {
	w      AuditWriter
	logger *zap.Logger
}

func NewAuditObserver(w AuditWriter, logger *zap.Logger) *AuditObserver {
	return &AuditObserver{w: w, logger: logger.Named("audit")}
}

func (a *AuditObserver) OnEventProcessed(evt events.Event, o order.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	inserted, err := a.w.InsertEvent(ctx, evt, o.OrderID)
	if err != nil {
		a.logger.Error("audit event insert failed", zap.String("event_id", evt.ID), zap.Error(err))
		return
	}
	if !inserted {
		a.logger.Debug("event already audited", zap.String("event_id", evt.ID))
	}
}

func (a *AuditObserver) OnStatusChanged(o order.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	if err := a.w.InsertStatusChange(ctx, o); err != nil {
		a.logger.Error("audit status insert failed", zap.String("order_id", o.OrderID), zap.Error(err))
	}
}
