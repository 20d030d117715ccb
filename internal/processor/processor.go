// Package processor projects order lifecycle events into order state.
//
// Each call to ProcessEvent runs as one critical section: the transition rule,
// the log append and the observer fan-out complete before the next event is
// accepted. A failing call leaves the orders and the log exactly as they were.
package processor

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

var (
	// ErrUnsupportedKind is returned for structurally valid events of an unknown eventType.
	ErrUnsupportedKind = errors.New("unsupported event kind")
	// ErrInternalFault wraps unexpected failures while applying a transition.
	ErrInternalFault = errors.New("internal fault")
)

// Result describes a successful call.
type Result int

const (
	// Applied means the event resolved to an order.
	Applied Result = iota + 1
	// TargetNotFound means the event was logged but no order matched its orderId.
	TargetNotFound
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case TargetNotFound:
		return "target_not_found"
	default:
		return "unknown"
	}
}

// Notifier receives notifications after an event is committed.
type Notifier interface {
	NotifyEventProcessed(evt events.Event, o order.Order)
	NotifyStatusChanged(o order.Order)
}

// Processor owns the order aggregates and the processed-event log.
type Processor struct {
	mu        sync.Mutex
	orders    map[string]*order.Order
	orderIDs  []string
	processed []events.Event

	notifier Notifier
	logger   *zap.Logger
}

// New creates an empty processor. notifier may be nil.
func New(notifier Notifier, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		orders:   make(map[string]*order.Order),
		notifier: notifier,
		logger:   logger.Named("processor"),
	}
}

// ProcessEvent applies one event and reports success.
func (p *Processor) ProcessEvent(evt events.Event) bool {
	_, err := p.Process(evt)
	return err == nil
}

// Process applies one event. TargetNotFound is a successful outcome; errors
// are ErrUnsupportedKind or ErrInternalFault.
func (p *Processor) Process(evt events.Event) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	orderID := evt.OrderID()
	before, existed := p.orders[orderID]
	var prevStatus order.Status
	if existed {
		prevStatus = before.Status
	}

	next, err := p.apply(evt, orderID)
	if err != nil {
		if errors.Is(err, ErrUnsupportedKind) {
			p.logger.Warn("unsupported event type",
				zap.String("event_id", evt.ID),
				zap.String("event_type", string(evt.Type)),
			)
		} else {
			p.logger.Error("failed to process event", zap.String("event_id", evt.ID), zap.Error(err))
		}
		return 0, err
	}

	p.processed = append(p.processed, evt)

	if next == nil {
		p.logger.Warn("order not found",
			zap.String("event_id", evt.ID),
			zap.String("event_type", string(evt.Type)),
			zap.String("order_id", orderID),
		)
		return TargetNotFound, nil
	}

	next.RecordEvent(evt.ID)
	if !existed {
		p.orderIDs = append(p.orderIDs, orderID)
	}
	p.orders[orderID] = next

	if p.notifier != nil {
		p.notifier.NotifyEventProcessed(evt, *next.Clone())
		if existed && prevStatus != next.Status {
			p.notifier.NotifyStatusChanged(*next.Clone())
		}
	}

	return Applied, nil
}

// apply runs the transition rule on a copy of the target order. It returns the
// order to commit, or nil when the event targets an unknown order.
func (p *Processor) apply(evt events.Event, orderID string) (next *order.Order, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = nil
			err = fmt.Errorf("%w: event %s: %v", ErrInternalFault, evt.ID, r)
		}
	}()

	if !evt.Type.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, evt.Type)
	}

	payload, err := evt.Payload()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternalFault, err)
	}

	if created, ok := payload.(events.OrderCreated); ok {
		return p.onOrderCreated(evt, created), nil
	}

	current, ok := p.orders[orderID]
	if !ok {
		return nil, nil
	}
	next = current.Clone()

	switch e := payload.(type) {
	case events.PaymentReceived:
		p.onPaymentReceived(next, e)
	case events.ShippingScheduled:
		next.SetStatus(order.StatusShipped)
		p.logger.Info("shipping scheduled",
			zap.String("order_id", next.OrderID),
			zap.String("shipping_date", e.ShippingDate),
		)
	case events.OrderCancelled:
		next.SetStatus(order.StatusCancelled)
		p.logger.Info("order cancelled",
			zap.String("order_id", next.OrderID),
			zap.String("reason", e.Reason),
		)
	default:
		return nil, fmt.Errorf("%w: no transition for %T", ErrInternalFault, payload)
	}

	return next, nil
}

func (p *Processor) onOrderCreated(evt events.Event, e events.OrderCreated) *order.Order {
	if _, exists := p.orders[e.OrderID]; exists {
		p.logger.Warn("order recreated, previous state replaced",
			zap.String("order_id", e.OrderID),
			zap.String("event_id", evt.ID),
		)
	} else {
		p.logger.Info("order created", zap.String("order_id", e.OrderID))
	}
	return order.New(e.OrderID, e.CustomerID, e.Items, e.TotalAmount)
}

func (p *Processor) onPaymentReceived(o *order.Order, e events.PaymentReceived) {
	switch {
	case e.AmountPaid >= o.TotalAmount:
		o.SetStatus(order.StatusPaid)
		p.logger.Info("payment completed", zap.String("order_id", o.OrderID), zap.Float64("amount_paid", e.AmountPaid))
	case e.AmountPaid > 0:
		o.SetStatus(order.StatusPartiallyPaid)
		p.logger.Info("partial payment received", zap.String("order_id", o.OrderID), zap.Float64("amount_paid", e.AmountPaid))
	default:
		p.logger.Info("non-positive payment ignored", zap.String("order_id", o.OrderID), zap.Float64("amount_paid", e.AmountPaid))
	}
}

// Orders returns copies of all orders in creation order.
func (p *Processor) Orders() []order.Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]order.Order, 0, len(p.orderIDs))
	for _, id := range p.orderIDs {
		out = append(out, *p.orders[id].Clone())
	}
	return out
}

// ProcessedEvents returns the processed-event log in insertion order.
func (p *Processor) ProcessedEvents() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.processed...)
}

// Order returns a copy of one order.
func (p *Processor) Order(orderID string) (order.Order, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	o, ok := p.orders[orderID]
	if !ok {
		return order.Order{}, false
	}
	return *o.Clone(), true
}
