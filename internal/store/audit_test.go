package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

type fakeWriter struct {
	events   map[string]bool
	statuses []order.Status
	err      error
}

func (f *fakeWriter) InsertEvent(_ context.Context, evt events.Event, _ string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.events[evt.ID] {
		return false, nil
	}
	f.events[evt.ID] = true
	return true, nil
}

func (f *fakeWriter) InsertStatusChange(_ context.Context, o order.Order) error {
	if f.err != nil {
		return f.err
	}
	f.statuses = append(f.statuses, o.Status)
	return nil
}

func TestAuditObserver(t *testing.T) {
	w := &fakeWriter{events: map[string]bool{}}
	a := NewAuditObserver(w, zap.NewNop())

	evt, err := events.New("e1", "2025-01-10T10:00:00Z", events.ShippingScheduled{OrderID: "ORD1"})
	require.NoError(t, err)
	o := order.New("ORD1", "CUST1", nil, 10)
	o.SetStatus(order.StatusShipped)

	a.OnEventProcessed(evt, *o)
	a.OnEventProcessed(evt, *o)
	a.OnStatusChanged(*o)

	assert.Len(t, w.events, 1)
	assert.Equal(t, []order.Status{order.StatusShipped}, w.statuses)
}

func TestAuditObserverLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	a := NewAuditObserver(&fakeWriter{err: errors.New("db down")}, zap.New(core))

	evt, err := events.New("e1", "2025-01-10T10:00:00Z", events.OrderCancelled{OrderID: "ORD1"})
	require.NoError(t, err)
	o := order.New("ORD1", "CUST1", nil, 10)

	a.OnEventProcessed(evt, *o)
	a.OnStatusChanged(*o)

	assert.Equal(t, 2, logs.Len())
}
