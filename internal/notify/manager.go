// Package notify fans order notifications out to registered observers.
package notify

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

// Observer is notified synchronously about processed events and status changes.
// Observers receive snapshots and must not call back into the processor.
type Observer interface {
	OnEventProcessed(evt events.Event, o order.Order)
	OnStatusChanged(o order.Order)
}

// Manager keeps observers in registration order. Observers must be comparable
// (pointer receivers) for RemoveObserver to work.
type Manager struct {
	mu        sync.RWMutex
	observers []Observer
	logger    *zap.Logger
}

// NewManager creates an empty registry. A nil logger disables fault logging.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// AddObserver appends an observer.
func (m *Manager) AddObserver(o Observer) {
	if o == nil {
		return
	}
	m.mu.Lock()
	m.observers = append(m.observers, o)
	m.mu.Unlock()
}

// RemoveObserver removes the first registration of o, if any.
func (m *Manager) RemoveObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, registered := range m.observers {
		if registered == o {
			m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.observers)
}

// NotifyEventProcessed calls OnEventProcessed on every observer.
func (m *Manager) NotifyEventProcessed(evt events.Event, o order.Order) {
	for _, obs := range m.snapshot() {
		m.deliver(obs, "event_processed", func() { obs.OnEventProcessed(evt, cloneValue(o)) })
	}
}

// NotifyStatusChanged calls OnStatusChanged on every observer.
func (m *Manager) NotifyStatusChanged(o order.Order) {
	for _, obs := range m.snapshot() {
		m.deliver(obs, "status_changed", func() { obs.OnStatusChanged(cloneValue(o)) })
	}
}

func (m *Manager) snapshot() []Observer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Observer(nil), m.observers...)
}

// deliver isolates one observer call so a panic cannot stop the fan-out.
func (m *Manager) deliver(obs Observer, kind string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("observer panicked",
				zap.String("notification", kind),
				zap.String("observer", fmt.Sprintf("%T", obs)),
				zap.Any("panic", r),
			)
		}
	}()
	call()
}

// cloneValue gives each observer its own copy of the slices.
func cloneValue(o order.Order) order.Order {
	return *o.Clone()
}
