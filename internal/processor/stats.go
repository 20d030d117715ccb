package processor

import (
	"time"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

// Stats summarizes the current projection.
type Stats struct {
	Orders          int                  `json:"orders"`
	ProcessedEvents int                  `json:"processed_events"`
	ByStatus        map[order.Status]int `json:"by_status"`
	ByEventType     map[events.Type]int  `json:"by_event_type"`
}

// Stats counts orders by status and processed events by type.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		Orders:          len(p.orders),
		ProcessedEvents: len(p.processed),
		ByStatus:        make(map[order.Status]int),
		ByEventType:     make(map[events.Type]int),
	}
	for _, o := range p.orders {
		s.ByStatus[o.Status]++
	}
	for _, evt := range p.processed {
		s.ByEventType[evt.Type]++
	}
	return s
}

// CountEvents returns the number of processed events of eventType whose
// timestamp falls in [from, to). Events with unparsable timestamps are skipped.
func (p *Processor) CountEvents(eventType events.Type, from, to time.Time) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	var count int64
	for _, evt := range p.processed {
		if evt.Type != eventType {
			continue
		}
		at, err := evt.OccurredAt()
		if err != nil {
			continue
		}
		if !at.Before(from) && at.Before(to) {
			count++
		}
	}
	return count
}
