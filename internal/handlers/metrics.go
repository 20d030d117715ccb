package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/processor"
)

// parseRFC3339 parses an RFC3339 timestamp and normalizes it to UTC.
func parseRFC3339(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// RegisterMetricRoutes registers the projection metrics endpoint.
//
// GET /metrics
// - Without query params returns order counts by status and event counts by type
// - With event_type, from, to returns the count of processed events of that
//   type whose timestamp is in [from,to)
func RegisterMetricRoutes(r gin.IRoutes, proc *processor.Processor) {
	r.GET("/metrics", func(c *gin.Context) {
		eventType := c.Query("event_type")
		fromStr := c.Query("from")
		toStr := c.Query("to")

		if eventType == "" && fromStr == "" && toStr == "" {
			c.JSON(http.StatusOK, proc.Stats())
			return
		}

		if eventType == "" || fromStr == "" || toStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_type, from, to are required together"})
			return
		}

		from, err := parseRFC3339(fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		to, err := parseRFC3339(toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}

		// Validate window to avoid confusing results.
		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be < to"})
			return
		}

		count := proc.CountEvents(events.Type(eventType), from, to)
		c.JSON(http.StatusOK, gin.H{
			"event_type": eventType,
			"count":      count,
		})
	})
}
