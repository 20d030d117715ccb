package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/order-event-processor/internal/auth"
	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/models"
	"github.com/PratikDhanave/order-event-processor/internal/processor"
)

// RegisterEventRoutes registers the ingestion endpoints and the event log.
//
// POST /events
// - Body is one serialized event; 400 when it does not parse
// - 422 when the processor rejects it, 200 otherwise
// - Idempotency-Key header replays the first response without reprocessing
//
// POST /events/batch
// - Processes {"events": [...]} in order and reports per-event results
//
// GET /events
// - Processed-event log in insertion order
func RegisterEventRoutes(r gin.IRoutes, proc *processor.Processor, idem *IdempotencyCache) {
	r.POST("/events", func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		evt, err := events.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ingest := func() (int, any) {
			res, err := proc.Process(evt)
			if err != nil {
				return http.StatusUnprocessableEntity, gin.H{"error": processErrorMessage(err), "event_id": evt.ID}
			}
			return http.StatusOK, models.EventIngestResponse{EventID: evt.ID, Result: res.String()}
		}

		key := c.GetHeader("Idempotency-Key")
		if key == "" || idem == nil {
			status, body := ingest()
			c.JSON(status, body)
			return
		}

		status, body, replayed := idem.Do(auth.Client(c)+":"+key, ingest)
		if resp, ok := body.(models.EventIngestResponse); ok {
			resp.Replayed = replayed
			body = resp
		}
		c.JSON(status, body)
	})

	r.POST("/events/batch", func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "events must be a non-empty array"})
			return
		}

		resp := models.BatchResponse{Results: make([]models.BatchItemResult, 0, len(req.Events))}
		for i, raw := range req.Events {
			item := models.BatchItemResult{Index: i}

			evt, err := events.Parse(raw)
			if err != nil {
				item.Error = err.Error()
				resp.Failed++
				resp.Results = append(resp.Results, item)
				continue
			}
			item.EventID = evt.ID

			res, err := proc.Process(evt)
			if err != nil {
				item.Error = processErrorMessage(err)
				resp.Failed++
			} else {
				item.Result = res.String()
				resp.Succeeded++
			}
			resp.Results = append(resp.Results, item)
		}

		c.JSON(http.StatusOK, resp)
	})

	r.GET("/events", func(c *gin.Context) {
		evts := proc.ProcessedEvents()
		if evts == nil {
			evts = []events.Event{}
		}
		c.JSON(http.StatusOK, gin.H{"events": evts, "count": len(evts)})
	})
}

// processErrorMessage keeps internal details out of responses.
func processErrorMessage(err error) string {
	if errors.Is(err, processor.ErrUnsupportedKind) {
		return "unsupported event type"
	}
	return "event could not be applied"
}
