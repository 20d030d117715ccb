package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/config"
	"github.com/PratikDhanave/order-event-processor/internal/handlers"
	"github.com/PratikDhanave/order-event-processor/internal/models"
	"github.com/PratikDhanave/order-event-processor/internal/notify"
	"github.com/PratikDhanave/order-event-processor/internal/processor"
)

const (
	dashboardKey = "dashboard-key"
	replayKey    = "replay-key"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newTestRouter(t *testing.T, audit Pinger) (*gin.Engine, *processor.Processor) {
	t.Helper()

	cfg := config.Config{APIKeys: map[string]string{dashboardKey: "dashboard", replayKey: "replay"}}
	proc := processor.New(notify.NewManager(zap.NewNop()), zap.NewNop())

	r := NewRouter(cfg, Deps{
		Processor:   proc,
		Idempotency: handlers.NewIdempotencyCache(time.Minute),
		Audit:       audit,
		Logger:      zap.NewNop(),
	})
	return r, proc
}

func do(t *testing.T, r http.Handler, method, path, apiKey, idemKey string, body []byte) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func postEvent(t *testing.T, r http.Handler, idemKey, raw string) (int, []byte) {
	return do(t, r, http.MethodPost, "/events", dashboardKey, idemKey, []byte(raw))
}

const (
	createORD1 = `{"eventId":"e1","timestamp":"2025-01-10T10:00:00Z","eventType":"OrderCreated","orderId":"ORD1","customerId":"CUST1","items":[{"itemId":"P001","qty":2}],"totalAmount":150}`
	payORD1    = `{"eventId":"e2","timestamp":"2025-01-10T10:30:00Z","eventType":"PaymentReceived","orderId":"ORD1","amountPaid":150}`
	shipORD1   = `{"eventId":"e3","timestamp":"2025-01-10T11:00:00Z","eventType":"ShippingScheduled","orderId":"ORD1","shippingDate":"2025-01-11"}`
)

func TestHealthAndReady(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	s, _ := do(t, r, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, s)

	s, _ = do(t, r, http.MethodGet, "/ready", "", "", nil)
	assert.Equal(t, http.StatusOK, s)
}

func TestReadyReportsAuditOutage(t *testing.T) {
	r, _ := newTestRouter(t, fakePinger{err: errors.New("connection refused")})

	s, b := do(t, r, http.MethodGet, "/ready", "", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, s)
	assert.Contains(t, string(b), "not_ready")
}

func TestEventsUnauthorizedWithoutAPIKey(t *testing.T) {
	r, proc := newTestRouter(t, nil)

	s, _ := do(t, r, http.MethodPost, "/events", "", "", []byte(createORD1))
	assert.Equal(t, http.StatusUnauthorized, s)

	s, _ = do(t, r, http.MethodGet, "/orders", "wrong", "", nil)
	assert.Equal(t, http.StatusUnauthorized, s)
	assert.Empty(t, proc.ProcessedEvents())
}

func TestEventsBadRequestOnInvalidPayload(t *testing.T) {
	r, proc := newTestRouter(t, nil)

	s, b := postEvent(t, r, "", `{"eventType":"OrderCreated","timestamp":"2025-01-10T10:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, s)
	assert.Contains(t, string(b), "eventId")

	s, _ = postEvent(t, r, "", `not json`)
	assert.Equal(t, http.StatusBadRequest, s)
	assert.Empty(t, proc.ProcessedEvents())
}

func TestEventsUnsupportedKind(t *testing.T) {
	r, proc := newTestRouter(t, nil)

	s, b := postEvent(t, r, "", `{"eventId":"e9","timestamp":"2025-01-10T10:00:00Z","eventType":"OrderRefunded","orderId":"ORD1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, s)
	assert.Contains(t, string(b), "unsupported event type")
	assert.Empty(t, proc.ProcessedEvents())
}

func TestCreatePayShipThroughAPI(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, raw := range []string{createORD1, payORD1, shipORD1} {
		s, b := postEvent(t, r, "", raw)
		require.Equal(t, http.StatusOK, s, string(b))

		var resp models.EventIngestResponse
		require.NoError(t, json.Unmarshal(b, &resp))
		assert.Equal(t, "applied", resp.Result)
	}

	s, b := do(t, r, http.MethodGet, "/orders/ORD1", dashboardKey, "", nil)
	require.Equal(t, http.StatusOK, s)

	var view struct {
		OrderID      string   `json:"orderId"`
		Status       string   `json:"status"`
		StatusTag    string   `json:"statusTag"`
		EventHistory []string `json:"eventHistory"`
	}
	require.NoError(t, json.Unmarshal(b, &view))
	assert.Equal(t, "ORD1", view.OrderID)
	assert.Equal(t, "SHIPPED", view.Status)
	assert.Equal(t, "success", view.StatusTag)
	assert.Equal(t, []string{"e1", "e2", "e3"}, view.EventHistory)

	s, b = do(t, r, http.MethodGet, "/events", dashboardKey, "", nil)
	require.Equal(t, http.StatusOK, s)
	var log struct {
		Count  int              `json:"count"`
		Events []map[string]any `json:"events"`
	}
	require.NoError(t, json.Unmarshal(b, &log))
	assert.Equal(t, 3, log.Count)
	assert.Equal(t, "e1", log.Events[0]["eventId"])
	assert.Equal(t, "ShippingScheduled", log.Events[2]["eventType"])
}

func TestPaymentForUnknownOrderThroughAPI(t *testing.T) {
	r, proc := newTestRouter(t, nil)

	s, b := postEvent(t, r, "", `{"eventId":"e1","timestamp":"2025-01-10T10:00:00Z","eventType":"PaymentReceived","orderId":"ORD_X","amountPaid":50}`)
	require.Equal(t, http.StatusOK, s)
	assert.Contains(t, string(b), "target_not_found")
	assert.Len(t, proc.ProcessedEvents(), 1)

	s, _ = do(t, r, http.MethodGet, "/orders/ORD_X", dashboardKey, "", nil)
	assert.Equal(t, http.StatusNotFound, s)
}

// Retrying with the same Idempotency-Key must not process the event twice.
func TestIdempotencyKeyReplaysResponse(t *testing.T) {
	r, proc := newTestRouter(t, nil)

	s, _ := postEvent(t, r, "k1", createORD1)
	require.Equal(t, http.StatusOK, s)

	s, b := postEvent(t, r, "k1", createORD1)
	require.Equal(t, http.StatusOK, s)

	var resp models.EventIngestResponse
	require.NoError(t, json.Unmarshal(b, &resp))
	assert.True(t, resp.Replayed)
	assert.Equal(t, "e1", resp.EventID)
	assert.Len(t, proc.ProcessedEvents(), 1)

	o, _ := proc.Order("ORD1")
	assert.Len(t, o.EventHistory, 1)
}

// Idempotency keys are scoped per client.
func TestIdempotencyKeysAreScopedPerClient(t *testing.T) {
	r, proc := newTestRouter(t, nil)

	s, _ := do(t, r, http.MethodPost, "/events", dashboardKey, "same", []byte(createORD1))
	require.Equal(t, http.StatusOK, s)
	s, _ = do(t, r, http.MethodPost, "/events", replayKey, "same", []byte(payORD1))
	require.Equal(t, http.StatusOK, s)

	assert.Len(t, proc.ProcessedEvents(), 2)
}

func TestBatch(t *testing.T) {
	r, proc := newTestRouter(t, nil)

	body := []byte(`{"events":[` + createORD1 + `,` + payORD1 + `,{"eventType":"OrderCreated"},` +
		`{"eventId":"e4","timestamp":"2025-01-10T10:00:00Z","eventType":"OrderLost"}]}`)

	s, b := do(t, r, http.MethodPost, "/events/batch", dashboardKey, "", body)
	require.Equal(t, http.StatusOK, s, string(b))

	var resp models.BatchResponse
	require.NoError(t, json.Unmarshal(b, &resp))
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Results, 4)
	assert.Equal(t, "applied", resp.Results[1].Result)
	assert.NotEmpty(t, resp.Results[2].Error)
	assert.Equal(t, "unsupported event type", resp.Results[3].Error)
	assert.Len(t, proc.ProcessedEvents(), 2)

	s, _ = do(t, r, http.MethodPost, "/events/batch", dashboardKey, "", []byte(`{"events":[]}`))
	assert.Equal(t, http.StatusBadRequest, s)
}

func TestOrdersListing(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	postEvent(t, r, "", createORD1)
	postEvent(t, r, "", `{"eventId":"e5","timestamp":"2025-01-10T10:00:00Z","eventType":"OrderCreated","orderId":"ORD2","totalAmount":10}`)
	postEvent(t, r, "", `{"eventId":"e6","timestamp":"2025-01-10T10:05:00Z","eventType":"OrderCancelled","orderId":"ORD2","reason":"changed mind"}`)

	s, b := do(t, r, http.MethodGet, "/orders", dashboardKey, "", nil)
	require.Equal(t, http.StatusOK, s)

	var list struct {
		Count  int `json:"count"`
		Orders []struct {
			OrderID   string `json:"orderId"`
			StatusTag string `json:"statusTag"`
		} `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(b, &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "ORD1", list.Orders[0].OrderID)
	assert.Equal(t, "warning", list.Orders[0].StatusTag)
	assert.Equal(t, "destructive", list.Orders[1].StatusTag)
}

func TestMetrics(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	for _, raw := range []string{createORD1, payORD1, shipORD1} {
		postEvent(t, r, "", raw)
	}

	s, b := do(t, r, http.MethodGet, "/metrics", dashboardKey, "", nil)
	require.Equal(t, http.StatusOK, s)
	var stats processor.Stats
	require.NoError(t, json.Unmarshal(b, &stats))
	assert.Equal(t, 1, stats.Orders)
	assert.Equal(t, 3, stats.ProcessedEvents)

	q := url.Values{}
	q.Set("event_type", "PaymentReceived")
	q.Set("from", "2025-01-10T10:00:00Z")
	q.Set("to", "2025-01-10T11:00:00Z")
	s, b = do(t, r, http.MethodGet, "/metrics?"+q.Encode(), dashboardKey, "", nil)
	require.Equal(t, http.StatusOK, s)

	var count struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(b, &count))
	assert.Equal(t, int64(1), count.Count)

	q.Set("to", "2025-01-10T09:00:00Z")
	s, _ = do(t, r, http.MethodGet, "/metrics?"+q.Encode(), dashboardKey, "", nil)
	assert.Equal(t, http.StatusBadRequest, s)

	s, _ = do(t, r, http.MethodGet, "/metrics?event_type=PaymentReceived", dashboardKey, "", nil)
	assert.Equal(t, http.StatusBadRequest, s)
}
