package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/auth"
	"github.com/PratikDhanave/order-event-processor/internal/config"
	"github.com/PratikDhanave/order-event-processor/internal/handlers"
	"github.com/PratikDhanave/order-event-processor/internal/processor"
)

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router serves.
type Deps struct {
	Processor   *processor.Processor
	Idempotency *handlers.IdempotencyCache
	// Audit is optional; when nil /ready only reports the process state.
	Audit  Pinger
	Logger *zap.Logger
}

// NewRouter wires public endpoints and authenticated APIs.
// Public: /health, /ready
// Authenticated: /events, /events/batch, /orders, /orders/:id, /metrics
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger.Named("http")))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the audit database is reachable when configured.
	r.GET("/ready", func(c *gin.Context) {
		if deps.Audit == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := deps.Audit.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Auth group enforces client identity via X-API-Key.
	authGroup := r.Group("/")
	authGroup.Use(auth.APIKeyMiddleware(cfg.APIKeys))

	handlers.RegisterEventRoutes(authGroup, deps.Processor, deps.Idempotency)
	handlers.RegisterOrderRoutes(authGroup, deps.Processor)
	handlers.RegisterMetricRoutes(authGroup, deps.Processor)

	return r
}

// requestLogger tags each request with an X-Request-ID and logs its outcome.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("client", auth.Client(c)),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
