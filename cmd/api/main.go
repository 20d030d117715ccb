package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/config"
	"github.com/PratikDhanave/order-event-processor/internal/handlers"
	"github.com/PratikDhanave/order-event-processor/internal/httpserver"
	"github.com/PratikDhanave/order-event-processor/internal/logger"
	"github.com/PratikDhanave/order-event-processor/internal/notify"
	"github.com/PratikDhanave/order-event-processor/internal/processor"
	"github.com/PratikDhanave/order-event-processor/internal/store"
)

// main boots the service: config → logger → observers → processor → HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl := logger.New(cfg.LogFile, cfg.IsProduction())
	defer func() { _ = zl.Sync() }()

	manager := notify.NewManager(zl)
	manager.AddObserver(notify.NewLoggerObserver(zl))
	manager.AddObserver(notify.NewAlertObserver(zl, nil))

	deps := httpserver.Deps{
		Idempotency: handlers.NewIdempotencyCache(cfg.IdempotencyTTL),
		Logger:      zl,
	}

	// Optional audit trail. It is never read back into order state.
	if cfg.DBURL != "" {
		db, err := store.NewPostgresStore(cfg.DBURL)
		if err != nil {
			zl.Fatal("connect audit database", zap.Error(err))
		}
		defer db.Close()

		if err := db.EnsureSchema(context.Background()); err != nil {
			zl.Fatal("ensure audit schema", zap.Error(err))
		}
		manager.AddObserver(store.NewAuditObserver(db, zl))
		deps.Audit = db
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zl.Fatal("parse REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		manager.AddObserver(notify.NewRedisObserver(rdb, zl))
	}

	if cfg.EventBus {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		defer pubSub.Close()
		manager.AddObserver(notify.NewBusObserver(pubSub, zl))
	}

	deps.Processor = processor.New(manager, zl)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpserver.NewRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zl.Info("server started", zap.String("addr", cfg.HTTPAddr), zap.Int("observers", manager.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
