package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

const (
	// RedisStatusKey is a hash of orderId -> current status.
	RedisStatusKey = "orders:status"
	// RedisStatusChannel receives a JSON Notification per status change.
	RedisStatusChannel = "orders:status_changed"

	redisTimeout = 2 * time.Second
)

// RedisObserver mirrors order statuses into Redis for other readers and
// publishes status changes on a channel.
type RedisObserver struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisObserver(rdb *redis.Client, logger *zap.Logger) *RedisObserver {
	return &RedisObserver{rdb: rdb, logger: logger.Named("redis")}
}

// OnEventProcessed keeps the status hash current even when the status did not
// change, so a freshly created order is visible.
func (r *RedisObserver) OnEventProcessed(_ events.Event, o order.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := r.rdb.HSet(ctx, RedisStatusKey, o.OrderID, string(o.Status)).Err(); err != nil {
		r.logger.Warn("update status hash", zap.String("order_id", o.OrderID), zap.Error(err))
	}
}

func (r *RedisObserver) OnStatusChanged(o order.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	payload, err := json.Marshal(newNotification("status_changed", o))
	if err != nil {
		r.logger.Error("encode notification", zap.Error(err))
		return
	}

	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, RedisStatusKey, o.OrderID, string(o.Status))
	pipe.Publish(ctx, RedisStatusChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("publish status change", zap.String("order_id", o.OrderID), zap.Error(err))
	}
}
