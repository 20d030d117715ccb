package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/order-event-processor/internal/events"
	"github.com/PratikDhanave/order-event-processor/internal/order"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is a write-only audit trail of processed events and status
// changes. Order state is never loaded back from it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertEvent records a processed event and returns inserted=false when the
// event id was already recorded.
func (p *PostgresStore) InsertEvent(ctx context.Context, evt events.Event, orderID string) (bool, error) {
	if evt.ID == "" {
		return false, errors.New("event id required")
	}

	// A NULL occurred_at keeps events with non-RFC3339 timestamps.
	var occurredAt *time.Time
	if at, err := evt.OccurredAt(); err == nil {
		occurredAt = &at
	}

	// RETURNING 1 only when inserted; duplicates return no rows.
	var one int
	err := p.pool.QueryRow(ctx, `
		INSERT INTO processed_events(event_id, event_type, order_id, occurred_at, payload)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (event_id) DO NOTHING
		RETURNING 1
	`, evt.ID, string(evt.Type), orderID, occurredAt, []byte(evt.Raw())).Scan(&one)

	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// InsertStatusChange appends one status transition.
func (p *PostgresStore) InsertStatusChange(ctx context.Context, o order.Order) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO order_status_changes(order_id, status, event_count, changed_at)
		VALUES ($1,$2,$3,$4)
	`, o.OrderID, string(o.Status), len(o.EventHistory), o.UpdatedAt)
	return err
}
