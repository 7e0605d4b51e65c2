// Package postgres persists the most recently committed order snapshot so a
// restart can serve orders before the first marketplace fetch completes.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/rmawad/partsync/internal/domain/errors"
	"github.com/rmawad/partsync/internal/domain/model"
)

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Cache stores one JSONB snapshot row per user. The refresher overwrites the
// row on every commit, so the cache never holds anything older than the last
// successful refresh.
type Cache struct {
	pool   pool
	userID string
	logger *slog.Logger
}

// New creates a snapshot cache bound to one user, with schema initialization.
func New(ctx context.Context, dsn, userID string, logger *slog.Logger) (*Cache, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	p, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	cache := &Cache{pool: p, userID: userID, logger: logger}
	if err := cache.initSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}

	return cache, nil
}

// Close releases database resources.
func (c *Cache) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *Cache) initSchema(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS order_snapshots (
            user_id TEXT PRIMARY KEY,
            payload JSONB NOT NULL,
            committed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := c.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Save replaces the user's snapshot with the given order set.
func (c *Cache) Save(ctx context.Context, orders []model.Order) error {
	payload, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	const query = `INSERT INTO order_snapshots (user_id, payload, committed_at)
                   VALUES ($1, $2, NOW())
                   ON CONFLICT (user_id) DO UPDATE
                   SET payload = EXCLUDED.payload, committed_at = NOW()`
	if _, err := c.pool.Exec(ctx, query, c.userID, payload); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	c.logger.Debug("snapshot saved", slog.Int("orders", len(orders)))
	return nil
}

// Load returns the cached order set, or ErrSnapshotNotFound when the user has
// no stored snapshot yet.
func (c *Cache) Load(ctx context.Context) ([]model.Order, error) {
	const query = `SELECT payload FROM order_snapshots WHERE user_id=$1`
	var payload []byte
	if err := c.pool.QueryRow(ctx, query, c.userID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var orders []model.Order
	if err := json.Unmarshal(payload, &orders); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return orders, nil
}

// HealthCheck verifies database connectivity.
func (c *Cache) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.pool.Ping(ctx)
}
