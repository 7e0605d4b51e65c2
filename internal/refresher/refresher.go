// Package refresher owns the fetch→normalize→commit pipeline and the
// generation counter that guards it against out-of-order responses.
package refresher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rmawad/partsync/internal/domain/model"
	"github.com/rmawad/partsync/internal/normalize"
	"github.com/rmawad/partsync/internal/store"
)

// Fetcher retrieves the raw order snapshot for the current user.
type Fetcher interface {
	FetchOrders(ctx context.Context, force bool) ([]normalize.RawOrder, error)
}

// Snapshotter persists the committed order set for warm starts.
type Snapshotter interface {
	Save(ctx context.Context, orders []model.Order) error
}

// Refresher issues snapshot fetches stamped with a strictly increasing
// generation token. Only the response carrying the highest token issued so far
// may commit to the store; anything else is silently discarded. A slow fetch
// overtaken by a faster one therefore can never clobber newer state, no
// matter how responses interleave.
type Refresher struct {
	fetcher   Fetcher
	store     *store.OrderStore
	snapshots Snapshotter
	logger    *slog.Logger
	debounce  time.Duration

	gen atomic.Int64

	commitMu      sync.Mutex
	lastCommitGen int64
	lastCommitAt  time.Time

	mu     sync.Mutex
	runCtx context.Context
	cancel context.CancelFunc
	timer  *time.Timer
}

// New constructs a refresher. snapshots may be nil when the cache is disabled.
func New(fetcher Fetcher, orderStore *store.OrderStore, snapshots Snapshotter, debounce time.Duration, logger *slog.Logger) *Refresher {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Refresher{
		fetcher:   fetcher,
		store:     orderStore,
		snapshots: snapshots,
		logger:    logger,
		debounce:  debounce,
	}
}

// Refresh fetches the full snapshot and commits it if no newer refresh was
// started in the meantime. On failure the store is left untouched and the
// error is returned to the caller; a stale response is not an error.
func (r *Refresher) Refresh(ctx context.Context, force bool) error {
	gen := r.gen.Add(1)

	raws, err := r.fetcher.FetchOrders(ctx, force)
	if err != nil {
		return fmt.Errorf("fetch orders: %w", err)
	}

	orders := normalize.Orders(raws)
	for _, order := range orders {
		if !order.AcceptedQuoteListed() {
			r.logger.Warn("accepted quote missing from quote list",
				slog.String("order", order.OrderNumber))
		}
	}

	r.commitMu.Lock()
	defer r.commitMu.Unlock()

	if gen != r.gen.Load() || gen <= r.lastCommitGen {
		r.logger.Debug("discarding stale refresh response",
			slog.Int64("generation", gen),
			slog.Int64("current", r.gen.Load()))
		return nil
	}

	r.store.ReplaceAll(orders)
	r.lastCommitGen = gen
	r.lastCommitAt = time.Now()

	if r.snapshots != nil {
		if err := r.snapshots.Save(ctx, orders); err != nil {
			r.logger.Error("persist snapshot failed", slog.String("error", err.Error()))
		}
	}

	r.logger.Info("orders committed",
		slog.Int64("generation", gen),
		slog.Int("orders", len(orders)),
		slog.Bool("force", force))
	return nil
}

// Schedule requests a refresh soon. Overlapping triggers coalesce into one
// fetch via a short debounce, but correctness does not depend on it: the
// generation guard alone decides what commits.
func (r *Refresher) Schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Reset(r.debounce)
		return
	}
	r.timer = time.AfterFunc(r.debounce, r.fire)
}

func (r *Refresher) fire() {
	r.mu.Lock()
	ctx := r.runCtx
	r.timer = nil
	r.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}
	if err := r.Refresh(ctx, false); err != nil {
		r.logger.Error("scheduled refresh failed", slog.String("error", err.Error()))
	}
}

// Start binds scheduled refreshes to the application context.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runCtx, r.cancel = context.WithCancel(ctx)
}

// Stop cancels pending scheduled work. In-flight fetches are not aborted;
// their results are discarded by the generation guard if superseded.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
		r.runCtx = nil
	}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Generation returns the highest token issued so far.
func (r *Refresher) Generation() int64 {
	return r.gen.Load()
}

// LastCommit reports the generation and time of the latest committed snapshot.
func (r *Refresher) LastCommit() (int64, time.Time) {
	r.commitMu.Lock()
	defer r.commitMu.Unlock()
	return r.lastCommitGen, r.lastCommitAt
}
