package refresher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rmawad/partsync/internal/domain/model"
	"github.com/rmawad/partsync/internal/normalize"
	"github.com/rmawad/partsync/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func rawOrder(number string) normalize.RawOrder {
	status := "pending"
	return normalize.RawOrder{OrderNumber: &number, Status: &status}
}

type fetcherStub struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, ctx context.Context, force bool) ([]normalize.RawOrder, error)
}

func (f *fetcherStub) FetchOrders(ctx context.Context, force bool) ([]normalize.RawOrder, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(call, ctx, force)
}

func (f *fetcherStub) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type snapshotterStub struct {
	mu    sync.Mutex
	saves int
	err   error
}

func (s *snapshotterStub) Save(ctx context.Context, orders []model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return s.err
}

func (s *snapshotterStub) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func TestRefreshCommitsLatestGeneration(t *testing.T) {
	orderStore := store.NewOrderStore()
	fetcher := &fetcherStub{fn: func(call int, ctx context.Context, force bool) ([]normalize.RawOrder, error) {
		return []normalize.RawOrder{rawOrder("A-1")}, nil
	}}
	r := New(fetcher, orderStore, nil, time.Millisecond, discardLogger())

	if err := r.Refresh(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := orderStore.Get("A-1"); !ok || got.OrderNumber != "A-1" {
		t.Fatalf("expected committed order, got %+v ok=%v", got, ok)
	}
	if r.Generation() != 1 {
		t.Fatalf("expected generation 1, got %d", r.Generation())
	}
	gen, at := r.LastCommit()
	if gen != 1 || at.IsZero() {
		t.Fatalf("expected commit bookkeeping, got gen=%d at=%v", gen, at)
	}
}

func TestSlowEarlierRefreshNeverClobbersFasterLaterOne(t *testing.T) {
	// Scenario: refresh 1 starts first but responds slowly; refresh 2 starts
	// later and responds quickly. Only the later-started response may commit.
	orderStore := store.NewOrderStore()
	release := make(chan struct{})
	fetcher := &fetcherStub{fn: func(call int, ctx context.Context, force bool) ([]normalize.RawOrder, error) {
		if call == 1 {
			<-release
			return []normalize.RawOrder{rawOrder("STALE")}, nil
		}
		return []normalize.RawOrder{rawOrder("FRESH")}, nil
	}}
	r := New(fetcher, orderStore, nil, time.Millisecond, discardLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	slowErr := error(nil)
	go func() {
		defer wg.Done()
		slowErr = r.Refresh(context.Background(), false)
	}()

	// Let the slow fetch allocate its token before starting the fast one.
	for fetcher.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := r.Refresh(context.Background(), false); err != nil {
		t.Fatalf("fast refresh failed: %v", err)
	}
	close(release)
	wg.Wait()

	if slowErr != nil {
		t.Fatalf("stale response is not an error, got %v", slowErr)
	}
	if _, ok := orderStore.Get("STALE"); ok {
		t.Fatalf("stale response committed to store")
	}
	if _, ok := orderStore.Get("FRESH"); !ok {
		t.Fatalf("fresh response missing from store")
	}
	if orderStore.Version() != 1 {
		t.Fatalf("expected exactly one commit, got version %d", orderStore.Version())
	}
}

func TestInterleavedRefreshesLastStartedWins(t *testing.T) {
	// N refreshes started in order, completing in reverse order. The final
	// store content must equal the result of whichever was started last.
	const n = 5
	orderStore := store.NewOrderStore()

	gates := make([]chan struct{}, n)
	for i := range gates {
		gates[i] = make(chan struct{})
	}
	fetcher := &fetcherStub{fn: func(call int, ctx context.Context, force bool) ([]normalize.RawOrder, error) {
		<-gates[call-1]
		return []normalize.RawOrder{rawOrder(string(rune('A'+call-1)) + "-order")}, nil
	}}
	r := New(fetcher, orderStore, nil, time.Millisecond, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Refresh(context.Background(), false)
		}()
		// Serialize token allocation so start order is deterministic.
		for fetcher.callCount() < i+1 {
			time.Sleep(time.Millisecond)
		}
	}

	// Complete in reverse start order.
	for i := n - 1; i >= 0; i-- {
		close(gates[i])
	}
	wg.Wait()

	if _, ok := orderStore.Get("E-order"); !ok {
		t.Fatalf("expected last-started refresh to win")
	}
	if orderStore.Version() != 1 {
		t.Fatalf("earlier responses should be discarded, got %d commits", orderStore.Version())
	}
}

func TestRefreshFailureLeavesStoreUntouched(t *testing.T) {
	orderStore := store.NewOrderStore()
	orderStore.ReplaceAll(nil)
	fetcher := &fetcherStub{fn: func(call int, ctx context.Context, force bool) ([]normalize.RawOrder, error) {
		return nil, errors.New("connection reset")
	}}
	r := New(fetcher, orderStore, nil, time.Millisecond, discardLogger())

	err := r.Refresh(context.Background(), false)
	if err == nil {
		t.Fatalf("expected transport failure to surface")
	}
	if orderStore.Version() != 1 {
		t.Fatalf("failed refresh must not commit, version %d", orderStore.Version())
	}
}

func TestRefreshWritesSnapshotThrough(t *testing.T) {
	orderStore := store.NewOrderStore()
	fetcher := &fetcherStub{fn: func(call int, ctx context.Context, force bool) ([]normalize.RawOrder, error) {
		return []normalize.RawOrder{rawOrder("A-1")}, nil
	}}
	snapshots := &snapshotterStub{}
	r := New(fetcher, orderStore, snapshots, time.Millisecond, discardLogger())

	if err := r.Refresh(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshots.saveCount() != 1 {
		t.Fatalf("expected snapshot write-through, got %d saves", snapshots.saveCount())
	}

	// Snapshot persistence failure is logged, never surfaced: the commit stands.
	snapshots.err = errors.New("db unavailable")
	if err := r.Refresh(context.Background(), true); err != nil {
		t.Fatalf("snapshot failure must not fail the refresh: %v", err)
	}
	if orderStore.Version() != 2 {
		t.Fatalf("commit should stand despite snapshot failure")
	}
}

func TestScheduleCoalescesTriggers(t *testing.T) {
	orderStore := store.NewOrderStore()
	done := make(chan struct{}, 8)
	fetcher := &fetcherStub{fn: func(call int, ctx context.Context, force bool) ([]normalize.RawOrder, error) {
		done <- struct{}{}
		return []normalize.RawOrder{rawOrder("A-1")}, nil
	}}
	r := New(fetcher, orderStore, nil, 20*time.Millisecond, discardLogger())
	r.Start(context.Background())
	defer r.Stop()

	for i := 0; i < 5; i++ {
		r.Schedule()
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled refresh never fired")
	}
	// A burst of triggers collapses into one fetch.
	time.Sleep(50 * time.Millisecond)
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("expected one coalesced fetch, got %d", got)
	}
}

func TestStopCancelsPendingSchedule(t *testing.T) {
	orderStore := store.NewOrderStore()
	fetcher := &fetcherStub{fn: func(call int, ctx context.Context, force bool) ([]normalize.RawOrder, error) {
		return nil, nil
	}}
	r := New(fetcher, orderStore, nil, 30*time.Millisecond, discardLogger())
	r.Start(context.Background())
	r.Schedule()
	r.Stop()

	time.Sleep(60 * time.Millisecond)
	if fetcher.callCount() != 0 {
		t.Fatalf("stopped refresher should not fire, got %d calls", fetcher.callCount())
	}
}
