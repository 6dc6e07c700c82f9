package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type fakeRooms map[uuid.UUID]*model.Room

func (f fakeRooms) GetByID(_ context.Context, id uuid.UUID) (*model.Room, error) {
	if r, ok := f[id]; ok {
		return r, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeSummaries struct {
	mu      sync.Mutex
	pending map[uuid.UUID]uuid.UUID
	fail    error
}

func (f *fakeSummaries) CreatePending(_ context.Context, roomID, professorID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	if _, ok := f.pending[roomID]; ok {
		return false, nil
	}
	f.pending[roomID] = professorID
	return true, nil
}

func TestSummaryWorkerDraftsPendingSummary(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)

	profID := uuid.New()
	room := &model.Room{ID: uuid.New(), ProfessorID: &profID, Status: model.RoomStatusCompleted}
	summaries := &fakeSummaries{pending: map[uuid.UUID]uuid.UUID{}}
	w := NewSummaryWorker(rdb, fakeRooms{room.ID: room}, summaries, zerolog.Nop())

	if err := NewSummaryQueue(rdb).NotifyRoomEnded(ctx, room.ID, time.Now()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	took, err := w.ProcessNext(ctx)
	if err != nil || !took {
		t.Fatalf("process: took=%v err=%v", took, err)
	}
	if got := summaries.pending[room.ID]; got != profID {
		t.Fatalf("expected pending summary for professor %s, got %s", profID, got)
	}

	// A duplicate notification leaves the existing draft alone.
	_ = NewSummaryQueue(rdb).NotifyRoomEnded(ctx, room.ID, time.Now())
	if _, err := w.ProcessNext(ctx); err != nil {
		t.Fatalf("process duplicate: %v", err)
	}
	if len(summaries.pending) != 1 {
		t.Fatalf("expected one draft, got %d", len(summaries.pending))
	}
}

func TestSummaryWorkerSkipsRoomsWithoutProfessor(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)

	room := &model.Room{ID: uuid.New(), Status: model.RoomStatusCompleted}
	summaries := &fakeSummaries{pending: map[uuid.UUID]uuid.UUID{}}
	w := NewSummaryWorker(rdb, fakeRooms{room.ID: room}, summaries, zerolog.Nop())

	_ = NewSummaryQueue(rdb).NotifyRoomEnded(ctx, room.ID, time.Now())
	_ = NewSummaryQueue(rdb).NotifyRoomEnded(ctx, uuid.New(), time.Now())

	for i := 0; i < 2; i++ {
		if _, err := w.ProcessNext(ctx); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}
	if len(summaries.pending) != 0 {
		t.Fatalf("expected no drafts, got %d", len(summaries.pending))
	}
}

func TestSummaryWorkerRequeuesOnFailure(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)

	profID := uuid.New()
	room := &model.Room{ID: uuid.New(), ProfessorID: &profID}
	summaries := &fakeSummaries{pending: map[uuid.UUID]uuid.UUID{}, fail: errors.New("db down")}
	w := NewSummaryWorker(rdb, fakeRooms{room.ID: room}, summaries, zerolog.Nop())

	_ = NewSummaryQueue(rdb).NotifyRoomEnded(ctx, room.ID, time.Now())
	if _, err := w.ProcessNext(ctx); err == nil {
		t.Fatalf("expected error on failing store")
	}
	items, err := mr.List(config.WorkerKey.RoomSummaryQueue)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected the item back on the queue, got %v (%v)", items, err)
	}

	for i := 0; i < SummaryMaxRetries; i++ {
		_, _ = w.ProcessNext(ctx)
	}
	if mr.Exists(config.WorkerKey.RoomSummaryQueue) {
		t.Fatalf("expected item dropped after %d retries", SummaryMaxRetries)
	}
}

func TestSummaryWorkerEmptyQueue(t *testing.T) {
	_, rdb := newRedis(t)
	w := NewSummaryWorker(rdb, fakeRooms{}, &fakeSummaries{pending: map[uuid.UUID]uuid.UUID{}}, zerolog.Nop())

	took, err := w.ProcessNext(context.Background())
	if err != nil || took {
		t.Fatalf("expected nothing taken, got took=%v err=%v", took, err)
	}
}

type fakeExpiring struct {
	calls int
	n     int64
	seen  time.Time
}

func (f *fakeExpiring) DeleteExpiredUnused(_ context.Context, now time.Time) (int64, error) {
	f.calls++
	f.seen = now
	return f.n, nil
}

func (f *fakeExpiring) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.calls++
	f.seen = now
	return f.n, nil
}

func TestTokenSweeperTickTakesLockOnce(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)

	access := &fakeExpiring{n: 3}
	provider := &fakeExpiring{n: 5}
	w := NewTokenSweeper(rdb, access, provider, time.Hour, zerolog.Nop())

	res, ran, err := w.Tick(ctx)
	if err != nil || !ran {
		t.Fatalf("first tick: ran=%v err=%v", ran, err)
	}
	if res.AccessTokens != 3 || res.ProviderTokens != 5 {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, ran, err := w.Tick(ctx); err != nil || ran {
		t.Fatalf("second tick should be skipped: ran=%v err=%v", ran, err)
	}
	if access.calls != 1 || provider.calls != 1 {
		t.Fatalf("expected one sweep, got access=%d provider=%d", access.calls, provider.calls)
	}

	mr.FastForward(31 * time.Minute)
	if _, ran, _ := w.Tick(ctx); !ran {
		t.Fatalf("expected sweep after lock expiry")
	}
}

func TestSweepOnceIgnoresLock(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	access := &fakeExpiring{}
	provider := &fakeExpiring{}
	w := NewTokenSweeper(rdb, access, provider, time.Minute, zerolog.Nop())
	w.now = func() time.Time { return fixed }

	if _, _, err := w.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if _, err := w.SweepOnce(ctx); err != nil {
		t.Fatalf("sweep once: %v", err)
	}
	if access.calls != 2 {
		t.Fatalf("expected forced sweep to run, got %d calls", access.calls)
	}
	if !access.seen.Equal(fixed) || !provider.seen.Equal(fixed) {
		t.Fatalf("expected sweep at %v, got %v / %v", fixed, access.seen, provider.seen)
	}
}
