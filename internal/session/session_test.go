package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"dcfassist/internal/config"
	"dcfassist/internal/embedding"
	"dcfassist/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleSession() *Session {
	return &Session{
		Filename:  "acme-10k.pdf",
		Text:      "Revenue grew 12 percent.",
		Summary:   "Acme annual report.",
		ModelData: model.FallbackTemplate(),
		Index: embedding.Index{
			Chunks:  []string{"Revenue grew 12 percent."},
			Vectors: [][]float32{{0.1, 0.2}},
		},
	}
}

// exerciseStore 各后端共用的行为检查
func exerciseStore(t *testing.T, store Store, clock *fakeClock) {
	t.Helper()
	ctx := context.Background()

	id, err := store.Create(ctx, sampleSession())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(id) != 36 {
		t.Fatalf("expected uuid id, got %q", id)
	}

	clock.Advance(time.Hour)
	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id || got.Filename != "acme-10k.pdf" || got.Summary != "Acme annual report." {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.ChunkCount() != 1 || got.Index.Vectors[0][1] != 0.2 {
		t.Fatalf("index not preserved: %+v", got.Index)
	}
	if len(got.ModelData[model.SheetFinancials].Values) == 0 {
		t.Fatalf("model data not preserved")
	}
	if !got.LastAccessed.After(got.CreatedAt) {
		t.Fatalf("last accessed should advance: created=%v accessed=%v", got.CreatedAt, got.LastAccessed)
	}

	if n, err := store.Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count want=1 got=%d err=%v", n, err)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete want ErrNotFound, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	exerciseStore(t, NewMemoryStore(WithClock(clock.Now)), clock)
}

func TestMemoryStore_ExpiryAndSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryStore(WithClock(clock.Now), WithTTL(time.Hour))

	a, _ := store.Create(ctx, sampleSession())
	clock.Advance(40 * time.Minute)
	b, _ := store.Create(ctx, sampleSession())

	// 访问不会延长有效期
	clock.Advance(30 * time.Minute)
	if _, err := store.Get(ctx, a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session want ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, b); err != nil {
		t.Fatalf("live session: %v", err)
	}

	clock.Advance(time.Hour)
	n, err := store.Sweep(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Sweep want=1 got=%d err=%v", n, err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("Count after sweep want=0 got=%d", n)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	in := sampleSession()
	id, _ := store.Create(ctx, in)
	if in.ID != "" {
		t.Fatalf("Create must not mutate its argument")
	}

	got, _ := store.Get(ctx, id)
	got.Summary = "changed"
	again, _ := store.Get(ctx, id)
	if again.Summary != "Acme annual report." {
		t.Fatalf("stored session mutated through returned copy")
	}
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "sessions.db"), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store, clock)
}

func TestSQLiteStore_ExpiryAndReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := NewSQLiteStore(path, WithClock(clock.Now), WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	old, _ := store.Create(ctx, sampleSession())
	clock.Advance(50 * time.Minute)
	fresh, _ := store.Create(ctx, sampleSession())
	store.Close()

	reopened, err := NewSQLiteStore(path, WithClock(clock.Now), WithTTL(time.Hour))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(ctx, fresh); err != nil {
		t.Fatalf("session should survive reopen: %v", err)
	}

	clock.Advance(20 * time.Minute)
	n, err := reopened.Sweep(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Sweep want=1 got=%d err=%v", n, err)
	}
	if _, err := reopened.Get(ctx, old); !errors.Is(err, ErrNotFound) {
		t.Fatalf("swept session want ErrNotFound, got %v", err)
	}

	clock.Advance(time.Hour)
	if _, err := reopened.Get(ctx, fresh); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session want ErrNotFound, got %v", err)
	}
	if n, _ := reopened.Count(ctx); n != 0 {
		t.Fatalf("expired session should be removed on Get, count=%d", n)
	}
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clock := newFakeClock()
	store := NewRedisStore(client, "test:session:", WithClock(clock.Now))
	defer store.Close()

	exerciseStore(t, store, clock)
}

func TestRedisStore_TTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "", WithTTL(time.Hour))
	defer store.Close()

	id, err := store.Create(ctx, sampleSession())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ttl := mr.TTL(DefaultRedisPrefix + id); ttl != time.Hour {
		t.Fatalf("ttl want=1h got=%v", ttl)
	}

	mr.FastForward(30 * time.Minute)
	if _, err := store.Get(ctx, id); err != nil {
		t.Fatalf("Get: %v", err)
	}
	// Get 不重置 TTL
	if ttl := mr.TTL(DefaultRedisPrefix + id); ttl != 30*time.Minute {
		t.Fatalf("ttl after get want=30m got=%v", ttl)
	}

	mr.FastForward(31 * time.Minute)
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("Count want=0 got=%d", n)
	}
	if n, err := store.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("Sweep want=0 got=%d err=%v", n, err)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cfg := config.DefaultConfig()
	store, err := Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("default backend want *MemoryStore, got %T", store)
	}

	cfg = config.DefaultConfig()
	cfg.Session.Backend = "sqlite"
	cfg.Data.DataDir = t.TempDir()
	store, err = Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("want *SQLiteStore, got %T", store)
	}
	store.Close()

	mr := miniredis.RunT(t)
	cfg = config.DefaultConfig()
	cfg.Session.Backend = "redis"
	cfg.Session.RedisAddr = mr.Addr()
	store, err = Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open redis: %v", err)
	}
	if _, ok := store.(*RedisStore); !ok {
		t.Fatalf("want *RedisStore, got %T", store)
	}
	store.Close()

	addr := mr.Addr()
	mr.Close()
	cfg.Session.RedisAddr = addr
	store, err = Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open redis fallback: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("unreachable redis should fall back to memory, got %T", store)
	}

	cfg.Session.Backend = "mongo"
	if _, err := Open(ctx, cfg, nil); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestRunSweeper_StopsOnCancel(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := NewMemoryStore(WithClock(clock.Now), WithTTL(time.Minute))
	_, _ = store.Create(context.Background(), sampleSession())
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, store, 5*time.Millisecond, nil)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		n, _ := store.Count(context.Background())
		if n == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("sweeper did not remove expired session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweeper did not stop")
	}
}
