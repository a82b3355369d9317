package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/quran"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// env wires the services over an in-memory store the way main does.
type env struct {
	backend     *kv.MemoryStore
	store       *kv.SafeStore
	writer      *kv.AsyncWriter
	clock       *fakeClock
	preferences *PreferenceStore
	progress    *ProgressTracker
	streak      *StreakTracker
	bookmarks   *BookmarkStore
	sessions    *SessionManager
	dashboard   *Dashboard
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvOver(t, kv.NewMemoryStore())
}

func newEnvOver(t *testing.T, backend *kv.MemoryStore) *env {
	t.Helper()

	logger := zap.NewNop()
	store := kv.NewSafeStore(backend, logger)
	writer := kv.NewAsyncWriter(store, logger)
	t.Cleanup(func() { _ = writer.Close(context.Background()) })

	clock := newFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))

	e := &env{
		backend: backend,
		store:   store,
		writer:  writer,
		clock:   clock,
	}
	e.preferences = NewPreferenceStore(store, writer, quran.NewCatalog(), clock, logger)
	e.progress = NewProgressTracker(store, writer, e.preferences, clock, logger)
	e.streak = NewStreakTracker(store, writer, e.preferences, clock, logger)
	e.bookmarks = NewBookmarkStore(store, writer, clock, logger)
	e.sessions = NewSessionManager(e.progress, clock, idleTicker, 0, logger)
	e.dashboard = NewDashboard(e.progress, e.streak, e.preferences)
	return e
}

func (e *env) flush(t *testing.T) {
	t.Helper()
	if err := e.writer.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

// stored decodes the persisted record name of userID into v.
func (e *env) stored(t *testing.T, userID, name string, v any) bool {
	t.Helper()
	e.flush(t)
	raw, err := e.backend.Get(context.Background(), kv.Key(userID, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return true
}

// idleTicker never ticks; tests drive timers through tick.
func idleTicker(time.Duration) (<-chan time.Time, func()) {
	return nil, func() {}
}

func day(s string) entities.Date {
	d, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
