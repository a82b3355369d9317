package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

const (
	sessionTickInterval = time.Second
	sessionSyncInterval = 5 * time.Second
)

// SessionState is the state of a reading session timer.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionRunning
)

func (s SessionState) String() string {
	if s == SessionRunning {
		return "running"
	}
	return "idle"
}

// ReadingTimeSink receives whole seconds of reading time.
type ReadingTimeSink interface {
	AddReadingTime(ctx context.Context, userID string, seconds int) entities.ProgressRecord
}

// TickerFunc starts a ticker and returns its channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// SessionTimer measures the time one user spends on the reading screen and
// syncs it to the progress tracker every few seconds.
//
// With a non-zero idle timeout the session also ends on its own once no
// activity was seen for that long. Seconds after the last activity that
// were not synced yet are not credited.
type SessionTimer struct {
	userID      string
	sink        ReadingTimeSink
	clock       Clock
	newTicker   TickerFunc
	idleTimeout time.Duration
	onIdle      func(*SessionTimer)
	logger      *zap.Logger

	mu           sync.Mutex
	state        SessionState
	startedAt    time.Time
	lastSync     time.Time
	lastActivity time.Time
	elapsed      time.Duration
	stop         chan struct{}
	done         chan struct{}
}

func NewSessionTimer(userID string, sink ReadingTimeSink, clock Clock, newTicker TickerFunc, logger *zap.Logger) *SessionTimer {
	if newTicker == nil {
		newTicker = systemTicker
	}
	return &SessionTimer{
		userID:    userID,
		sink:      sink,
		clock:     clock,
		newTicker: newTicker,
		logger:    logger,
	}
}

// Start moves an idle timer to running. Starting a running timer does nothing.
func (t *SessionTimer) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == SessionRunning {
		return
	}

	now := t.clock.Now()
	t.state = SessionRunning
	t.startedAt = now
	t.lastSync = now
	t.lastActivity = now
	t.elapsed = 0
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	ticks, stopTicker := t.newTicker(sessionTickInterval)
	go t.loop(ctx, ticks, stopTicker, t.stop, t.done)
}

func (t *SessionTimer) loop(ctx context.Context, ticks <-chan time.Time, stopTicker func(), stop, done chan struct{}) {
	defer close(done)
	defer stopTicker()

	for {
		select {
		case <-ticks:
			t.tick(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			t.halt(context.WithoutCancel(ctx))
			return
		}
	}
}

// tick refreshes the displayed elapsed time and syncs whole seconds once
// enough time has passed since the last sync. A session idle for longer
// than the idle timeout is ended instead.
func (t *SessionTimer) tick(ctx context.Context) {
	t.mu.Lock()
	expired := t.advance(ctx)
	t.mu.Unlock()

	if expired && t.onIdle != nil {
		t.onIdle(t)
	}
}

// advance must be called with mu held. It reports whether the session
// ended for inactivity.
func (t *SessionTimer) advance(ctx context.Context) bool {
	if t.state != SessionRunning {
		return false
	}

	now := t.clock.Now()
	if t.idleTimeout > 0 && now.Sub(t.lastActivity) >= t.idleTimeout {
		t.finish(ctx, t.lastActivity)
		close(t.stop)
		t.logger.Debug("reading session expired",
			zap.String("user_id", t.userID),
			zap.Time("last_activity", t.lastActivity),
		)
		return true
	}

	t.elapsed = now.Sub(t.startedAt)

	if now.Sub(t.lastSync) >= sessionSyncInterval {
		seconds := int(now.Sub(t.lastSync) / time.Second)
		t.lastSync = now
		t.sink.AddReadingTime(ctx, t.userID, seconds)
	}
	return false
}

// finish must be called with mu held. It syncs the whole seconds between
// the last sync and until, then moves the timer to idle.
func (t *SessionTimer) finish(ctx context.Context, until time.Time) {
	if until.After(t.lastSync) {
		if seconds := int(until.Sub(t.lastSync) / time.Second); seconds > 0 {
			t.sink.AddReadingTime(ctx, t.userID, seconds)
		}
		t.lastSync = until
	}
	t.elapsed = t.lastSync.Sub(t.startedAt)
	t.state = SessionIdle
}

// touch records user activity. It reports false when the timer is not
// running.
func (t *SessionTimer) touch() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != SessionRunning {
		return false
	}
	t.lastActivity = t.clock.Now()
	return true
}

// halt flushes the unsynced whole seconds and moves the timer to idle.
// It returns the channels of the stopped run, or nil ones when the timer
// was idle.
func (t *SessionTimer) halt(ctx context.Context) (stop, done chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != SessionRunning {
		return nil, nil
	}

	t.finish(ctx, t.clock.Now())

	t.logger.Debug("reading session stopped",
		zap.String("user_id", t.userID),
		zap.Duration("elapsed", t.elapsed),
	)

	return t.stop, t.done
}

// Stop ends the session, flushing what was not synced yet, and returns the
// total session duration.
func (t *SessionTimer) Stop(ctx context.Context) time.Duration {
	if stop, done := t.halt(ctx); stop != nil {
		close(stop)
		<-done
	}
	return t.Elapsed()
}

// Elapsed returns the session duration as of the last tick.
func (t *SessionTimer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

func (t *SessionTimer) State() SessionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SessionManager keeps at most one running session timer per user.
// Sessions without activity for idleTimeout end on their own; zero keeps
// them running until stopped.
type SessionManager struct {
	sink        ReadingTimeSink
	clock       Clock
	newTicker   TickerFunc
	idleTimeout time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	timers map[string]*SessionTimer
}

func NewSessionManager(sink ReadingTimeSink, clock Clock, newTicker TickerFunc, idleTimeout time.Duration, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		sink:        sink,
		clock:       clock,
		newTicker:   newTicker,
		idleTimeout: idleTimeout,
		logger:      logger,
		timers:      make(map[string]*SessionTimer),
	}
}

// Start begins a new session for userID, stopping the previous one. The
// session outlives ctx cancellation; it ends on Stop or StopAll.
func (m *SessionManager) Start(ctx context.Context, userID string) *SessionTimer {
	m.mu.Lock()
	prev := m.timers[userID]
	timer := NewSessionTimer(userID, m.sink, m.clock, m.newTicker, m.logger)
	timer.idleTimeout = m.idleTimeout
	timer.onIdle = m.forget
	m.timers[userID] = timer
	m.mu.Unlock()

	if prev != nil {
		prev.Stop(ctx)
	}

	timer.Start(context.WithoutCancel(ctx))
	return timer
}

// Stop ends the session of userID. It reports false when there was none.
func (m *SessionManager) Stop(ctx context.Context, userID string) (time.Duration, bool) {
	m.mu.Lock()
	timer, ok := m.timers[userID]
	delete(m.timers, userID)
	m.mu.Unlock()

	if !ok {
		return 0, false
	}
	return timer.Stop(ctx), true
}

// Refresh records activity in the running session of userID. It reports
// false when there is none.
func (m *SessionManager) Refresh(userID string) bool {
	m.mu.Lock()
	timer, ok := m.timers[userID]
	m.mu.Unlock()

	return ok && timer.touch()
}

// Touch records activity in the session of userID, starting a new one when
// the previous session ended for inactivity.
func (m *SessionManager) Touch(ctx context.Context, userID string) {
	if !m.Refresh(userID) {
		m.Start(ctx, userID)
	}
}

// forget drops timer once it expired, unless it was already replaced.
func (m *SessionManager) forget(timer *SessionTimer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timers[timer.userID] == timer {
		delete(m.timers, timer.userID)
	}
}

// Active returns the running session of userID.
func (m *SessionManager) Active(userID string) (*SessionTimer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	timer, ok := m.timers[userID]
	return timer, ok
}

// StopAll ends every session. It is called on shutdown.
func (m *SessionManager) StopAll(ctx context.Context) {
	m.mu.Lock()
	timers := m.timers
	m.timers = make(map[string]*SessionTimer)
	m.mu.Unlock()

	for _, timer := range timers {
		timer.Stop(ctx)
	}
}
