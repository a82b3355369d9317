package kv

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrWriterClosed = errors.New("async writer closed")

type opKind int

const (
	opSet opKind = iota
	opRemove
	opBarrier
)

type op struct {
	kind  opKind
	key   string
	value string
	done  chan struct{}
}

// AsyncWriter applies writes to a SafeStore on a single background goroutine.
//
// Writes are applied in submission order, so the last write to a key wins.
// Callers never wait for durability; Flush blocks until everything submitted
// before it has been applied.
type AsyncWriter struct {
	store  *SafeStore
	logger *zap.Logger

	mu      sync.Mutex
	queue   []op
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
}

// NewAsyncWriter starts the background worker.
func NewAsyncWriter(store *SafeStore, logger *zap.Logger) *AsyncWriter {
	w := &AsyncWriter{
		store:   store,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// Set schedules value to be written under key.
func (w *AsyncWriter) Set(key, value string) {
	w.enqueue(op{kind: opSet, key: key, value: value})
}

// SetJSON encodes v now and schedules the result to be written under key.
func (w *AsyncWriter) SetJSON(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.logger.Warn("kv encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	w.Set(key, string(b))
}

// Remove schedules key to be deleted.
func (w *AsyncWriter) Remove(key string) {
	w.enqueue(op{kind: opRemove, key: key})
}

// Flush waits until every write submitted before the call has been applied.
func (w *AsyncWriter) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !w.enqueue(op{kind: opBarrier, done: done}) {
		return ErrWriterClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close applies the pending writes and stops the worker.
func (w *AsyncWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		w.signal()
	}
	w.mu.Unlock()

	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AsyncWriter) enqueue(o op) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.logger.Warn("kv write after close dropped", zap.String("key", o.key))
		return false
	}
	w.queue = append(w.queue, o)
	w.signal()
	return true
}

// signal must be called with mu held.
func (w *AsyncWriter) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *AsyncWriter) run() {
	defer close(w.stopped)

	// Writes are fire-and-forget and outlive the callers' contexts.
	ctx := context.Background()

	for range w.wake {
		for {
			w.mu.Lock()
			batch := w.queue
			w.queue = nil
			closed := w.closed
			w.mu.Unlock()

			if len(batch) == 0 {
				if closed {
					return
				}
				break
			}

			for _, o := range batch {
				switch o.kind {
				case opSet:
					w.store.Set(ctx, o.key, o.value)
				case opRemove:
					w.store.Remove(ctx, o.key)
				case opBarrier:
					close(o.done)
				}
			}
		}
	}
}
