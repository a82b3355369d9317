package service

import (
	"context"
	"sync"

	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

// projection is the in-memory copy of one persisted record per user. The
// first access for a user rehydrates it from the store; every change is
// written back through the async writer.
//
// Callers hold mu for the whole read-modify-write, which serializes all
// mutations of a record the way a single event loop would.
type projection[E any] struct {
	store  *kv.SafeStore
	writer *kv.AsyncWriter
	name   string
	init   func() E

	mu     sync.Mutex
	byUser map[string]*E
}

func newProjection[E any](store *kv.SafeStore, writer *kv.AsyncWriter, name string, init func() E) *projection[E] {
	return &projection[E]{
		store:  store,
		writer: writer,
		name:   name,
		init:   init,
		byUser: make(map[string]*E),
	}
}

// load must be called with mu held.
func (p *projection[E]) load(ctx context.Context, userID string) *E {
	if e, ok := p.byUser[userID]; ok {
		return e
	}

	e := p.init()
	if !kv.LoadJSON(ctx, p.store, kv.Key(userID, p.name), &e) {
		e = p.init()
	}
	p.byUser[userID] = &e
	return &e
}

// save must be called with mu held. The record is encoded before save
// returns, so later mutations do not leak into the queued write.
func (p *projection[E]) save(userID string, e *E) {
	p.writer.SetJSON(kv.Key(userID, p.name), e)
}

// forget drops the cached and persisted record of userID.
func (p *projection[E]) forget(userID string) {
	delete(p.byUser, userID)
	p.writer.Remove(kv.Key(userID, p.name))
}
