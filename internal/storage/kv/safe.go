package kv

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// SafeStore wraps a Store so that no failure crosses its boundary.
//
// A failed read reports the key as absent and deletes it on a best-effort
// basis, so a corrupted blob does not fail every later startup. Failed writes
// and removals are logged and swallowed.
type SafeStore struct {
	store  Store
	logger *zap.Logger
}

func NewSafeStore(store Store, logger *zap.Logger) *SafeStore {
	return &SafeStore{store: store, logger: logger}
}

// Get returns the value under key and whether it was found.
func (s *SafeStore) Get(ctx context.Context, key string) (string, bool) {
	v, err := s.store.Get(ctx, key)
	if err == nil {
		return v, true
	}
	if errors.Is(err, ErrNotFound) {
		return "", false
	}

	s.logger.Warn("kv read failed, dropping key",
		zap.String("key", key),
		zap.Error(err),
	)
	s.Remove(ctx, key)

	return "", false
}

func (s *SafeStore) Set(ctx context.Context, key, value string) {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.logger.Warn("kv write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *SafeStore) Remove(ctx context.Context, key string) {
	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.Warn("kv remove failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Keys lists the keys under prefix. A failed listing is logged and
// reported as empty.
func (s *SafeStore) Keys(ctx context.Context, prefix string) []string {
	keys, err := s.store.Keys(ctx, prefix)
	if err != nil {
		s.logger.Warn("kv listing failed",
			zap.String("prefix", prefix),
			zap.Error(err),
		)
		return nil
	}
	return keys
}

// Drop reports a blob found under key as unusable and removes it.
func (s *SafeStore) Drop(ctx context.Context, key string, cause error) {
	s.logger.Warn("kv value corrupted, dropping key",
		zap.String("key", key),
		zap.Error(cause),
	)
	s.Remove(ctx, key)
}
