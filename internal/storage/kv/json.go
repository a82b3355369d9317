package kv

import (
	"context"
	"encoding/json"
)

// LoadJSON decodes the blob under key into v. It reports false when the key
// is absent or the blob cannot be decoded; undecodable blobs are dropped.
func LoadJSON(ctx context.Context, s *SafeStore, key string, v any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.Drop(ctx, key, err)
		return false
	}
	return true
}
