package kv

import (
	"context"
	"fmt"
	"strings"
)

// Schema version tags.
const (
	// VersionUnscoped stores records under bare keys for a single device user.
	VersionUnscoped = "tilawah_v0"
	// VersionCurrent scopes every record under UserPrefix.
	VersionCurrent = "tilawah_v1"
)

// DefaultPolicy upgrades unscoped stores by moving their records to owner.
// Anything else is wiped.
func DefaultPolicy(owner string) Policy {
	return Policy{
		VersionUnscoped: Transform(ScopeRecords(owner)),
	}
}

// ScopeRecords moves every key outside the user namespace under owner.
func ScopeRecords(owner string) TransformFunc {
	return func(ctx context.Context, store Store) error {
		keys, err := store.Keys(ctx, "")
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}

		for _, k := range keys {
			if k == SchemaMarkerKey || strings.HasPrefix(k, "user/") {
				continue
			}

			v, err := store.Get(ctx, k)
			if err != nil {
				return fmt.Errorf("read %q: %w", k, err)
			}
			if err := store.Set(ctx, Key(owner, k), v); err != nil {
				return fmt.Errorf("write %q: %w", k, err)
			}
			if err := store.Remove(ctx, k); err != nil {
				return fmt.Errorf("remove %q: %w", k, err)
			}
		}
		return nil
	}
}
