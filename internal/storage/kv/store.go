// Package kv is the persistent key-value layer every tracker writes through.
//
// Backends implement Store and report failures as errors. SafeStore turns
// those into the silent-failure contract the trackers rely on, Migrator runs
// the one-time schema check at startup and AsyncWriter makes writes
// fire-and-forget.
package kv

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("key not found")

// Store is a durable map of string keys to string blobs.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Keys lists the stored keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Clear deletes every key.
	Clear(ctx context.Context) error
}

// Resetter is implemented by backends able to wipe the store and write the
// schema marker atomically.
type Resetter interface {
	Reset(ctx context.Context, markerKey, version string) error
}

// Per-identity record names.
const (
	ProgressKey = "progress-storage"
	StreakKey   = "streak-storage"
	BookmarkKey = "bookmark-storage"
	UserKey     = "@tilawah_user"
)

// SchemaMarkerKey holds the schema version tag of the whole store.
const SchemaMarkerKey = "app_schema_version"

// UserPrefix returns the prefix all records of userID live under.
func UserPrefix(userID string) string {
	return "user/" + userID + "/"
}

// Key returns the storage key of the named record of userID.
func Key(userID, name string) string {
	return UserPrefix(userID) + name
}

// ParseKey splits a per-identity key into its user id and record name.
func ParseKey(key string) (userID, name string, ok bool) {
	rest, ok := strings.CutPrefix(key, "user/")
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, "/")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
