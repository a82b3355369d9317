package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

// KVStore keeps kv entries in the kv_entries table.
type KVStore struct {
	db         DBTX
	transactor *Transactor
}

// NewKVStore creates a KVStore. The transactor is used for atomic resets.
func NewKVStore(db DBTX, transactor *Transactor) *KVStore {
	return &KVStore{db: db, transactor: transactor}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM kv_entries WHERE name = $1`

	var value string
	if err := s.db.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", kv.ErrNotFound
		}
		return "", fmt.Errorf("get entry (key: %s): %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return upsertEntry(ctx, s.db, key, value)
}

func upsertEntry(ctx context.Context, db DBTX, key, value string) error {
	query := `
		INSERT INTO kv_entries (name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set entry (key: %s): %w", key, err)
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM kv_entries WHERE name = $1`, key); err != nil {
		return fmt.Errorf("remove entry (key: %s): %w", key, err)
	}
	return nil
}

func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := `
		SELECT name FROM kv_entries
		WHERE name LIKE $1 ESCAPE '\'
		ORDER BY name
	`

	rows, err := s.db.Query(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("list entries (prefix: %s): %w", prefix, err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan entries (prefix: %s): %w", prefix, err)
	}
	return keys, nil
}

func (s *KVStore) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM kv_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// Reset wipes every entry and writes the marker in one transaction.
func (s *KVStore) Reset(ctx context.Context, markerKey, version string) error {
	return s.transactor.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.Exec(ctx, `DELETE FROM kv_entries`); err != nil {
			return fmt.Errorf("clear entries: %w", err)
		}
		return upsertEntry(ctx, tx, markerKey, version)
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
