// Package sqlite is the device-local kv backend.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

//go:embed migrations/*.sql
var migrations embed.FS

const table = "kv_entries"

// Store keeps kv entries in a single SQLite table.
type Store struct {
	db   *sqlx.DB
	psql squirrel.StatementBuilderType
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if err := Up(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Up applies the embedded goose migrations.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	query, args, err := s.psql.Select("value").From(table).Where(squirrel.Eq{"name": key}).ToSql()
	if err != nil {
		return "", fmt.Errorf("build SQL query (key: %s): %w", key, err)
	}

	var value string
	if err := s.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", kv.ErrNotFound
		}
		return "", fmt.Errorf("get entry (key: %s): %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.upsert(ctx, s.db, key, value)
}

func (s *Store) upsert(ctx context.Context, exec sqlx.ExecerContext, key, value string) error {
	query, args, err := s.psql.Insert(table).
		Columns("name", "value", "updated_at").
		Values(key, value, time.Now().Unix()).
		Suffix("ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (key: %s): %w", key, err)
	}

	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set entry (key: %s): %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	query, args, err := s.psql.Delete(table).Where(squirrel.Eq{"name": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (key: %s): %w", key, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove entry (key: %s): %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := s.psql.Select("name").
		From(table).
		Where(squirrel.Like{"name": prefix + "%"}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SQL query (prefix: %s): %w", prefix, err)
	}

	var names []string
	if err := s.db.SelectContext(ctx, &names, query, args...); err != nil {
		return nil, fmt.Errorf("list entries (prefix: %s): %w", prefix, err)
	}

	// LIKE is case-insensitive and treats "_" as a wildcard.
	keys := names[:0]
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			keys = append(keys, n)
		}
	}
	return keys, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// Reset wipes every entry and writes the marker in one transaction.
func (s *Store) Reset(ctx context.Context, markerKey, version string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if err := s.upsert(ctx, tx, markerKey, version); err != nil {
		return err
	}

	return tx.Commit()
}
