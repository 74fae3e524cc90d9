package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS items (
			item_set TEXT NOT NULL,
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			position INTEGER NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (item_set, kind, id)
		);

		CREATE INDEX IF NOT EXISTS idx_items_order ON items(item_set, kind, position);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

func (s *SQLiteStorage) Rows(ctx context.Context, set Set) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, id, data FROM items
		WHERE item_set = ?
		ORDER BY CASE kind WHEN ? THEN 0 WHEN ? THEN 1 ELSE 2 END, position
	`, string(set), string(KindEntry), string(KindContentType))
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r    Row
			kind string
		)
		if err := rows.Scan(&kind, &r.ID, &r.Data); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		r.Kind = Kind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) Meta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStorage) Commit(ctx context.Context, ch Change) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for set, rows := range ch.Sets {
		if _, err = tx.ExecContext(ctx, "DELETE FROM items WHERE item_set = ?", string(set)); err != nil {
			return fmt.Errorf("clear %s: %w", set, err)
		}
		stmt, perr := tx.PrepareContext(ctx, "INSERT INTO items (item_set, kind, id, position, data) VALUES (?, ?, ?, ?, ?)")
		if perr != nil {
			return fmt.Errorf("prepare insert: %w", perr)
		}
		for i, r := range rows {
			if _, err = stmt.ExecContext(ctx, string(set), string(r.Kind), r.ID, i, r.Data); err != nil {
				stmt.Close()
				return fmt.Errorf("insert %s %s: %w", r.Kind, r.ID, err)
			}
		}
		stmt.Close()
	}

	for k, v := range ch.Meta {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v); err != nil {
			return fmt.Errorf("set meta %s: %w", k, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
