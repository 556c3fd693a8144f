package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteMedium stores entries in a single key/value table. A positive quota
// caps the summed size of keys and values, like a browser storage quota.
type SQLiteMedium struct {
	db    *sql.DB
	quota int64
	now   func() time.Time
}

func NewSQLiteMedium(db *sql.DB, quotaBytes int64) (*SQLiteMedium, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if quotaBytes < 0 {
		return nil, fmt.Errorf("storage: negative quota %d", quotaBytes)
	}
	return &SQLiteMedium{db: db, quota: quotaBytes, now: time.Now}, nil
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string, quotaBytes int64) (*SQLiteMedium, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	medium, err := NewSQLiteMedium(db, quotaBytes)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return medium, nil
}

func (m *SQLiteMedium) Close() error {
	return m.db.Close()
}

func (m *SQLiteMedium) Get(ctx context.Context, key string) ([]byte, error) {
	row := m.db.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key)
	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (m *SQLiteMedium) Put(ctx context.Context, key string, value []byte) error {
	if m.quota > 0 {
		used, err := m.usageExcluding(ctx, key)
		if err != nil {
			return err
		}
		if used+entrySize(key, value) > m.quota {
			return fmt.Errorf("%w: %d of %d bytes used", ErrQuotaExceeded, used, m.quota)
		}
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(m.now()),
	)
	return err
}

func (m *SQLiteMedium) Delete(ctx context.Context, key string) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (m *SQLiteMedium) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM entries`
	args := make([]any, 0, 2)
	if prefix != "" {
		query += ` WHERE substr(key, 1, ?) = ?`
		args = append(args, len([]rune(prefix)), prefix)
	}
	query += ` ORDER BY key ASC`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var key string
		if scanErr := rows.Scan(&key); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

// UpdatedAt reports when key was last written.
func (m *SQLiteMedium) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	row := m.db.QueryRowContext(ctx, `SELECT updated_at FROM entries WHERE key = ?`, key)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	return time.Parse(sqliteTimeLayout, raw)
}

func (m *SQLiteMedium) usageExcluding(ctx context.Context, key string) (int64, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(value)), 0)
		FROM entries WHERE key <> ?`, key)
	var used int64
	if err := row.Scan(&used); err != nil {
		return 0, err
	}
	return used, nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

