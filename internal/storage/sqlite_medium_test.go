package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupMedium(t *testing.T, quota int64) *SQLiteMedium {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "aipomodoro-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	medium, err := NewSQLiteMedium(db, quota)
	if err != nil {
		t.Fatalf("new medium: %v", err)
	}
	return medium
}

func TestSQLiteMediumCRUDAndKeys(t *testing.T) {
	medium := setupMedium(t, 0)
	ctx := context.Background()
	medium.now = func() time.Time { return time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC) }

	if _, err := medium.Get(ctx, "aipomodoro_tasks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := medium.Put(ctx, "aipomodoro_tasks", []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := medium.Put(ctx, "aipomodoro_tasks", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := medium.Put(ctx, "aipomodoro_dailyGoal", []byte(`6`)); err != nil {
		t.Fatalf("put goal: %v", err)
	}
	if err := medium.Put(ctx, "other_tasks", []byte(`[]`)); err != nil {
		t.Fatalf("put other namespace: %v", err)
	}

	got, err := medium.Get(ctx, "aipomodoro_tasks")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Fatalf("unexpected value %q", got)
	}

	updated, err := medium.UpdatedAt(ctx, "aipomodoro_tasks")
	if err != nil {
		t.Fatalf("updated at: %v", err)
	}
	if !updated.Equal(medium.now()) {
		t.Fatalf("unexpected updated_at %v", updated)
	}

	keys, err := medium.Keys(ctx, "aipomodoro_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "aipomodoro_dailyGoal" || keys[1] != "aipomodoro_tasks" {
		t.Fatalf("unexpected keys %v", keys)
	}

	if err := medium.Delete(ctx, "aipomodoro_tasks"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := medium.Delete(ctx, "aipomodoro_tasks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteMediumQuota(t *testing.T) {
	medium := setupMedium(t, 40)
	ctx := context.Background()

	// 10-byte key + 20-byte value = 30 bytes.
	if err := medium.Put(ctx, "aipomo_key", make([]byte, 20)); err != nil {
		t.Fatalf("put within quota: %v", err)
	}
	if err := medium.Put(ctx, "aipomo_two", make([]byte, 20)); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	// Replacing an entry only counts its new size.
	if err := medium.Put(ctx, "aipomo_key", make([]byte, 30)); err != nil {
		t.Fatalf("overwrite within quota: %v", err)
	}
}

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")
	medium, err := OpenSQLite(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer medium.Close()

	if err := medium.Put(context.Background(), "aipomodoro_settings", []byte(`{}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
}
