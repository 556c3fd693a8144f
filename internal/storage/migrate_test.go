package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeated migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	medium, err := NewSQLiteMedium(db, 0)
	if err != nil {
		t.Fatalf("new medium: %v", err)
	}

	if err := medium.Put(t.Context(), "aipomodoro_tasks", []byte(`[]`)); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}

	got, err := medium.Get(t.Context(), "aipomodoro_tasks")
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("unexpected value after roundtrip: %q", got)
	}
}
