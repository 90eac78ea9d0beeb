package database

import (
	"path/filepath"
	"testing"

	"github.com/themizzi/sitecheck/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	// GIVEN
	dsn := filepath.Join(t.TempDir(), "nested", "runs.db")

	// WHEN
	db, err := Open(config.StoreConfig{Driver: config.StoreDriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	// THEN
	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	// Migrations are idempotent
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("Failed to query runs table: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty runs table, got %d rows", count)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(config.StoreConfig{Driver: "mongo", DSN: "x"}); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestRunMigrations_NilDB(t *testing.T) {
	if err := RunMigrations(nil); err == nil {
		t.Error("Expected error for nil database")
	}
}
