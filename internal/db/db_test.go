package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

func TestMain(m *testing.M) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	os.Exit(m.Run())
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite(":memory:")

	if db.Get() != nil {
		t.Error("Expected connection to be nil before InitDB")
	}
	if err := db.Close(); err != nil {
		t.Errorf("Expected no error closing uninitialized database, got: %v", err)
	}
}

func TestSQLiteSchema(t *testing.T) {
	db := NewSQLite(":memory:")
	defer db.Close()

	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	rows, err := db.Query("PRAGMA table_info(backups)")
	if err != nil {
		t.Fatalf("Failed to get backups table info: %v", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var defaultValue sql.NullString
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			t.Fatalf("Failed to scan column info: %v", err)
		}
		columns[name] = true
	}

	for _, col := range []string{"key", "value", "size", "updated_at"} {
		if !columns[col] {
			t.Errorf("Expected backups table to have column %s", col)
		}
	}
}

func TestSQLiteExecAndQueryRow(t *testing.T) {
	db := NewSQLite(":memory:")
	defer db.Close()
	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	res, err := db.Exec(`INSERT INTO backups (key, value, size) VALUES (?, ?, ?)`, "k", []byte("v"), 1)
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Errorf("Expected 1 row affected, got %d", n)
	}

	var value []byte
	if err := db.QueryRow(`SELECT value FROM backups WHERE key = ?`, "k").Scan(&value); err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if string(value) != "v" {
		t.Errorf("Expected 'v', got %q", value)
	}

	if _, err := db.Exec("INVALID SQL SYNTAX"); err == nil {
		t.Error("Expected error for invalid SQL")
	}
}

func TestSQLiteFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backups.db")

	db := NewSQLite(path)
	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Expected database file to be created")
	}

	if err := db.Close(); err != nil {
		t.Errorf("Failed to close database: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Failed to close database second time: %v", err)
	}
}

func TestDBInterface(t *testing.T) {
	var _ DB = (*SQLite)(nil)
}
