package backup

import (
	"errors"
	"testing"
	"time"

	"github.com/debemdeboas/mdwidget/internal/db"
	"github.com/debemdeboas/mdwidget/internal/util/compression"
)

func newSQLiteKV(t *testing.T) *SQLiteKV {
	t.Helper()
	database := db.NewSQLite(":memory:")
	if err := database.InitDB(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	zstd, err := compression.NewZstdCompressor()
	if err != nil {
		t.Fatal(err)
	}
	return NewSQLiteKV(database, zstd)
}

func TestSQLiteKV(t *testing.T) {
	kv := newSQLiteKV(t)

	if _, err := kv.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if err := kv.Set("a", `{"val":"one"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set("a", `{"val":"two"}`); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	got, err := kv.Get("a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `{"val":"two"}` {
		t.Errorf("Expected overwritten value, got %q", got)
	}

	if err := kv.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kv.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteKVEntries(t *testing.T) {
	kv := newSQLiteKV(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	kv.now = func() time.Time { return base }
	kv.Set("old", "1234")
	kv.now = func() time.Time { return base.Add(time.Hour) }
	kv.Set("new", "12")

	entries, err := kv.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key != "new" || entries[1].Key != "old" {
		t.Errorf("Expected newest first, got %v", entries)
	}
	if entries[1].Size != 4 {
		t.Errorf("Expected uncompressed size 4, got %d", entries[1].Size)
	}
}

func TestStoreOverSQLite(t *testing.T) {
	store := NewStore(newSQLiteKV(t))
	rec := Record{Version: time.UnixMilli(42), Content: "# persisted"}

	store.Save("draft", rec)
	got, ok := store.Load("draft")
	if !ok || got.Content != rec.Content {
		t.Errorf("Expected persisted record, got %+v (ok=%v)", got, ok)
	}
}
