package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/mdwidget/internal/db"
	"github.com/debemdeboas/mdwidget/internal/util/compression"
)

// SQLiteKV stores compressed values in the backups table.
type SQLiteKV struct {
	db         db.DB
	compressor compression.Compressor
	now        func() time.Time
}

func NewSQLiteKV(database db.DB, compressor compression.Compressor) *SQLiteKV {
	if compressor == nil {
		compressor = compression.NopCompressor{}
	}
	return &SQLiteKV{
		db:         database,
		compressor: compressor,
		now:        time.Now,
	}
}

func (s *SQLiteKV) Get(key string) (string, error) {
	var packed []byte
	err := s.db.QueryRow(`SELECT value FROM backups WHERE key = ?`, key).Scan(&packed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", key, err)
	}

	value, err := s.compressor.Decompress(packed)
	if err != nil {
		return "", fmt.Errorf("decompressing %q: %w", key, err)
	}
	return string(value), nil
}

func (s *SQLiteKV) Set(key, value string) error {
	packed, err := s.compressor.Compress([]byte(value))
	if err != nil {
		return fmt.Errorf("compressing %q: %w", key, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO backups (key, value, size, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, size = excluded.size, updated_at = excluded.updated_at`,
		key, packed, len(value), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM backups WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

type Entry struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// Entries lists stored keys, most recently written first.
func (s *SQLiteKV) Entries() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT key, size, updated_at FROM backups ORDER BY updated_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Size, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning backup: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
