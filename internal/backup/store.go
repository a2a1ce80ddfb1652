package backup

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("backup: key not found")

var backupLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	backupLogger = l
}

// KV is the host key/value persistence. Get returns ErrNotFound for
// missing keys.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Store reads and writes Records. Every persistence failure is logged and
// swallowed: a broken store behaves like an empty one.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns the record for key, or false when it is missing, empty or
// unreadable.
func (s *Store) Load(key string) (Record, bool) {
	raw, err := s.kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			backupLogger.Warn().Err(err).Str("key", key).Msg("Failed to read backup")
		}
		return Record{}, false
	}
	if raw == "" {
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		backupLogger.Debug().Err(err).Str("key", key).Msg("Ignoring corrupt backup")
		return Record{}, false
	}
	return rec, true
}

func (s *Store) Save(key string, rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		backupLogger.Warn().Err(err).Str("key", key).Msg("Failed to encode backup")
		return
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		backupLogger.Warn().Err(err).Str("key", key).Msg("Failed to write backup")
	}
}

// Clear blanks the record so the next Load reports nothing.
func (s *Store) Clear(key string) {
	if err := s.kv.Set(key, ""); err != nil {
		backupLogger.Warn().Err(err).Str("key", key).Msg("Failed to clear backup")
	}
}
