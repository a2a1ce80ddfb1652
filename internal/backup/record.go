// Package backup persists crash-recovery snapshots of editor content.
package backup

import (
	"encoding/json"
	"time"

	"github.com/debemdeboas/mdwidget/internal/surface"
)

// Record is the last saved snapshot for one storage key.
type Record struct {
	Version time.Time
	Content string
	Cursor  surface.Position
}

// wireRecord is the stored JSON shape; ver is unix milliseconds.
type wireRecord struct {
	Val string           `json:"val"`
	Ver int64            `json:"ver"`
	Cur surface.Position `json:"cur"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{
		Val: r.Content,
		Ver: r.Version.UnixMilli(),
		Cur: r.Cursor,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Content = w.Val
	r.Version = time.UnixMilli(w.Ver)
	r.Cursor = w.Cur
	return nil
}
