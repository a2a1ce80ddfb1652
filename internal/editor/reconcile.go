package editor

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/debemdeboas/mdwidget/internal/backup"
	"github.com/debemdeboas/mdwidget/internal/surface"
)

// BackupMaxAge is the age past which a backup is never offered.
const BackupMaxAge = 24 * time.Hour

// Decision is the outcome of comparing live content with its backup.
type Decision struct {
	Prompt    bool
	Age       time.Duration
	StoredLen int
	LiveLen   int
}

// Reconcile decides whether to offer restoring rec over live. Lengths are
// counted in characters.
func Reconcile(live string, rec backup.Record, found bool, now time.Time, checkLength int) Decision {
	d := Decision{LiveLen: surface.RuneLen(live)}
	if !found {
		return d
	}

	d.Age = now.Sub(rec.Version)
	d.StoredLen = surface.RuneLen(rec.Content)

	delta := d.LiveLen - d.StoredLen
	if delta < 0 {
		delta = -delta
	}
	d.Prompt = d.Age < BackupMaxAge && delta >= checkLength
	return d
}

func (e *Editor) initValue() {
	if e.destroyed {
		return
	}

	now := e.host.Scheduler.Now()
	rec, found := e.store.Load(e.storeKey)
	d := Reconcile(e.anchor.Value, rec, found, now, e.opts.CheckLength)

	editorLogger.Debug().
		Int("editor", e.id).
		Bool("found", found).
		Bool("prompt", d.Prompt).
		Dur("age", d.Age).
		Msg("Backup reconciled")

	if !d.Prompt {
		return
	}

	msg := fmt.Sprintf("The local backup differs from the current content.\n"+
		"Backup saved: %s.\nBackup length: %d.\nCurrent length: %d.\nRestore it?",
		humanize.RelTime(rec.Version, now, "ago", "from now"), d.StoredLen, d.LiveLen)

	e.host.Dialogs.Confirm(msg).
		OnSure(func() { e.restore(rec) }).
		OnCancel(e.saveLocal)
}

func (e *Editor) restore(rec backup.Record) {
	if e.destroyed {
		return
	}
	e.SetValue(rec.Content)
	e.anchor.Value = rec.Content

	e.host.Scheduler.Post(func() {
		if err := e.surface.SetCursor(rec.Cursor); err != nil {
			editorLogger.Debug().Err(err).Int("editor", e.id).Msg("Cursor not restored")
		}
	})
}
