package editor

import (
	"strings"
	"testing"
	"time"

	"github.com/debemdeboas/mdwidget/internal/backup"
	"github.com/debemdeboas/mdwidget/internal/surface"
	"github.com/debemdeboas/mdwidget/internal/ui"
)

func TestReconcile(t *testing.T) {
	now := epoch
	rec := func(content string, age time.Duration) backup.Record {
		return backup.Record{Content: content, Version: now.Add(-age)}
	}

	tests := []struct {
		name        string
		live        string
		rec         backup.Record
		found       bool
		checkLength int
		wantPrompt  bool
	}{
		{"no backup", "abc", backup.Record{}, false, 3, false},
		{"delta below threshold", "ab", rec("abcd", time.Hour), true, 3, false},
		{"delta at threshold", "a", rec("abcd", time.Hour), true, 3, true},
		{"live longer than backup", "abcdef", rec("abc", time.Minute), true, 3, true},
		{"stale backup", "", rec("abcdef", 25*time.Hour), true, 3, false},
		{"exactly a day old", "", rec("abcdef", 24*time.Hour), true, 3, false},
		{"just under a day", "", rec("abcdef", 24*time.Hour-time.Second), true, 3, true},
		{"characters not bytes", "ééé", rec("abc", time.Hour), true, 1, false},
		{"zero threshold same length", "abc", rec("xyz", time.Hour), true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Reconcile(tt.live, tt.rec, tt.found, now, tt.checkLength)
			if d.Prompt != tt.wantPrompt {
				t.Errorf("Expected prompt=%v, got %+v", tt.wantPrompt, d)
			}
		})
	}
}

func seedBackup(t *testing.T, f *fixture, rec backup.Record) {
	t.Helper()
	backup.NewStore(f.kv).Save(f.ed.StorageKey(), rec)
}

func onlyPrompt(t *testing.T, layer *ui.Layer) *ui.Prompt {
	t.Helper()
	prompts := layer.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("Expected exactly one prompt, got %d", len(prompts))
	}
	return prompts[0]
}

func TestRestoreBackup(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())
	seedBackup(t, f, backup.Record{
		Version: epoch.Add(-time.Hour),
		Content: "# draft\nbody",
		Cursor:  surface.Position{Line: 1, Ch: 2},
	})

	var changes []string
	f.ed.OnChange(func(c string) { changes = append(changes, c) })
	f.sched.Flush()

	p := onlyPrompt(t, f.layer)
	if p.Kind != ui.KindConfirm {
		t.Errorf("Expected a confirm, got %s", p.Kind)
	}
	for _, want := range []string{"1 hour ago", "Backup length: 12", "Current length: 0"} {
		if !strings.Contains(p.Message, want) {
			t.Errorf("Expected message to contain %q, got %q", want, p.Message)
		}
	}

	if err := f.layer.Answer(p.ID, true); err != nil {
		t.Fatal(err)
	}
	if f.ed.GetValue() != "# draft\nbody" || f.anchor.Value != "# draft\nbody" {
		t.Errorf("Expected backup content restored, got %q", f.ed.GetValue())
	}
	if len(changes) != 1 || changes[0] != "# draft\nbody" {
		t.Errorf("Expected one change notification, got %v", changes)
	}

	f.sched.Flush()
	if got := f.buffer().Cursor(); got != (surface.Position{Line: 1, Ch: 2}) {
		t.Errorf("Expected cursor restored, got %v", got)
	}
}

func TestKeepCurrentContent(t *testing.T) {
	f := newFixture(t, "live content", DefaultOptions())
	seedBackup(t, f, backup.Record{Version: epoch.Add(-time.Minute), Content: "old"})
	f.sched.Flush()

	p := onlyPrompt(t, f.layer)
	if err := f.layer.Answer(p.ID, false); err != nil {
		t.Fatal(err)
	}

	if f.ed.GetValue() != "live content" {
		t.Errorf("Expected live content to stay, got %q", f.ed.GetValue())
	}
	rec, ok := f.stored()
	if !ok || rec.Content != "live content" || !rec.Version.Equal(epoch) {
		t.Errorf("Expected live content to overwrite the backup, got %+v", rec)
	}
}

func TestNoPromptCases(t *testing.T) {
	tests := []struct {
		name string
		live string
		rec  *backup.Record
	}{
		{"nothing stored", "text", nil},
		{"similar length", "abcd", &backup.Record{Version: epoch.Add(-time.Hour), Content: "abcdef"}},
		{"stale", "", &backup.Record{Version: epoch.Add(-48 * time.Hour), Content: "long forgotten"}},
		{"cleared", "", &backup.Record{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.live, DefaultOptions())
			if tt.rec != nil {
				seedBackup(t, f, *tt.rec)
			}
			if tt.name == "cleared" {
				f.ed.ClearStore()
			}
			f.sched.Flush()

			if n := len(f.layer.Prompts()); n != 0 {
				t.Errorf("Expected no prompt, got %d", n)
			}
		})
	}
}

func TestRestoreWithInvalidCursor(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())
	seedBackup(t, f, backup.Record{
		Version: epoch.Add(-time.Hour),
		Content: "short",
		Cursor:  surface.Position{Line: 9, Ch: 9},
	})
	f.sched.Flush()

	p := onlyPrompt(t, f.layer)
	if err := f.layer.Answer(p.ID, true); err != nil {
		t.Fatal(err)
	}
	f.sched.Flush()

	if f.ed.GetValue() != "short" {
		t.Errorf("Expected content restored, got %q", f.ed.GetValue())
	}
	if got := f.buffer().Cursor(); got != (surface.Position{}) {
		t.Errorf("Expected cursor to stay at the start, got %v", got)
	}
}

func TestNoReconcileWhenBackupDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.CanBackup = false
	f := newFixture(t, "", opts)
	seedBackup(t, f, backup.Record{Version: epoch, Content: "something long"})
	f.sched.Flush()

	if len(f.layer.Prompts()) != 0 {
		t.Error("Expected no reconciliation without backups")
	}
}

func TestReconcileAfterDestroy(t *testing.T) {
	f := newFixture(t, "", DefaultOptions())
	seedBackup(t, f, backup.Record{Version: epoch, Content: "something long"})
	f.ed.Destroy()
	f.sched.Flush()

	if len(f.layer.Prompts()) != 0 {
		t.Error("Expected a destroyed editor to skip reconciliation")
	}
}
