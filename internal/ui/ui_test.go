package ui

import (
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/mdwidget/internal/dom"
)

func TestMain(m *testing.M) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	os.Exit(m.Run())
}

func dialogsInBody(doc *dom.Document) int {
	return len(doc.Body.FindAll(func(e *dom.Element) bool { return e.HasClass(DialogClass) }))
}

func TestZIndexIncreases(t *testing.T) {
	a := ZIndex()
	b := ZIndex()
	if b <= a {
		t.Errorf("Expected increasing z-index, got %d then %d", a, b)
	}
	if a <= zIndexBase {
		t.Errorf("Expected z-index above %d, got %d", zIndexBase, a)
	}
}

func TestDialogLifecycle(t *testing.T) {
	doc := dom.NewDocument()
	layer := NewLayer(doc)
	changes := 0
	layer.OnChange(func() { changes++ })

	d := layer.NewDialog("Uploading", "<ul><li>a.png</li></ul>")
	if dialogsInBody(doc) != 0 {
		t.Fatal("Expected dialog to stay out of the document until opened")
	}

	d.Open()
	d.Open()
	if dialogsInBody(doc) != 1 || len(layer.Dialogs()) != 1 {
		t.Fatalf("Expected one open dialog, got %d in body", dialogsInBody(doc))
	}
	if z, err := strconv.Atoi(d.Element().Style("z-index")); err != nil || z <= zIndexBase {
		t.Errorf("Expected allocated z-index, got %q", d.Element().Style("z-index"))
	}
	if d.ContentHTML() != "<ul><li>a.png</li></ul>" {
		t.Errorf("Unexpected content %q", d.ContentHTML())
	}

	d.SetTitle("Uploading (50%)")
	if d.Title() != "Uploading (50%)" {
		t.Errorf("Unexpected title %q", d.Title())
	}

	closed := 0
	d.Destroy(func() { closed++ })
	d.Destroy(func() { closed++ })
	if closed != 1 {
		t.Errorf("Expected destroy callback once, got %d", closed)
	}
	if dialogsInBody(doc) != 0 || len(layer.Dialogs()) != 0 {
		t.Error("Expected dialog to be removed")
	}

	d.SetTitle("ignored")
	if d.Title() != "Uploading (50%)" {
		t.Error("Expected destroyed dialog to ignore title updates")
	}
	if changes != 3 {
		t.Errorf("Expected 3 change notifications, got %d", changes)
	}
}

func TestDialogTitleIsText(t *testing.T) {
	layer := NewLayer(dom.NewDocument())
	d := layer.NewDialog("<b>a.png</b>", "")

	titleHTML := func() string {
		for _, c := range d.Element().Children() {
			if c.HasClass(dialogTitleClass) {
				return c.InnerHTML()
			}
		}
		return ""
	}
	if got := titleHTML(); got != "&lt;b&gt;a.png&lt;/b&gt;" {
		t.Errorf("Expected an escaped title, got %q", got)
	}

	d.SetTitle("<script>x</script>")
	if got := titleHTML(); got != "&lt;script&gt;x&lt;/script&gt;" {
		t.Errorf("Expected an escaped title, got %q", got)
	}
	if d.Title() != "<script>x</script>" {
		t.Errorf("Expected the raw title to be kept, got %q", d.Title())
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		ok         bool
		wantSure   int
		wantCancel int
	}{
		{"accepted", true, 1, 0},
		{"rejected", false, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := NewLayer(dom.NewDocument())
			sure, cancel, closed := 0, 0, 0
			p := layer.Confirm("Restore?").
				OnSure(func() { sure++ }).
				OnCancel(func() { cancel++ }).
				OnClose(func() { closed++ })

			if len(layer.Prompts()) != 1 || layer.Prompts()[0].Kind != KindConfirm {
				t.Fatalf("Expected one pending confirm, got %v", layer.Prompts())
			}
			if err := layer.Answer(p.ID, tt.ok); err != nil {
				t.Fatal(err)
			}
			if sure != tt.wantSure || cancel != tt.wantCancel || closed != 1 {
				t.Errorf("sure=%d cancel=%d closed=%d", sure, cancel, closed)
			}
			if len(layer.Prompts()) != 0 {
				t.Error("Expected prompt to be resolved")
			}
			if err := layer.Answer(p.ID, tt.ok); !errors.Is(err, ErrNoPrompt) {
				t.Errorf("Expected ErrNoPrompt on second answer, got %v", err)
			}
		})
	}
}

func TestAlert(t *testing.T) {
	layer := NewLayer(dom.NewDocument())
	closed := false
	p := layer.Alert("Please drag or paste an image file").OnClose(func() { closed = true })

	if p.Kind != KindAlert || p.Message != "Please drag or paste an image file" {
		t.Errorf("Unexpected prompt %+v", p)
	}
	layer.Answer(p.ID, false)
	if !closed {
		t.Error("Expected alert to close on any answer")
	}
}

func TestOnChangeUnsubscribe(t *testing.T) {
	layer := NewLayer(dom.NewDocument())
	calls := 0
	off := layer.OnChange(func() { calls++ })
	layer.Alert("one")
	off()
	layer.Alert("two")
	if calls != 1 {
		t.Errorf("Expected 1 notification, got %d", calls)
	}
}
