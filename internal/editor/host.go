package editor

import (
	"github.com/google/uuid"

	"github.com/debemdeboas/mdwidget/internal/backup"
	"github.com/debemdeboas/mdwidget/internal/dom"
	"github.com/debemdeboas/mdwidget/internal/loop"
	"github.com/debemdeboas/mdwidget/internal/surface"
	"github.com/debemdeboas/mdwidget/internal/ui"
)

// Surface is the text editing capability the editor drives.
type Surface interface {
	Value() string
	SetValue(value string)
	Cursor() surface.Position
	SetCursor(pos surface.Position) error
	Selection() string
	ReplaceSelection(value string)

	Focus()
	HasFocus() bool
	Refresh()

	OnChange(fn func()) func()
	OnCursorActivity(fn func()) func()
	AddKeyMap(km surface.KeyMap) func()
	HandleKey(key string) bool

	Wrapper() *dom.Element
	Scroller() *dom.Element
	ToTextArea()
}

// Renderer converts the whole markdown document to HTML.
type Renderer interface {
	Render(markdown string) string
}

// Host is what the embedding page provides to every editor on it.
type Host struct {
	Document *dom.Document
	// Path of the page, part of derived storage keys.
	Path string

	Storage   backup.KV
	Dialogs   *ui.Layer
	Renderer  Renderer
	Scheduler loop.Scheduler

	// NewSurface attaches a surface to the anchor textarea. Defaults to
	// surface.FromTextArea.
	NewSurface func(anchor *dom.Element, opts surface.Options) Surface
	// ObjectURL returns a temporary URL for a pasted or dropped file.
	ObjectURL func(f *dom.File) string
	// RevokeObjectURL releases a URL returned by ObjectURL once its upload
	// batch is over.
	RevokeObjectURL func(url string)
	// Preload warms the cache of an uploaded image before it is referenced.
	Preload func(url string)

	// Mac selects Cmd- instead of Ctrl- for modifier bindings.
	Mac bool

	Registry *Registry
}

func (h *Host) validate() error {
	switch {
	case h.Document == nil:
		return &ConfigError{Field: "Host.Document", Reason: "required"}
	case h.Renderer == nil:
		return &ConfigError{Field: "Host.Renderer", Reason: "required"}
	case h.Scheduler == nil:
		return &ConfigError{Field: "Host.Scheduler", Reason: "required"}
	}
	return nil
}

func (h *Host) applyDefaults() {
	if h.Storage == nil {
		h.Storage = backup.NewMemoryKV()
	}
	if h.Dialogs == nil {
		h.Dialogs = ui.NewLayer(h.Document)
	}
	if h.NewSurface == nil {
		h.NewSurface = func(anchor *dom.Element, opts surface.Options) Surface {
			return surface.FromTextArea(anchor, opts)
		}
	}
	if h.ObjectURL == nil {
		h.ObjectURL = func(*dom.File) string { return "blob:" + uuid.NewString() }
	}
	if h.RevokeObjectURL == nil {
		h.RevokeObjectURL = func(string) {}
	}
	if h.Preload == nil {
		h.Preload = func(string) {}
	}
	if h.Registry == nil {
		h.Registry = DefaultRegistry
	}
}
