// Package editor is the behaviour layer of the markdown widget: backup
// reconciliation, preview synchronization, the fullscreen and preview view
// state, image upload on paste or drop, and editing commands.
//
// An Editor is not safe for concurrent use. Every method, and every callback
// it schedules, runs on the host Scheduler.
package editor

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/mdwidget/internal/backup"
	"github.com/debemdeboas/mdwidget/internal/dom"
	"github.com/debemdeboas/mdwidget/internal/loop"
	"github.com/debemdeboas/mdwidget/internal/surface"
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

const (
	ClassName       = "mdwidget"
	PreviewClass    = ClassName + "-preview"
	FullscreenClass = ClassName + "-fullscreen"
	NoPreviewClass  = ClassName + "-nopreview"
)

type Editor struct {
	id     int
	anchor *dom.Element
	opts   Options
	host   Host

	storeKey string
	store    *backup.Store

	surface   Surface
	container *dom.Element
	wrapper   *dom.Element
	scroller  *dom.Element
	preview   *dom.Element

	fullscreen bool
	noPreview  bool
	// lastPreview is the preview visibility recorded when fullscreen was
	// last left.
	lastPreview bool
	savedWidth  string
	savedHeight string

	previewTimer loop.Timer

	batch      *uploadBatch
	generation int

	changeListeners     listeners[string]
	fullscreenListeners listeners[bool]
	renderListeners     listeners[string]

	teardown  []func()
	destroyed bool
}

// New attaches an editor to the anchor textarea.
func New(anchor *dom.Element, opts Options, host Host) (*Editor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := host.validate(); err != nil {
		return nil, err
	}
	host.applyDefaults()

	e := &Editor{
		anchor:    anchor,
		opts:      opts,
		host:      host,
		storeKey:  backup.DeriveKey(opts.ID, host.Path, anchor),
		store:     backup.NewStore(host.Storage),
		noPreview: true,
	}
	e.id = host.Registry.register(e)

	e.surface = host.NewSurface(anchor, surface.Options{TabSize: opts.TabSize})
	e.wrapper = e.surface.Wrapper()
	e.scroller = e.surface.Scroller()

	e.container = e.wrapper.Wrap(dom.NewElement("div"))
	e.container.SetAttribute("id", ClassName+"-"+strconv.Itoa(e.id))
	e.container.AddClass(ClassName, opts.AddClass)

	e.preview = dom.NewElement("div")
	e.preview.AddClass(PreviewClass)
	e.container.AppendChild(e.preview)

	e.scroller.SetStyle("min-height", strconv.Itoa(opts.MinHeight)+"px")

	e.bindEvents()

	editorLogger.Debug().Int("editor", e.id).Str("key", e.storeKey).Msg("Editor created")

	if opts.CanBackup {
		host.Scheduler.Post(e.initValue)
	}
	return e, nil
}

func (e *Editor) bindEvents() {
	e.teardown = append(e.teardown,
		e.bindCommands(),
		e.surface.OnChange(e.onChange),
		e.surface.OnCursorActivity(e.saveLocal),
		e.scroller.AddEventListener("scroll", func(*dom.Event) { e.syncScroll() }),
		e.wrapper.AddEventListener("dragenter dragover", func(ev *dom.Event) { ev.PreventDefault() }),
		e.wrapper.AddEventListener("drop", func(ev *dom.Event) { e.logUpload(e.HandleDrop(ev)) }),
		e.wrapper.AddEventListener("paste", func(ev *dom.Event) { e.logUpload(e.HandlePaste(ev)) }),
		e.wrapper.AddEventListener("click", func(*dom.Event) {
			if !e.surface.HasFocus() {
				e.surface.Focus()
			}
		}),
	)
}

func (e *Editor) onChange() {
	e.anchor.Value = e.surface.Value()
	e.changeListeners.emit(e.anchor.Value)
	e.saveLocal()
	e.schedulePreview()
}

func (e *Editor) saveLocal() {
	if !e.opts.CanBackup || e.destroyed {
		return
	}
	e.store.Save(e.storeKey, backup.Record{
		Version: e.host.Scheduler.Now(),
		Content: e.anchor.Value,
		Cursor:  e.surface.Cursor(),
	})
}

func (e *Editor) ID() int                { return e.id }
func (e *Editor) StorageKey() string     { return e.storeKey }
func (e *Editor) Anchor() *dom.Element    { return e.anchor }
func (e *Editor) Container() *dom.Element { return e.container }
func (e *Editor) Preview() *dom.Element   { return e.preview }
func (e *Editor) Surface() Surface        { return e.surface }
func (e *Editor) Fullscreen() bool        { return e.fullscreen }
func (e *Editor) Destroyed() bool         { return e.destroyed }

// PreviewVisible reports whether the preview pane is shown.
func (e *Editor) PreviewVisible() bool {
	return e.fullscreen && !e.noPreview
}

func (e *Editor) SetValue(value string) {
	e.surface.SetValue(value)
	e.surface.Refresh()
}

func (e *Editor) GetValue() string {
	return e.surface.Value()
}

// HandleKey dispatches a key name such as "Ctrl-B" through the keymaps.
func (e *Editor) HandleKey(key string) bool {
	if e.destroyed {
		return false
	}
	return e.surface.HandleKey(key)
}

// ClearStore erases the backup of this editor.
func (e *Editor) ClearStore() {
	e.store.Clear(e.storeKey)
}

// Destroy detaches every listener, abandons a pending upload, stops the
// preview timer and returns the surface to its textarea.
func (e *Editor) Destroy() {
	if e.destroyed {
		return
	}
	if e.fullscreen {
		e.ToggleFullscreen()
	}
	e.destroyed = true

	for _, fn := range e.teardown {
		fn()
	}
	e.teardown = nil

	if e.previewTimer != nil {
		e.previewTimer.Stop()
		e.previewTimer = nil
	}
	if e.batch != nil {
		e.abandonUpload()
	}

	e.surface.ToTextArea()
	e.container.Remove()
	e.host.Registry.unregister(e.id)

	editorLogger.Debug().Int("editor", e.id).Msg("Editor destroyed")
}
