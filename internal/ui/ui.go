// Package ui provides modal dialogs and alert/confirm prompts over a
// document, plus the process-wide z-index allocator.
package ui

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/mdwidget/internal/dom"
)

var uiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	uiLogger = l
}

var ErrNoPrompt = errors.New("ui: no such prompt")

const zIndexBase = 1000

var zIndex atomic.Int64

// ZIndex allocates a stacking level above every level handed out before.
func ZIndex() int {
	return zIndexBase + int(zIndex.Add(1))
}

const (
	DialogClass        = "mdwidget-dialog"
	dialogTitleClass   = "mdwidget-dialog-title"
	dialogContentClass = "mdwidget-dialog-content"
)

// Layer owns the dialogs and prompts shown over one document. It is not safe
// for concurrent use.
type Layer struct {
	doc *dom.Document

	dialogs []*Dialog
	prompts []*Prompt
	nextID  int

	listeners map[int]func()
	nextSub   int
}

func NewLayer(doc *dom.Document) *Layer {
	return &Layer{
		doc:       doc,
		listeners: make(map[int]func()),
	}
}

func (l *Layer) Document() *dom.Document { return l.doc }

// OnChange registers fn to run whenever a dialog or prompt appears, changes
// or goes away.
func (l *Layer) OnChange(fn func()) func() {
	l.nextSub++
	id := l.nextSub
	l.listeners[id] = fn
	return func() { delete(l.listeners, id) }
}

func (l *Layer) changed() {
	for _, id := range slices.Sorted(maps.Keys(l.listeners)) {
		if fn, ok := l.listeners[id]; ok {
			fn()
		}
	}
}

// Dialogs returns the open dialogs in opening order.
func (l *Layer) Dialogs() []*Dialog {
	return append([]*Dialog(nil), l.dialogs...)
}

// Prompts returns the unanswered prompts in creation order.
func (l *Layer) Prompts() []*Prompt {
	return append([]*Prompt(nil), l.prompts...)
}

// Answer resolves a pending prompt. For a confirm, ok selects the sure
// handler over the cancel handler; alerts ignore it.
func (l *Layer) Answer(id int, ok bool) error {
	for i, p := range l.prompts {
		if p.ID != id {
			continue
		}
		l.prompts = append(l.prompts[:i:i], l.prompts[i+1:]...)
		uiLogger.Debug().Int("prompt", id).Str("kind", string(p.Kind)).Bool("ok", ok).Msg("Prompt answered")
		l.changed()
		p.resolve(ok)
		return nil
	}
	return ErrNoPrompt
}

func (l *Layer) id() int {
	l.nextID++
	return l.nextID
}

func itoa(n int) string { return strconv.Itoa(n) }
