// Package surface is an in-memory text editing surface: content, a cursor,
// a selection, keymaps and change notifications, attached to a textarea.
package surface

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/debemdeboas/mdwidget/internal/dom"
)

var ErrDetached = errors.New("surface: detached")

// Position addresses a rune column on a zero-based line.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

type KeyMap map[string]func()

type Options struct {
	TabSize int
}

type Buffer struct {
	text   []rune
	anchor int // selection anchor, rune offset
	head   int // cursor, rune offset

	opts    Options
	focused bool

	textarea *dom.Element
	wrapper  *dom.Element
	scroller *dom.Element
	detached bool

	keymaps []keymapEntry

	changeListeners []*subscriber
	cursorListeners []*subscriber
	nextSub         int
}

type keymapEntry struct {
	id int
	km KeyMap
}

type subscriber struct {
	id int
	fn func()
}

// FromTextArea hides the textarea and places the editing surface after it.
func FromTextArea(textarea *dom.Element, opts Options) *Buffer {
	b := &Buffer{
		text:     []rune(textarea.Value),
		opts:     opts,
		textarea: textarea,
		wrapper:  dom.NewElement("div"),
		scroller: dom.NewElement("div"),
	}
	b.wrapper.AddClass("surface")
	b.scroller.AddClass("surface-scroll")
	b.wrapper.AppendChild(b.scroller)

	if p := textarea.Parent(); p != nil {
		siblings := p.Children()
		var next *dom.Element
		for i, c := range siblings {
			if c == textarea && i+1 < len(siblings) {
				next = siblings[i+1]
			}
		}
		p.InsertBefore(b.wrapper, next)
	}
	textarea.SetStyle("display", "none")
	return b
}

func (b *Buffer) Wrapper() *dom.Element  { return b.wrapper }
func (b *Buffer) Scroller() *dom.Element { return b.scroller }
func (b *Buffer) TabSize() int           { return b.opts.TabSize }

func (b *Buffer) Value() string {
	return string(b.text)
}

// SetValue replaces the whole document and moves the cursor to the start.
func (b *Buffer) SetValue(value string) {
	b.text = []rune(value)
	b.anchor, b.head = 0, 0
	b.notify(b.changeListeners)
	b.notify(b.cursorListeners)
}

func (b *Buffer) Cursor() Position {
	return b.posFromOffset(b.head)
}

func (b *Buffer) SetCursor(pos Position) error {
	if b.detached {
		return ErrDetached
	}
	off, err := b.offsetFromPos(pos)
	if err != nil {
		return err
	}
	b.anchor, b.head = off, off
	b.notify(b.cursorListeners)
	return nil
}

// SetSelection selects from anchor to head.
func (b *Buffer) SetSelection(anchor, head Position) error {
	a, err := b.offsetFromPos(anchor)
	if err != nil {
		return err
	}
	h, err := b.offsetFromPos(head)
	if err != nil {
		return err
	}
	b.anchor, b.head = a, h
	b.notify(b.cursorListeners)
	return nil
}

func (b *Buffer) Selection() string {
	from, to := b.selRange()
	return string(b.text[from:to])
}

// ReplaceSelection replaces the selection, or inserts at the cursor, and
// leaves the cursor after the inserted text.
func (b *Buffer) ReplaceSelection(value string) {
	from, to := b.selRange()
	ins := []rune(value)
	text := make([]rune, 0, len(b.text)-(to-from)+len(ins))
	text = append(text, b.text[:from]...)
	text = append(text, ins...)
	text = append(text, b.text[to:]...)
	b.text = text
	b.anchor = from + len(ins)
	b.head = b.anchor
	b.notify(b.changeListeners)
	b.notify(b.cursorListeners)
}

// Sync mirrors the state of a client-side textarea. Change listeners run only
// when the text differs.
func (b *Buffer) Sync(value string, anchor, head int) {
	changed := value != string(b.text)
	b.text = []rune(value)
	b.anchor = clamp(anchor, 0, len(b.text))
	b.head = clamp(head, 0, len(b.text))
	if changed {
		b.notify(b.changeListeners)
	}
	b.notify(b.cursorListeners)
}

// SelectionOffsets returns anchor and head as rune offsets.
func (b *Buffer) SelectionOffsets() (int, int) {
	return b.anchor, b.head
}

func (b *Buffer) Focus()         { b.focused = true }
func (b *Buffer) Blur()          { b.focused = false }
func (b *Buffer) HasFocus() bool { return b.focused }

// Refresh recomputes layout metrics of the scroller from the content.
func (b *Buffer) Refresh() {
	lines := strings.Count(string(b.text), "\n") + 1
	b.scroller.ScrollHeight = float64(lines) * lineHeight
	if b.scroller.ScrollTop > b.scroller.ScrollHeight {
		b.scroller.ScrollTop = b.scroller.ScrollHeight
	}
}

const lineHeight = 20

func (b *Buffer) OnChange(fn func()) func() {
	return b.subscribe(&b.changeListeners, fn)
}

func (b *Buffer) OnCursorActivity(fn func()) func() {
	return b.subscribe(&b.cursorListeners, fn)
}

func (b *Buffer) subscribe(list *[]*subscriber, fn func()) func() {
	b.nextSub++
	id := b.nextSub
	*list = append(*list, &subscriber{id: id, fn: fn})
	return func() {
		for i, s := range *list {
			if s.id == id {
				*list = append((*list)[:i:i], (*list)[i+1:]...)
				return
			}
		}
	}
}

func (b *Buffer) notify(list []*subscriber) {
	for _, s := range append([]*subscriber(nil), list...) {
		s.fn()
	}
}

// AddKeyMap registers bindings and returns a function removing them.
func (b *Buffer) AddKeyMap(km KeyMap) func() {
	b.nextSub++
	entry := keymapEntry{id: b.nextSub, km: km}
	b.keymaps = append(b.keymaps, entry)
	return func() {
		for i, e := range b.keymaps {
			if e.id == entry.id {
				b.keymaps = append(b.keymaps[:i:i], b.keymaps[i+1:]...)
				return
			}
		}
	}
}

// HandleKey runs the most recently added binding for key and reports whether
// one existed.
func (b *Buffer) HandleKey(key string) bool {
	if b.detached {
		return false
	}
	for i := len(b.keymaps) - 1; i >= 0; i-- {
		if fn, ok := b.keymaps[i].km[key]; ok {
			fn()
			return true
		}
	}
	return false
}

// ToTextArea writes the content back to the textarea, shows it again and
// removes the surface from the document.
func (b *Buffer) ToTextArea() {
	if b.detached {
		return
	}
	b.detached = true
	b.textarea.Value = string(b.text)
	b.textarea.SetStyle("display", "")
	b.wrapper.Remove()
	b.keymaps = nil
	b.changeListeners = nil
	b.cursorListeners = nil
}

func (b *Buffer) selRange() (int, int) {
	if b.anchor < b.head {
		return b.anchor, b.head
	}
	return b.head, b.anchor
}

func (b *Buffer) posFromOffset(off int) Position {
	var pos Position
	for _, r := range b.text[:off] {
		if r == '\n' {
			pos.Line++
			pos.Ch = 0
		} else {
			pos.Ch++
		}
	}
	return pos
}

func (b *Buffer) offsetFromPos(pos Position) (int, error) {
	if pos.Line < 0 || pos.Ch < 0 {
		return 0, fmt.Errorf("invalid position %d:%d", pos.Line, pos.Ch)
	}
	line, off := 0, 0
	for off < len(b.text) && line < pos.Line {
		if b.text[off] == '\n' {
			line++
		}
		off++
	}
	if line < pos.Line {
		return 0, fmt.Errorf("line %d out of range", pos.Line)
	}
	for i := 0; i < pos.Ch; i++ {
		if off >= len(b.text) || b.text[off] == '\n' {
			return 0, fmt.Errorf("column %d out of range on line %d", pos.Ch, pos.Line)
		}
		off++
	}
	return off, nil
}

// RuneLen counts characters the way the surface addresses them.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
