// Package session hosts editors for browser pages. Each session owns an event
// loop, a document and one editor; the page mirrors its textarea into the
// session and renders the snapshots it publishes.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/mdwidget/internal/cache"
	"github.com/debemdeboas/mdwidget/internal/dom"
	"github.com/debemdeboas/mdwidget/internal/editor"
	"github.com/debemdeboas/mdwidget/internal/loop"
	"github.com/debemdeboas/mdwidget/internal/routes"
	"github.com/debemdeboas/mdwidget/internal/surface"
	"github.com/debemdeboas/mdwidget/internal/ui"
)

var sessionLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}

type Session struct {
	ID      string
	Created time.Time

	loop *loop.Loop
	stop context.CancelFunc

	doc   *dom.Document
	layer *ui.Layer
	ed    *editor.Editor
	buf   *surface.Buffer
	blobs *cache.Cache[string, *dom.File]

	publish   func(id, msg string)
	dirty     bool
	destroyed bool

	lastActive atomic.Int64 // unix nanoseconds
}

// Do runs fn on the session loop and returns its error.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	var err error
	if lerr := s.loop.Do(ctx, func() { err = fn() }); lerr != nil {
		return lerr
	}
	return err
}

func (s *Session) Editor() *editor.Editor { return s.ed }
func (s *Session) Buffer() *surface.Buffer { return s.buf }
func (s *Session) Layer() *ui.Layer        { return s.layer }

// objectURL keeps f until revokeObjectURL and returns the URL serving it.
func (s *Session) objectURL(f *dom.File) string {
	id := uuid.NewString()
	s.blobs.Set(id, f)
	return fmt.Sprintf(routes.APISessionBlobFmt, s.ID, id)
}

func (s *Session) revokeObjectURL(url string) {
	s.blobs.Delete(path.Base(url))
}

// Blobs reports how many temporary files the session holds.
func (s *Session) Blobs() int {
	return s.blobs.Len()
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive is the time of the last request addressed to the session.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) Blob(id string) (*dom.File, bool) {
	return s.blobs.Get(id)
}

// markDirty schedules one snapshot for everything changed during the current
// loop task.
func (s *Session) markDirty() {
	if s.dirty {
		return
	}
	s.dirty = true
	s.loop.Post(s.flush)
}

func (s *Session) flush() {
	s.dirty = false
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		sessionLogger.Error().Err(err).Str("session", s.ID).Msg("Failed to encode snapshot")
		return
	}
	s.publish(s.ID, string(data))
}

type DialogView struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	HTML   string `json:"html"`
	ZIndex int    `json:"z_index"`
}

type PromptView struct {
	ID      int           `json:"id"`
	Kind    ui.PromptKind `json:"kind"`
	Message string        `json:"message"`
}

// Snapshot is the state a page needs to draw the editor.
type Snapshot struct {
	Session   string           `json:"session"`
	Editor    int              `json:"editor"`
	Key       string           `json:"key"`
	Value     string           `json:"value"`
	Cursor    surface.Position `json:"cursor"`
	Selection [2]int           `json:"selection"`

	Fullscreen       bool    `json:"fullscreen"`
	Preview          bool    `json:"preview"`
	PreviewHTML      string  `json:"preview_html"`
	PreviewScrollTop float64 `json:"preview_scroll_top"`

	Class        string `json:"class"`
	Style        string `json:"style"`
	WrapperStyle string `json:"wrapper_style"`
	RootStyle    string `json:"root_style"`

	Uploading bool         `json:"uploading"`
	Dialogs   []DialogView `json:"dialogs"`
	Prompts   []PromptView `json:"prompts"`
	Destroyed bool         `json:"destroyed"`
}

// Snapshot must be called on the session loop.
func (s *Session) Snapshot() Snapshot {
	anchor, head := s.buf.SelectionOffsets()
	container := s.ed.Container()
	snap := Snapshot{
		Session:   s.ID,
		Editor:    s.ed.ID(),
		Key:       s.ed.StorageKey(),
		Value:     s.ed.GetValue(),
		Cursor:    s.buf.Cursor(),
		Selection: [2]int{anchor, head},

		Fullscreen:       s.ed.Fullscreen(),
		Preview:          s.ed.PreviewVisible(),
		PreviewHTML:      s.ed.Preview().InnerHTML(),
		PreviewScrollTop: s.ed.Preview().ScrollTop,

		Class:        container.ClassName(),
		Style:        container.CSSText(),
		WrapperStyle: s.buf.Wrapper().CSSText(),
		RootStyle:    s.doc.Root.CSSText(),

		Uploading: s.ed.UploadPending(),
		Dialogs:   []DialogView{},
		Prompts:   []PromptView{},
		Destroyed: s.destroyed,
	}
	for _, d := range s.layer.Dialogs() {
		z, _ := strconv.Atoi(d.Element().Style("z-index"))
		snap.Dialogs = append(snap.Dialogs, DialogView{ID: d.ID, Title: d.Title(), HTML: d.ContentHTML(), ZIndex: z})
	}
	for _, p := range s.layer.Prompts() {
		snap.Prompts = append(snap.Prompts, PromptView{ID: p.ID, Kind: p.Kind, Message: p.Message})
	}
	return snap
}
