package editor

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/debemdeboas/mdwidget/internal/dom"
	"github.com/debemdeboas/mdwidget/internal/ui"
)

//go:embed templates/upload.html
var templates embed.FS

var uploadTemplate = template.Must(template.ParseFS(templates, "templates/upload.html"))

// uploadBatch is the set of images handed to one upload callback call.
type uploadBatch struct {
	generation int
	items      []UploadItem
	dialog     *ui.Dialog
	done       bool
	released   bool
}

// HandleDrop uploads the images dropped on the editor.
func (e *Editor) HandleDrop(ev *dom.Event) error {
	return e.collectImages(ev)
}

// HandlePaste uploads the images pasted into the editor.
func (e *Editor) HandlePaste(ev *dom.Event) error {
	return e.collectImages(ev)
}

func (e *Editor) collectImages(ev *dom.Event) error {
	dt := ev.DataTransfer
	if dt == nil || e.destroyed {
		return nil
	}

	var items []UploadItem
	for _, it := range dt.Items {
		if !strings.HasPrefix(it.Type, "image/") || it.Kind != "file" {
			continue
		}
		if f := it.GetAsFile(); f != nil && f.Size() > 0 {
			items = append(items, UploadItem{TemporaryURL: e.host.ObjectURL(f), File: f})
		}
	}

	if len(items) > 0 {
		ev.PreventDefault()
		return e.openUploadDialog(items)
	}
	if len(dt.Files) > 0 {
		ev.PreventDefault()
		e.host.Dialogs.Alert(MsgNotImage)
		return ErrNotImage
	}
	return nil
}

func uploadTitle(n int, percent string) string {
	return fmt.Sprintf("Uploading %d image(s) (%s)", n, percent)
}

func (e *Editor) openUploadDialog(items []UploadItem) error {
	if e.opts.UploadCallback == nil {
		e.revoke(items)
		e.host.Dialogs.Alert(MsgNoUploadCallback)
		return ErrNoUploadCallback
	}

	content, err := e.renderUploadList(items)
	if err != nil {
		e.revoke(items)
		return fmt.Errorf("rendering upload list: %w", err)
	}

	if e.batch != nil {
		editorLogger.Debug().Int("editor", e.id).Int("generation", e.batch.generation).Msg("Abandoning pending upload")
		e.abandonUpload()
	}

	e.generation++
	b := &uploadBatch{
		generation: e.generation,
		items:      items,
		dialog:     e.host.Dialogs.NewDialog(uploadTitle(len(items), "0%"), content).Open(),
	}
	e.batch = b

	progress := func(percent string) {
		e.host.Scheduler.Post(func() {
			if e.current(b) {
				b.dialog.SetTitle(uploadTitle(len(b.items), percent))
			}
		})
	}
	done := func(err error, results []UploadResult) {
		e.host.Scheduler.Post(func() { e.finishUpload(b, err, results) })
	}

	e.opts.UploadCallback(items, progress, done)
	return nil
}

// current reports whether b is the live batch and still waiting for done.
func (e *Editor) current(b *uploadBatch) bool {
	return !e.destroyed && e.batch == b && !b.done
}

func (e *Editor) finishUpload(b *uploadBatch, err error, results []UploadResult) {
	if !e.current(b) {
		editorLogger.Debug().Int("editor", e.id).Int("generation", b.generation).Msg("Ignoring completion of abandoned upload")
		return
	}
	b.done = true

	if err != nil {
		editorLogger.Warn().Err(err).Int("editor", e.id).Msg("Upload failed")
		e.host.Dialogs.Alert(err.Error()).OnClose(func() { e.teardownUpload(b) })
		return
	}

	refs := make([]string, 0, len(results))
	for _, r := range results {
		e.host.Preload(r.URL)
		refs = append(refs, ImageMarkdown(r))
	}
	e.Replace(strings.Join(refs, " "))
	e.teardownUpload(b)
}

// ImageMarkdown formats an upload result as a markdown image reference. The
// =WxH size is written only when both dimensions are known.
func ImageMarkdown(r UploadResult) string {
	if r.Width > 0 && r.Height > 0 {
		return fmt.Sprintf("![](%s =%dx%d)", r.URL, r.Width, r.Height)
	}
	return "![](" + r.URL + ")"
}

func (e *Editor) teardownUpload(b *uploadBatch) {
	if e.batch == b {
		e.batch = nil
	}
	e.release(b)
	b.dialog.Destroy(func() {
		if !e.destroyed {
			e.surface.Focus()
		}
	})
}

// abandonUpload drops the pending batch without waiting for its callback.
func (e *Editor) abandonUpload() {
	b := e.batch
	e.batch = nil
	e.release(b)
	b.dialog.Destroy(nil)
}

// release revokes the temporary URLs of b once.
func (e *Editor) release(b *uploadBatch) {
	if b.released {
		return
	}
	b.released = true
	e.revoke(b.items)
}

func (e *Editor) revoke(items []UploadItem) {
	for _, it := range items {
		e.host.RevokeObjectURL(it.TemporaryURL)
	}
}

// UploadPending reports whether an upload dialog is open.
func (e *Editor) UploadPending() bool {
	return e.batch != nil
}

type uploadListItem struct {
	// Object URLs use the blob: scheme, which html/template would filter.
	URL  template.URL
	Name string
	Size string
}

func (e *Editor) renderUploadList(items []UploadItem) (string, error) {
	data := struct {
		ID    int
		Items []uploadListItem
	}{ID: e.id}
	for _, it := range items {
		data.Items = append(data.Items, uploadListItem{
			URL:  template.URL(it.TemporaryURL),
			Name: it.File.Name,
			Size: humanize.Bytes(uint64(it.File.Size())),
		})
	}

	var buf strings.Builder
	if err := uploadTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Editor) logUpload(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrNotImage), errors.Is(err, ErrNoUploadCallback):
		editorLogger.Debug().Err(err).Int("editor", e.id).Msg("Upload refused")
	default:
		editorLogger.Error().Err(err).Int("editor", e.id).Msg("Upload failed to start")
	}
}
