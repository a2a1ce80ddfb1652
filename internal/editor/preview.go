package editor

func (e *Editor) schedulePreview() {
	if e.previewTimer != nil {
		e.previewTimer.Stop()
	}
	e.previewTimer = e.host.Scheduler.AfterFunc(e.opts.PreviewDelay, func() {
		e.previewTimer = nil
		if !e.destroyed && e.PreviewVisible() {
			e.RenderNow()
		}
	})
}

// RenderNow renders the whole content into the preview pane.
func (e *Editor) RenderNow() {
	html := e.host.Renderer.Render(e.surface.Value())
	e.preview.SetInnerHTML(html)
	e.renderListeners.emit(html)
}

// syncScroll keeps the preview scrolled to the same proportion as the edit
// area.
func (e *Editor) syncScroll() {
	src, dst := e.scroller, e.preview
	srcRange := src.ScrollHeight - src.ClientHeight
	if srcRange <= 0 {
		dst.ScrollTop = 0
		return
	}
	dst.ScrollTop = (dst.ScrollHeight - dst.ClientHeight) * src.ScrollTop / srcRange
}
