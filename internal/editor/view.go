package editor

import (
	"strconv"

	"github.com/debemdeboas/mdwidget/internal/ui"
)

// ToggleFullscreen enters or leaves fullscreen. Entering shows the preview if
// it was shown when fullscreen was last left.
func (e *Editor) ToggleFullscreen() {
	e.fullscreen = !e.fullscreen
	root := e.host.Document.Root

	if e.fullscreen {
		e.container.AddClass(FullscreenClass)
		e.container.SetStyle("z-index", strconv.Itoa(ui.ZIndex()))
		root.SetStyle("overflow", "hidden")

		e.savedWidth = e.wrapper.Style("width")
		e.savedHeight = e.wrapper.Style("height")
		e.wrapper.SetStyle("width", "")
		e.wrapper.SetStyle("height", "auto")

		e.setPreview(e.lastPreview)
	} else {
		e.lastPreview = !e.noPreview
		e.noPreview = true

		e.container.RemoveClass(FullscreenClass, NoPreviewClass)
		e.container.SetStyle("z-index", "")
		root.SetStyle("overflow", "")

		e.wrapper.SetStyle("width", e.savedWidth)
		e.wrapper.SetStyle("height", e.savedHeight)
	}

	e.surface.Refresh()
	e.fullscreenListeners.emit(e.fullscreen)
}

// TogglePreview shows or hides the preview pane. It does nothing outside
// fullscreen.
func (e *Editor) TogglePreview() {
	if !e.fullscreen {
		return
	}
	e.setPreview(e.noPreview)
	e.surface.Refresh()
}

func (e *Editor) setPreview(visible bool) {
	e.noPreview = !visible
	if e.noPreview {
		e.container.AddClass(NoPreviewClass)
		return
	}
	e.container.RemoveClass(NoPreviewClass)
	e.RenderNow()
}
