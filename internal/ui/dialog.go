package ui

import "github.com/debemdeboas/mdwidget/internal/dom"

// Dialog is a modal whose element lives in the document body while open.
type Dialog struct {
	ID int

	layer     *Layer
	el        *dom.Element
	titleEl   *dom.Element
	title     string
	destroyed bool
}

// NewDialog builds a dialog around contentHTML. The title is plain text. The
// dialog is not shown until Open.
func (l *Layer) NewDialog(title, contentHTML string) *Dialog {
	d := &Dialog{
		ID:      l.id(),
		layer:   l,
		el:      dom.NewElement("div"),
		titleEl: dom.NewElement("div"),
		title:   title,
	}
	d.el.AddClass(DialogClass)
	d.el.SetAttribute("id", DialogClass+"-"+itoa(d.ID))
	d.titleEl.AddClass(dialogTitleClass)
	d.titleEl.SetTextContent(title)

	content := dom.NewElement("div")
	content.AddClass(dialogContentClass)
	content.SetInnerHTML(contentHTML)

	d.el.AppendChild(d.titleEl)
	d.el.AppendChild(content)
	return d
}

// Open appends the dialog to the body above everything shown so far.
func (d *Dialog) Open() *Dialog {
	if d.destroyed || d.el.Parent() != nil {
		return d
	}
	d.el.SetStyle("z-index", itoa(ZIndex()))
	d.layer.doc.Body.AppendChild(d.el)
	d.layer.dialogs = append(d.layer.dialogs, d)
	uiLogger.Debug().Int("dialog", d.ID).Str("title", d.title).Msg("Dialog opened")
	d.layer.changed()
	return d
}

func (d *Dialog) Title() string { return d.title }

func (d *Dialog) SetTitle(title string) {
	if d.destroyed {
		return
	}
	d.title = title
	d.titleEl.SetTextContent(title)
	d.layer.changed()
}

func (d *Dialog) Element() *dom.Element { return d.el }

func (d *Dialog) ContentHTML() string {
	for _, c := range d.el.Children() {
		if c.HasClass(dialogContentClass) {
			return c.InnerHTML()
		}
	}
	return ""
}

func (d *Dialog) Destroyed() bool { return d.destroyed }

// Destroy removes the dialog from the document and then runs then, if given.
// Later calls do nothing.
func (d *Dialog) Destroy(then func()) {
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.el.Remove()
	for i, open := range d.layer.dialogs {
		if open == d {
			d.layer.dialogs = append(d.layer.dialogs[:i:i], d.layer.dialogs[i+1:]...)
			break
		}
	}
	uiLogger.Debug().Int("dialog", d.ID).Msg("Dialog destroyed")
	d.layer.changed()
	if then != nil {
		then()
	}
}
