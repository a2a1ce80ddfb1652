// Package dom is a small element model used by the editor widget: classes,
// inline styles, ordered attributes, scroll metrics and event listeners.
package dom

import (
	"html"
	"slices"
	"strings"
)

type Attr struct {
	Name  string
	Value string
}

type Element struct {
	TagName string
	ID      string

	attrs   []Attr
	classes []string
	style   []Attr

	// Value holds the text of form controls such as textarea.
	Value string

	innerHTML string
	children  []*Element
	parent    *Element

	ScrollTop    float64
	ScrollHeight float64
	ClientHeight float64

	listeners map[string][]*listener
	nextID    int
}

type listener struct {
	id int
	fn func(*Event)
}

func NewElement(tag string) *Element {
	return &Element{TagName: strings.ToUpper(tag)}
}

// SetAttribute sets or replaces an attribute, keeping first-set order.
func (e *Element) SetAttribute(name, value string) {
	switch name {
	case "id":
		e.ID = value
	case "class":
		e.classes = strings.Fields(value)
	}
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
}

func (e *Element) Attribute(name string) (string, bool) {
	switch name {
	case "id":
		return e.ID, e.ID != ""
	case "class":
		return e.ClassName(), len(e.classes) > 0
	}
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attributes returns the attribute list in document order.
func (e *Element) Attributes() []Attr {
	out := make([]Attr, 0, len(e.attrs))
	for _, a := range e.attrs {
		switch a.Name {
		case "id":
			a.Value = e.ID
		case "class":
			a.Value = e.ClassName()
		}
		out = append(out, a)
	}
	return out
}

func (e *Element) ClassName() string {
	return strings.Join(e.classes, " ")
}

func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes, name)
}

// AddClass accepts space separated class lists, like classList.add.
func (e *Element) AddClass(names ...string) {
	for _, n := range names {
		for _, c := range strings.Fields(n) {
			if !e.HasClass(c) {
				e.classes = append(e.classes, c)
			}
		}
	}
	e.syncClassAttr()
}

func (e *Element) RemoveClass(names ...string) {
	for _, n := range names {
		for _, c := range strings.Fields(n) {
			e.classes = slices.DeleteFunc(e.classes, func(s string) bool { return s == c })
		}
	}
	e.syncClassAttr()
}

func (e *Element) syncClassAttr() {
	for _, a := range e.attrs {
		if a.Name == "class" {
			return
		}
	}
	if len(e.classes) > 0 {
		e.attrs = append(e.attrs, Attr{Name: "class"})
	}
}

func (e *Element) Style(prop string) string {
	for _, s := range e.style {
		if s.Name == prop {
			return s.Value
		}
	}
	return ""
}

// SetStyle sets an inline style; an empty value removes the property.
func (e *Element) SetStyle(prop, value string) {
	for i, s := range e.style {
		if s.Name == prop {
			if value == "" {
				e.style = slices.Delete(e.style, i, i+1)
			} else {
				e.style[i].Value = value
			}
			return
		}
	}
	if value != "" {
		e.style = append(e.style, Attr{Name: prop, Value: value})
	}
}

// CSSText renders the inline style attribute.
func (e *Element) CSSText() string {
	var b strings.Builder
	for i, s := range e.style {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.Name)
		b.WriteString(": ")
		b.WriteString(s.Value)
		b.WriteByte(';')
	}
	return b.String()
}

func (e *Element) InnerHTML() string {
	return e.innerHTML
}

func (e *Element) SetInnerHTML(html string) {
	e.innerHTML = html
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
}

// SetTextContent replaces the children with text, escaped so that no markup
// in it is ever interpreted.
func (e *Element) SetTextContent(text string) {
	e.SetInnerHTML(html.EscapeString(text))
}

func (e *Element) Parent() *Element {
	return e.parent
}

func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

func (e *Element) AppendChild(child *Element) {
	child.Remove()
	child.parent = e
	e.children = append(e.children, child)
}

// InsertBefore inserts child before ref; a nil or foreign ref appends.
func (e *Element) InsertBefore(child, ref *Element) {
	child.Remove()
	idx := slices.Index(e.children, ref)
	if ref == nil || idx < 0 {
		e.AppendChild(child)
		return
	}
	child.parent = e
	e.children = slices.Insert(e.children, idx, child)
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.parent == nil {
		return
	}
	p := e.parent
	p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == e })
	e.parent = nil
}

// Wrap replaces e in its parent with wrapper and moves e inside it.
func (e *Element) Wrap(wrapper *Element) *Element {
	if p := e.parent; p != nil {
		p.InsertBefore(wrapper, e)
	}
	wrapper.AppendChild(e)
	return wrapper
}

// Find returns the first descendant matching fn in depth-first order.
func (e *Element) Find(fn func(*Element) bool) *Element {
	for _, c := range e.children {
		if fn(c) {
			return c
		}
		if found := c.Find(fn); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant matching fn.
func (e *Element) FindAll(fn func(*Element) bool) []*Element {
	var out []*Element
	for _, c := range e.children {
		if fn(c) {
			out = append(out, c)
		}
		out = append(out, c.FindAll(fn)...)
	}
	return out
}

// Document holds the root html element and the body.
type Document struct {
	Root *Element
	Body *Element
}

func NewDocument() *Document {
	root := NewElement("html")
	body := NewElement("body")
	root.AppendChild(body)
	return &Document{Root: root, Body: body}
}
