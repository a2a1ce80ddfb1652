package dom

import "strings"

type Event struct {
	Type string

	// DataTransfer is set for paste, drop and drag events.
	DataTransfer *DataTransfer

	defaultPrevented bool
}

func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

func (ev *Event) PreventDefault() {
	ev.defaultPrevented = true
}

func (ev *Event) DefaultPrevented() bool {
	return ev.defaultPrevented
}

type File struct {
	Name string
	Type string
	Data []byte
}

func (f *File) Size() int64 {
	return int64(len(f.Data))
}

type TransferItem struct {
	Kind string
	Type string
	file *File
}

// GetAsFile returns nil unless the item is of kind "file".
func (it TransferItem) GetAsFile() *File {
	if it.Kind != "file" {
		return nil
	}
	return it.file
}

type DataTransfer struct {
	Items []TransferItem
	Files []*File
}

// NewFileTransfer builds a transfer carrying each file as both an item and a file entry.
func NewFileTransfer(files ...*File) *DataTransfer {
	dt := &DataTransfer{}
	for _, f := range files {
		dt.AddFile(f)
	}
	return dt
}

func (dt *DataTransfer) AddFile(f *File) {
	dt.Items = append(dt.Items, TransferItem{Kind: "file", Type: f.Type, file: f})
	dt.Files = append(dt.Files, f)
}

func (dt *DataTransfer) AddString(mime string) {
	dt.Items = append(dt.Items, TransferItem{Kind: "string", Type: mime})
}

// AddEventListener registers fn for each space separated event type and
// returns a function that removes every registration it made.
func (e *Element) AddEventListener(types string, fn func(*Event)) func() {
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	e.nextID++
	id := e.nextID
	names := strings.Fields(types)
	for _, t := range names {
		e.listeners[t] = append(e.listeners[t], &listener{id: id, fn: fn})
	}
	return func() {
		for _, t := range names {
			ls := e.listeners[t]
			for i, l := range ls {
				if l.id == id {
					e.listeners[t] = append(ls[:i:i], ls[i+1:]...)
					break
				}
			}
		}
	}
}

// Dispatch runs listeners registered for ev.Type and reports whether the
// default action is still allowed.
func (e *Element) Dispatch(ev *Event) bool {
	for _, l := range append([]*listener(nil), e.listeners[ev.Type]...) {
		l.fn(ev)
	}
	return !ev.defaultPrevented
}

func (e *Element) ListenerCount(typ string) int {
	return len(e.listeners[typ])
}
