package editor

type listeners[T any] struct {
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	l.next++
	id := l.next
	l.fns[id] = fn
	return func() { delete(l.fns, id) }
}

func (l *listeners[T]) emit(v T) {
	for id := 1; id <= l.next; id++ {
		if fn, ok := l.fns[id]; ok {
			fn(v)
		}
	}
}

// OnChange subscribes to content changes. The returned function unsubscribes.
func (e *Editor) OnChange(fn func(content string)) func() {
	return e.changeListeners.add(fn)
}

// OnFullscreen subscribes to fullscreen transitions.
func (e *Editor) OnFullscreen(fn func(fullscreen bool)) func() {
	return e.fullscreenListeners.add(fn)
}

// OnRender subscribes to preview renders.
func (e *Editor) OnRender(fn func(html string)) func() {
	return e.renderListeners.add(fn)
}
