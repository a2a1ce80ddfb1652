package editor

import "sync"

// Registry hands out editor identities. Identities increase from zero and are
// never reused, even after the editor holding one is destroyed.
type Registry struct {
	mu   sync.Mutex
	next int
	live map[int]*Editor
}

func NewRegistry() *Registry {
	return &Registry{live: make(map[int]*Editor)}
}

// DefaultRegistry is used by editors whose host names no registry.
var DefaultRegistry = NewRegistry()

func (r *Registry) register(e *Editor) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.live[id] = e
	return id
}

func (r *Registry) unregister(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
}

func (r *Registry) Get(id int) (*Editor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live[id]
	return e, ok
}

// Len reports the number of editors not yet destroyed.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
