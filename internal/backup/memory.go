package backup

import "github.com/debemdeboas/mdwidget/internal/cache"

// MemoryKV keeps values for the lifetime of the process.
type MemoryKV struct {
	items *cache.Cache[string, string]
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: cache.NewCache[string, string]()}
}

func (m *MemoryKV) Get(key string) (string, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.items.Set(key, value)
	return nil
}

func (m *MemoryKV) Keys() []string {
	return m.items.Keys()
}
