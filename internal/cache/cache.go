// Package cache provides a thread-safe generic cache and the rendered preview cache.
package cache

import (
	"html/template"
	"sync"
)

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns a snapshot of the keys in no particular order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

var renderedPreviewCache = NewCache[string, string]()

// GetRenderedPreview looks up preview HTML by content hash and render variant.
func GetRenderedPreview(contentHash, variant string) (string, bool) {
	return renderedPreviewCache.Get(contentHash + ":" + variant)
}

func SetRenderedPreview(contentHash, variant, html string) {
	renderedPreviewCache.Set(contentHash+":"+variant, html)
}

func ClearRenderedPreviewCache() {
	renderedPreviewCache.Clear()
}

var syntaxStyleCache = NewCache[string, template.CSS]()

// GetSyntaxCSS returns the stylesheet generated for a chroma style.
func GetSyntaxCSS(style string) (template.CSS, bool) {
	return syntaxStyleCache.Get(style)
}

func SetSyntaxCSS(style string, css template.CSS) {
	syntaxStyleCache.Set(style, css)
}

var staticHashCache = NewCache[string, string]()

// GetStaticHash returns the ETag recorded for a static asset URL path.
func GetStaticHash(path string) (string, bool) {
	return staticHashCache.Get(path)
}

func SetStaticHash(path, hash string) {
	staticHashCache.Set(path, hash)
}
