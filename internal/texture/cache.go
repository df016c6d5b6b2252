package texture

import (
	"image"
	"os"
	"sync"
)

// Resolver resolves a texture name to a decoded image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache. Names that are existing files
// load directly; anything else goes through the index.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA // nil records a failed load
	index *Index
}

// NewCache creates a texture cache backed by index, which may be nil.
func NewCache(index *Index) *Cache {
	if index == nil {
		index = &Index{entries: map[string]string{}}
	}
	return &Cache{
		items: make(map[string]*image.NRGBA),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found or
// not decodable.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	if texName == "" {
		return nil
	}
	path := texName
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		var ok bool
		if path, ok = c.index.ResolvePath(texName); !ok {
			return nil
		}
	}

	// Fast path: read lock
	c.mu.RLock()
	if img, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return img
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, _ := LoadTexture(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, exists := c.items[path]; exists {
		return cached
	}
	c.items[path] = img
	return img
}
