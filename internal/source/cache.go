package source

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// Cache keeps decoded file resources keyed by path, so reloading the same
// file for a fresh session skips disk I/O and decoding.
//
// Cached resources remain in memory until Evict or Clear is called.
type Cache struct {
	mu        sync.RWMutex
	resources map[string]*Resource
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		resources: make(map[string]*Resource),
	}
}

// Load returns the cached resource for path or reads and decodes the file.
//
// The file's leading bytes must sniff as an image/* type; anything else is
// rejected with ErrUnsupportedType before decoding. The exact path string is
// the cache key, so relative and absolute spellings are separate entries.
func (c *Cache) Load(path string) (*Resource, error) {
	c.mu.RLock()
	if res, ok := c.resources[path]; ok {
		c.mu.RUnlock()
		return res, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	if err := CheckContentType(http.DetectContentType(data)); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	res, err := Decode(data, path, KindFile)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.resources[path] = res
	c.mu.Unlock()

	return res, nil
}

// Len returns the number of cached resources.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resources)
}

// Evict removes path from the cache. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.resources, path)
	c.mu.Unlock()
}

// Clear removes every cached resource.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.resources = make(map[string]*Resource)
	c.mu.Unlock()
}
