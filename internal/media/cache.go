package media

import "sync"

// Cache maps asset IDs to playable handles. It is the only resource shared
// between preview and export: populated by the Loader, read-only from the
// renderer's perspective. A miss means the asset is not decoded yet, which
// the renderer treats as "skip this frame", never as an error.
type Cache struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

// NewCache creates an empty handle cache.
func NewCache() *Cache {
	return &Cache{handles: make(map[string]Handle)}
}

// Lookup resolves the handle for an asset ID.
func (c *Cache) Lookup(id string) (Handle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handles[id]
	return h, ok
}

// Put stores a handle. Only the asset-loading side writes.
func (c *Cache) Put(id string, h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles[id] = h
}

// Remove drops the handle for a removed asset.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handles, id)
}

// Len returns the number of resolved handles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}
