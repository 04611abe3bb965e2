package drive

import (
	"sync"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// FolderCache memoises resolved folders by name. Concurrent writers for the
// same name resolve to the same folder, so the last write wins.
type FolderCache struct {
	mu      sync.RWMutex
	folders map[string]domain.FolderInfo
}

// NewFolderCache creates an empty cache.
func NewFolderCache() *FolderCache {
	return &FolderCache{folders: make(map[string]domain.FolderInfo)}
}

// Get returns the cached folder for name.
func (c *FolderCache) Get(name string) (domain.FolderInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.folders[name]
	return info, ok
}

// Put stores the folder for name.
func (c *FolderCache) Put(name string, info domain.FolderInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.folders[name] = info
}

// Invalidate empties the cache.
func (c *FolderCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.folders = make(map[string]domain.FolderInfo)
}
