package preview

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Handle is one cached preview document backed by a temp file. The file is
// removed exactly once when the handle is released, however the eviction was
// triggered.
type Handle struct {
	PlanoID   string
	Path      string
	PageCount int

	releaseOnce sync.Once
	logger      *slog.Logger
}

// Release removes the backing file. Safe to call more than once; only the
// first call does anything.
func (h *Handle) Release() {
	h.releaseOnce.Do(func() {
		if err := os.Remove(h.Path); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("failed to remove preview file",
				slog.String("plano_id", h.PlanoID),
				slog.String("path", h.Path),
				slog.String("error", err.Error()),
			)
		}
	})
}

// Cache holds preview handles keyed by plano ID. Storing a handle for a key
// that already has one releases the old handle; deleting or clearing releases
// the evicted handles.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Handle
	dir     string
	logger  *slog.Logger
}

// NewCache creates a preview cache writing temp files under dir. An empty dir
// uses the system temp directory.
func NewCache(dir string, logger *slog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]*Handle),
		dir:     dir,
		logger:  logger,
	}
}

// Get returns the cached handle for a plano, if present.
func (c *Cache) Get(planoID string) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.entries[planoID]
	return h, ok
}

// Put writes the preview content to a temp file and caches its handle. A
// previous handle under the same key is released.
func (c *Cache) Put(planoID string, content []byte, pageCount int) (*Handle, error) {
	f, err := os.CreateTemp(c.dir, "plano-preview-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create preview temp file: %w", err)
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("write preview temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("close preview temp file: %w", err)
	}

	h := &Handle{
		PlanoID:   planoID,
		Path:      f.Name(),
		PageCount: pageCount,
		logger:    c.logger,
	}

	c.mu.Lock()
	old := c.entries[planoID]
	c.entries[planoID] = h
	c.mu.Unlock()

	if old != nil {
		old.Release()
	}
	return h, nil
}

// Evict removes and releases the handle for a plano. Evicting an absent key
// is a no-op.
func (c *Cache) Evict(planoID string) {
	c.mu.Lock()
	h := c.entries[planoID]
	delete(c.entries, planoID)
	c.mu.Unlock()

	if h != nil {
		h.Release()
	}
}

// Clear releases every handle and empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*Handle)
	c.mu.Unlock()

	for _, h := range entries {
		h.Release()
	}
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
