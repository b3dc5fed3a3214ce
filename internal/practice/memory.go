package practice

import (
	"context"
	"sync"
)

// MemoryCatalog is an in-memory Catalog. It is safe for concurrent use.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items []Item
}

var (
	_ Catalog = (*MemoryCatalog)(nil)
	_ Lookup  = (*MemoryCatalog)(nil)
)

// NewMemoryCatalog creates a catalog holding a copy of items.
func NewMemoryCatalog(items ...Item) *MemoryCatalog {
	return &MemoryCatalog{items: append([]Item(nil), items...)}
}

func (c *MemoryCatalog) FetchByDifficulty(ctx context.Context, d Difficulty) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FilterByDifficulty(c.items, d), nil
}

func (c *MemoryCatalog) FetchAll(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.items...), nil
}

func (c *MemoryCatalog) Get(ctx context.Context, id string) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			found := it
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Add appends items to the catalog.
func (c *MemoryCatalog) Add(items ...Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, items...)
}
