// Package cache provides the per-run name cache behind directory lookups.
// One cache instance lives for one export run and is never invalidated.
package cache

import "sync"

// Names maps an identifier to the display name it resolved to. Failed
// resolutions are cached too, with the identifier standing in for the
// name, so a key triggers at most one remote lookup per run.
type Names struct {
	mu    sync.Mutex
	items map[string]string
}

func NewNames() *Names {
	return &Names{items: make(map[string]string)}
}

// Resolve returns the cached name for key, or runs fn once and caches its
// result. On fn error the key itself is cached and returned as the
// fallback display value. An empty key resolves to "" without calling fn.
func (c *Names) Resolve(key string, fn func() (string, error)) string {
	if key == "" {
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.items[key]; ok {
		return v
	}

	name, err := fn()
	if err != nil || name == "" {
		name = key
	}
	c.items[key] = name
	return name
}

// Len reports how many keys have been resolved so far.
func (c *Names) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
