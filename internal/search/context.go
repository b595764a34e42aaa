// Package search holds the per-session search state shared between the
// search input and the fetch hooks.
package search

import "sync"

// Snapshot is a point-in-time copy of a Context.
type Snapshot struct {
	SearchTerm    string `json:"searchTerm"`
	SearchLoading bool   `json:"searchLoading"`
}

// Context is the shared search term and global "search loading" flag.
// Hooks only ever write the loading flag; last write wins.
type Context struct {
	mu        sync.RWMutex
	term      string
	loading   bool
	observers []func(Snapshot)
}

// NewContext returns an empty search context.
func NewContext() *Context {
	return &Context{}
}

func (c *Context) SearchTerm() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.term
}

func (c *Context) SetSearchTerm(term string) {
	c.mu.Lock()
	c.term = term
	snap, observers := c.snapshotLocked()
	c.mu.Unlock()
	notify(observers, snap)
}

func (c *Context) SearchLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Context) SetSearchLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	snap, observers := c.snapshotLocked()
	c.mu.Unlock()
	notify(observers, snap)
}

// Snapshot returns the current term and loading flag.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{SearchTerm: c.term, SearchLoading: c.loading}
}

// Subscribe registers fn to be called after every change. Observers run
// synchronously on the writer's goroutine, outside the lock.
func (c *Context) Subscribe(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

func (c *Context) snapshotLocked() (Snapshot, []func(Snapshot)) {
	observers := make([]func(Snapshot), len(c.observers))
	copy(observers, c.observers)
	return Snapshot{SearchTerm: c.term, SearchLoading: c.loading}, observers
}

func notify(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}
