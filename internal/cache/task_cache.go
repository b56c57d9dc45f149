// Package cache holds decoded task lists between requests.
package cache

import (
	"slices"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/roksva123/go-planning-backend/internal/model"
)

const (
	DefaultTTL = 5 * time.Minute

	unassignedKey = "unassigned"
)

// TaskCache stores task lists per window plus the unassigned list. Entries
// expire a fixed TTL after they were written; reads do not extend them.
//
// Every InvalidateAll bumps a generation counter. Fill and FillUnassigned only
// store when the generation they were given is still current, so a fetch that
// started before a write cannot repopulate the cache with pre-write data.
type TaskCache struct {
	mu         sync.Mutex
	gen        uint64
	windows    *gocache.Cache
	unassigned *gocache.Cache
}

func NewTaskCache(ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TaskCache{
		windows:    gocache.New(ttl, 2*ttl),
		unassigned: gocache.New(ttl, 2*ttl),
	}
}

// Generation returns the current invalidation generation.
func (c *TaskCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *TaskCache) Get(w model.Window) ([]model.Task, bool) {
	return lookup(c.windows, w.Key())
}

// Put stores tasks for w unconditionally.
func (c *TaskCache) Put(w model.Window, tasks []model.Task) {
	c.windows.SetDefault(w.Key(), slices.Clone(tasks))
}

// Fill stores tasks for w if no invalidation happened since gen was read.
func (c *TaskCache) Fill(gen uint64, w model.Window, tasks []model.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.windows.SetDefault(w.Key(), slices.Clone(tasks))
	return true
}

func (c *TaskCache) GetUnassigned() ([]model.Task, bool) {
	return lookup(c.unassigned, unassignedKey)
}

func (c *TaskCache) PutUnassigned(tasks []model.Task) {
	c.unassigned.SetDefault(unassignedKey, slices.Clone(tasks))
}

func (c *TaskCache) FillUnassigned(gen uint64, tasks []model.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.unassigned.SetDefault(unassignedKey, slices.Clone(tasks))
	return true
}

// InvalidateAll drops every window and the unassigned list.
func (c *TaskCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.windows.Flush()
	c.unassigned.Flush()
}

func lookup(store *gocache.Cache, key string) ([]model.Task, bool) {
	v, ok := store.Get(key)
	if !ok {
		return nil, false
	}
	tasks, ok := v.([]model.Task)
	if !ok {
		return nil, false
	}
	return slices.Clone(tasks), true
}
