package listview

import (
	"sort"
	"sync"
	"time"
)

// Key identifies one list query. Two requests with equal keys ask for the
// same data.
type Key struct {
	Entity string `json:"entity"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache holds fetched pages by query key. It never patches an entry in
// place; writes go to the backend and the entity's keys are invalidated.
//
// Every Invalidate bumps a per-entity generation. A fetch that started
// before the bump cannot repopulate the cache with what it read.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]entry
	gens    map[string]uint64
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[Key]entry),
		gens:    make(map[string]uint64),
	}
}

// Generation returns the current generation of entity, to be handed back
// to Put once the fetch completes.
func (c *Cache) Generation(entity string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[entity]
}

// Put stores value under k unless entity k.Entity was invalidated after gen
// was read. It reports whether the value was stored.
func (c *Cache) Put(k Key, gen uint64, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[k.Entity] != gen {
		return false
	}
	c.entries[k] = entry{value: value, fetchedAt: time.Now()}
	return true
}

func (c *Cache) Get(k Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	return e.value, ok
}

// Invalidate drops every key of entity.
func (c *Cache) Invalidate(entity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.Entity == entity {
			delete(c.entries, k)
		}
	}
	c.gens[entity]++
}

// Keys lists the cached keys of entity, oldest fetch first.
func (c *Cache) Keys(entity string) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0)
	for k := range c.entries {
		if k.Entity == entity {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].fetchedAt.Before(c.entries[keys[j]].fetchedAt)
	})
	return keys
}
