package listview

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Set is the list state of one session: one view per entity type sharing a
// single cache, so a write through any view can invalidate the others.
type Set struct {
	Cache *Cache

	mu    sync.Mutex
	views map[string]any
}

// Registry keeps a Set per session id. It is bounded; the least recently
// used session loses its list state, which only costs it a refetch.
type Registry struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, *Set]
}

func NewRegistry(size int) (*Registry, error) {
	sessions, err := lru.New[string, *Set](size)
	if err != nil {
		return nil, fmt.Errorf("listview.NewRegistry: %w", err)
	}
	return &Registry{sessions: sessions}, nil
}

// Session returns the Set for sessionID, creating it on first use.
func (r *Registry) Session(sessionID string) *Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions.Get(sessionID); ok {
		return s
	}
	s := &Set{Cache: NewCache(), views: make(map[string]any)}
	r.sessions.Add(sessionID, s)
	return s
}

// Invalidate drops a session's cached pages of entity.
func (r *Registry) Invalidate(sessionID, entity string) {
	if s, ok := r.sessions.Peek(sessionID); ok {
		s.Cache.Invalidate(entity)
	}
}

// Forget discards everything held for sessionID. Called at logout.
func (r *Registry) Forget(sessionID string) {
	r.sessions.Remove(sessionID)
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}

// ViewFor returns the session's view of entity, creating it with fetch and
// idOf on first use.
func ViewFor[T any](r *Registry, sessionID, entity string, fetch Fetcher[T], idOf func(T) string) *View[T] {
	s := r.Session(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.views[entity].(*View[T]); ok {
		return existing
	}
	v := New(entity, s.Cache, fetch, idOf)
	s.views[entity] = v
	return v
}
