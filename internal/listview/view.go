// Package listview implements the state machine every paginated CRUD table
// follows:
//
//	loading  -> ready | error
//	ready    -> mutating -> ready | error
//
// A View belongs to one session and one entity type. Requests from the same
// browser may interleave, so a View serialises its own state but never holds
// its lock across a backend call. A fetch result is committed only if its
// key is still the current key when it returns.
package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aanand-mishra/lingo-admin/internal/pagination"
	"github.com/aanand-mishra/lingo-admin/internal/types"
)

// State is the phase of a list view.
type State int

const (
	Loading State = iota
	Ready
	Mutating
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Mutating:
		return "mutating"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrBusy is returned when a mutation is submitted while another one on the
// same view is still in flight.
var ErrBusy = errors.New("listview: another change is still in progress")

// Fetcher loads one page of an entity list.
type Fetcher[T any] func(ctx context.Context, page, limit int) (types.Page[T], error)

// Snapshot is what a caller renders.
type Snapshot[T any] struct {
	State State         `json:"state"`
	Key   Key           `json:"key"`
	Data  types.Page[T] `json:"data"`
	Err   error         `json:"-"`

	// Stale is set when the result belongs to a key that was superseded
	// while it was in flight. It was not committed to the view.
	Stale bool `json:"stale,omitempty"`
}

// View is the list state of one entity type for one session.
type View[T any] struct {
	entity string
	fetch  Fetcher[T]
	idOf   func(T) string
	cache  *Cache

	mu       sync.Mutex
	state    State
	key      Key
	data     types.Page[T]
	err      error
	mutating bool
}

// New returns a view in the loading state. idOf extracts a record's id for
// Find and Delete.
func New[T any](entity string, cache *Cache, fetch Fetcher[T], idOf func(T) string) *View[T] {
	if cache == nil {
		cache = NewCache()
	}
	return &View[T]{
		entity: entity,
		fetch:  fetch,
		idOf:   idOf,
		cache:  cache,
		state:  Loading,
		data:   types.Page[T]{Items: make([]T, 0)},
	}
}

// Snapshot returns the committed state without fetching.
func (v *View[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{State: v.state, Key: v.key, Data: v.data, Err: v.err}
}

// Load makes {entity, page, limit} the current key and fetches it. Data
// from the previous key stays in the view until the new page arrives.
func (v *View[T]) Load(ctx context.Context, page, limit int) Snapshot[T] {
	k := Key{Entity: v.entity, Page: page, Limit: limit}

	v.mu.Lock()
	v.key = k
	if !v.mutating {
		v.state = Loading
	}
	v.mu.Unlock()

	return v.settle(ctx, k)
}

// settle fetches k. A page past the end (it came back empty although
// earlier pages have rows) is replaced by the last page that has rows, so
// the range label and the pager always describe the rows shown.
func (v *View[T]) settle(ctx context.Context, k Key) Snapshot[T] {
	snap := v.fetchKey(ctx, k)
	if snap.Err != nil || snap.Stale || len(snap.Data.Items) > 0 || k.Page <= 1 {
		return snap
	}

	last := max(pagination.TotalPages(snap.Data.Total, k.Limit), 1)
	if last >= k.Page {
		return snap
	}

	next := Key{Entity: k.Entity, Page: last, Limit: k.Limit}
	v.mu.Lock()
	if v.key != k {
		v.mu.Unlock()
		return snap
	}
	v.key = next
	v.mu.Unlock()

	return v.fetchKey(ctx, next)
}

func (v *View[T]) fetchKey(ctx context.Context, k Key) Snapshot[T] {
	gen := v.cache.Generation(k.Entity)
	data, err := v.fetch(ctx, k.Page, k.Limit)
	if err == nil && data.Items == nil {
		data.Items = make([]T, 0)
	}
	if err == nil {
		v.cache.Put(k, gen, data)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.key != k {
		// Superseded: hand the result to the caller that asked for it, but
		// leave the view alone.
		snap := Snapshot[T]{State: Ready, Key: k, Data: data, Err: err, Stale: true}
		if err != nil {
			snap.State = Error
		}
		return snap
	}

	if v.mutating {
		// A mutation owns the state until it finishes.
		if err == nil {
			v.data = data
		}
		snap := v.snapshotLocked()
		snap.Err = err
		return snap
	}

	if err != nil {
		v.state = Error
		v.err = err
		return v.snapshotLocked()
	}

	v.state = Ready
	v.err = nil
	v.data = data
	return v.snapshotLocked()
}

// begin marks the view as mutating or reports ErrBusy.
func (v *View[T]) begin() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mutating {
		return ErrBusy
	}
	v.mutating = true
	v.state = Mutating
	return nil
}

// fail ends a mutation without touching data.
func (v *View[T]) fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mutating = false
	v.state = Error
	v.err = err
}

// succeed ends a mutation, invalidates the entity and returns the key to
// refetch.
func (v *View[T]) succeed(next func(cur Key, data types.Page[T]) Key) Key {
	v.mu.Lock()
	v.mutating = false
	v.state = Loading
	v.err = nil
	if next != nil {
		v.key = next(v.key, v.data)
	}
	k := v.key
	v.mu.Unlock()

	v.cache.Invalidate(v.entity)
	return k
}

// Mutate runs one create or update. On failure the view moves to the error
// state and its data is left as it was. On success the entity's cached
// pages are dropped and the current key is refetched.
func (v *View[T]) Mutate(ctx context.Context, fn func(ctx context.Context) error) (Snapshot[T], error) {
	if err := v.begin(); err != nil {
		return v.Snapshot(), err
	}

	if err := fn(ctx); err != nil {
		v.fail(err)
		return v.Snapshot(), err
	}

	k := v.succeed(nil)
	if k.Limit <= 0 {
		// Never loaded: the next Load fetches fresh data anyway.
		return v.Snapshot(), nil
	}
	return v.fetchKey(ctx, k), nil
}

// Delete removes id through fn. page and limit are what the browser was
// looking at; they win over the view's own key, which may be missing when
// the session's views were dropped. When the removed record was the only
// row of a page past the first, the view steps back one page. A page that
// comes back empty is moved to the last page with rows.
func (v *View[T]) Delete(ctx context.Context, page, limit int, id string, fn func(ctx context.Context, id string) error) (Snapshot[T], error) {
	if err := v.begin(); err != nil {
		return v.Snapshot(), err
	}

	if err := fn(ctx, id); err != nil {
		v.fail(err)
		return v.Snapshot(), err
	}

	k := v.succeed(func(cur Key, data types.Page[T]) Key {
		want := Key{Entity: v.entity, Page: page, Limit: limit}
		if want.Limit <= 0 || want.Page < 1 {
			want = cur
		}
		if cur == want && want.Page > 1 && len(data.Items) == 1 && v.idOf(data.Items[0]) == id {
			want.Page--
		}
		return want
	})
	if k.Limit <= 0 {
		return v.Snapshot(), nil
	}
	return v.settle(ctx, k), nil
}

// Find returns a previously fetched record. The current page is searched
// first, then any other cached page of the same entity.
func (v *View[T]) Find(id string) (T, bool) {
	v.mu.Lock()
	items := v.data.Items
	v.mu.Unlock()

	for _, it := range items {
		if v.idOf(it) == id {
			return it, true
		}
	}

	keys := v.cache.Keys(v.entity)
	for i := len(keys) - 1; i >= 0; i-- {
		raw, ok := v.cache.Get(keys[i])
		if !ok {
			continue
		}
		page, ok := raw.(types.Page[T])
		if !ok {
			continue
		}
		for _, it := range page.Items {
			if v.idOf(it) == id {
				return it, true
			}
		}
	}

	var zero T
	return zero, false
}
