// Package registry associates one value with each owner without keeping the
// owner alive.
//
// Entries are keyed by a weak pointer to the owner. An entry is removed when
// the owner calls Release, or after the owner has been garbage collected.
// Values must not hold the owner strongly, or the owner is never collected.
package registry

import (
	"runtime"
	"sync"
	"weak"

	"github.com/colonyops/rowsync/pkg/randid"
)

// IDLength is the length of generated owner IDs.
const IDLength = 8

type entry[V any] struct {
	id      string
	value   V
	cleanup runtime.Cleanup
}

// Registry is a thread-safe owner -> value association.
type Registry[O any, V any] struct {
	mu      sync.Mutex
	entries map[weak.Pointer[O]]*entry[V]
}

// New creates an empty registry.
func New[O any, V any]() *Registry[O, V] {
	return &Registry[O, V]{
		entries: make(map[weak.Pointer[O]]*entry[V]),
	}
}

// Get returns the value for owner, calling create exactly once per owner to
// build it. create receives a fresh owner ID for logging. It runs under the
// registry lock and must not call back into the registry.
func (r *Registry[O, V]) Get(owner *O, create func(id string) V) V {
	key := weak.Make(owner)

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[key]; ok {
		return e.value
	}

	e := &entry[V]{id: randid.Generate(IDLength)}
	e.value = create(e.id)
	e.cleanup = runtime.AddCleanup(owner, r.drop, key)
	r.entries[key] = e
	return e.value
}

// Lookup returns the value for owner without creating one.
func (r *Registry[O, V]) Lookup(owner *O) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[weak.Make(owner)]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// ID returns the owner ID assigned when the entry was created.
func (r *Registry[O, V]) ID(owner *O) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[weak.Make(owner)]; ok {
		return e.id, true
	}
	return "", false
}

// Release removes the entry for owner. It reports whether there was one.
func (r *Registry[O, V]) Release(owner *O) bool {
	key := weak.Make(owner)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return false
	}
	e.cleanup.Stop()
	delete(r.entries, key)
	return true
}

// Len returns the number of live entries.
func (r *Registry[O, V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry[O, V]) drop(key weak.Pointer[O]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}
