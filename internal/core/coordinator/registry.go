package coordinator

import (
	"weak"

	"github.com/colonyops/rowsync/internal/core/registry"
	"github.com/colonyops/rowsync/internal/core/surface"
)

// Registry hands out one Coordinator per owner of type O. Owners do not store
// the coordinator themselves; they ask the registry each time.
//
// The registry never keeps an owner alive. An owner that is its own Output or
// Delegate is referenced weakly by its coordinator, and once the owner is
// collected its entry goes away. Other collaborators and the surface are
// held strongly, so they must not point back at the owner.
type Registry[O any, T any] struct {
	owners *registry.Registry[O, *Coordinator[T]]
	opts   Options
}

// NewRegistry creates a Registry whose coordinators share opts. The Owner
// field is filled in per owner.
func NewRegistry[O any, T any](opts Options) *Registry[O, T] {
	return &Registry[O, T]{
		owners: registry.New[O, *Coordinator[T]](),
		opts:   opts,
	}
}

// For returns owner's coordinator, creating it on first use with the
// surface, output and delegate supplied by the owner. d may be nil. Later
// calls ignore s, out and d.
func (r *Registry[O, T]) For(owner *O, s surface.Surface, out Output[T], d Delegate) *Coordinator[T] {
	return r.owners.Get(owner, func(id string) *Coordinator[T] {
		opts := r.opts
		opts.Owner = id
		return New(s, weakOutput(owner, out), weakDelegate(owner, d), opts)
	})
}

// Lookup returns owner's coordinator if one has been created.
func (r *Registry[O, T]) Lookup(owner *O) (*Coordinator[T], bool) {
	return r.owners.Lookup(owner)
}

// Release forgets owner's coordinator before the owner is collected.
func (r *Registry[O, T]) Release(owner *O) bool {
	return r.owners.Release(owner)
}

// Len returns the number of live coordinators.
func (r *Registry[O, T]) Len() int {
	return r.owners.Len()
}

func isOwner[O any](owner *O, v any) bool {
	p, ok := v.(*O)
	return ok && p == owner
}

func weakOutput[O any, T any](owner *O, out Output[T]) Output[T] {
	if !isOwner(owner, out) {
		return out
	}
	return ownerOutput[O, T]{ref: weak.Make(owner)}
}

func weakDelegate[O any](owner *O, d Delegate) Delegate {
	if d == nil || !isOwner(owner, d) {
		return d
	}
	return ownerDelegate[O]{ref: weak.Make(owner)}
}

// ownerOutput resolves the owner on every call. A collected owner reads as
// empty content.
type ownerOutput[O any, T any] struct {
	ref weak.Pointer[O]
}

func (o ownerOutput[O, T]) get() (Output[T], bool) {
	p := o.ref.Value()
	if p == nil {
		return nil, false
	}
	out, ok := any(p).(Output[T])
	return out, ok
}

func (o ownerOutput[O, T]) NumberOfSections() int {
	if out, ok := o.get(); ok {
		return out.NumberOfSections()
	}
	return 0
}

func (o ownerOutput[O, T]) NumberOfRows(section int) int {
	if out, ok := o.get(); ok {
		return out.NumberOfRows(section)
	}
	return 0
}

func (o ownerOutput[O, T]) Row(path surface.IndexPath) T {
	if out, ok := o.get(); ok {
		return out.Row(path)
	}
	var zero T
	return zero
}

func (o ownerOutput[O, T]) ConfigureCell(cell surface.Cell, path surface.IndexPath) {
	if out, ok := o.get(); ok {
		out.ConfigureCell(cell, path)
	}
}

// ownerDelegate drops events once the owner has been collected.
type ownerDelegate[O any] struct {
	ref weak.Pointer[O]
}

func (o ownerDelegate[O]) get() (Delegate, bool) {
	p := o.ref.Value()
	if p == nil {
		return nil, false
	}
	d, ok := any(p).(Delegate)
	return d, ok
}

func (o ownerDelegate[O]) WillDisplay(cell surface.Cell, path surface.IndexPath) {
	if d, ok := o.get(); ok {
		d.WillDisplay(cell, path)
	}
}

func (o ownerDelegate[O]) DidSelectRow(path surface.IndexPath) {
	if d, ok := o.get(); ok {
		d.DidSelectRow(path)
	}
}

func (o ownerDelegate[O]) DidDeselectRow(path surface.IndexPath) {
	if d, ok := o.get(); ok {
		d.DidDeselectRow(path)
	}
}
