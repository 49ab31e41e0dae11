// Package hook provides typed reducer registries.
//
// A Reducer holds an ordered list of named transforms. Reduce threads a
// value through every transform in registration order, so collaborators can
// adjust a value before the caller commits to it.
package hook

import "sync"

// Standard reducer seams.
const (
	TargetLoad                 = "target-load"
	TargetEnvironmentVariables = "target-environment-variables"
	TargetCopyFiles            = "target-copy-files"
	ProjectFilesToCopy         = "project-files-to-copy"
)

// Func transforms a value. The context carries event details and must not
// be modified.
type Func[T, C any] func(value T, ctx C) T

type entry[T, C any] struct {
	name string
	fn   Func[T, C]
}

// Reducer is an ordered registry of transforms for one seam.
type Reducer[T, C any] struct {
	event string

	mu      sync.RWMutex
	entries []entry[T, C]
}

// NewReducer creates an empty reducer for the named seam.
func NewReducer[T, C any](event string) *Reducer[T, C] {
	return &Reducer[T, C]{event: event}
}

// Event returns the seam name.
func (r *Reducer[T, C]) Event() string {
	return r.event
}

// Register adds a transform. Registering an existing name replaces the
// transform in place, keeping its original position.
func (r *Reducer[T, C]) Register(name string, fn Func[T, C]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.name == name {
			r.entries[i].fn = fn
			return
		}
	}
	r.entries = append(r.entries, entry[T, C]{name: name, fn: fn})
}

// Unregister removes a transform by name.
func (r *Reducer[T, C]) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered transforms.
func (r *Reducer[T, C]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reduce runs value through every transform in registration order.
func (r *Reducer[T, C]) Reduce(value T, ctx C) T {
	if r == nil {
		return value
	}

	r.mu.RLock()
	entries := make([]entry[T, C], len(r.entries))
	copy(entries, r.entries)
	r.mu.RUnlock()

	for _, e := range entries {
		value = e.fn(value, ctx)
	}
	return value
}
