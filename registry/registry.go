// Package registry provides a name keyed registry with an explicit lifecycle.
//
// A Registry is created by the service that owns it, injected into the
// collaborators that need it and torn down with Close. Every sequence that
// checks membership and then writes runs inside a single critical section,
// so concurrent registrations of the same name never both succeed.
package registry

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps names to values.
//
// Multiple goroutines may invoke methods on a Registry simultaneously.
type Registry[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	closed  bool
}

// New creates an empty registry.
func New[V any]() *Registry[V] {
	return &Registry[V]{entries: make(map[string]V)}
}

// Register adds value under name.
// It fails with an *AlreadyRegisteredError if the name is taken.
func (r *Registry[V]) Register(name string, value V) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidArgument
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if _, ok := r.entries[name]; ok {
		return &AlreadyRegisteredError{Name: name}
	}
	r.entries[name] = value
	return nil
}

// Lookup returns the value registered under name.
func (r *Registry[V]) Lookup(name string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[name]
	return value, ok
}

// GetOrAdd returns the value registered under name, calling resolve and
// registering its result when the name is unknown. resolve runs with the
// registry locked and must not call back into it.
func (r *Registry[V]) GetOrAdd(name string, resolve func() (V, error)) (V, error) {
	var zero V

	if strings.TrimSpace(name) == "" || resolve == nil {
		return zero, ErrInvalidArgument
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if value, ok := r.entries[name]; ok {
		return value, nil
	}
	if r.closed {
		return zero, ErrClosed
	}

	value, err := resolve()
	if err != nil {
		return zero, err
	}
	r.entries[name] = value
	return value, nil
}

// Unregister removes name and reports whether it was registered.
func (r *Registry[V]) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

// Len returns the number of registered names.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns the registered names in sorted order.
func (r *Registry[V]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close drops all entries. Later registrations fail with ErrClosed.
func (r *Registry[V]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	clear(r.entries)
	return nil
}
