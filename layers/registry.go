// Package layers provides the process-scoped registry of enabled knowledge
// layers. Layers partition stored facts and rules into independently
// toggleable sets (e.g. "foundation", "user", "plan"); only rules in an
// enabled layer participate in validation.
package layers

import (
	"sort"
	"sync"
)

// Registry holds the set of currently enabled layer names. The zero value
// is not usable; construct with NewRegistry. All methods are idempotent.
//
// The registry is shared mutable state guarded by a mutex: concurrent
// callers mutating it while a validation is in flight may observe either
// the old or the new active set (last-writer-visible, no snapshot
// isolation). Callers needing isolation construct independent registries.
type Registry struct {
	mu     sync.RWMutex
	active map[string]struct{}
}

// NewRegistry returns a registry with no layers enabled.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]struct{})}
}

// Enable marks a layer as active.
func (r *Registry) Enable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[name] = struct{}{}
}

// Disable removes a layer from the active set.
func (r *Registry) Disable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, name)
}

// IsActive reports whether a layer is currently enabled.
func (r *Registry) IsActive(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.active[name]
	return ok
}

// Active returns the enabled layer names, sorted.
func (r *Registry) Active() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.active))
	for name := range r.active {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of the active set for use during a single
// validation call.
func (r *Registry) Snapshot() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{}, len(r.active))
	for name := range r.active {
		out[name] = struct{}{}
	}
	return out
}
