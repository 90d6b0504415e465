package usecase

import (
	"sort"
	"sync"

	"autotask-relay/internal/domain/ports"
)

// Registry holds the named notifiers an autotask endpoint can dispatch to.
// Replace swaps the whole set so readers never see a partial reload.
type Registry struct {
	mu        sync.RWMutex
	notifiers map[string]*AlertNotifier
}

// NewRegistry creates a Registry holding notifiers.
func NewRegistry(notifiers ...*AlertNotifier) *Registry {
	r := &Registry{}
	r.Replace(notifiers)
	return r
}

// Get returns the notifier registered as name.
func (r *Registry) Get(name string) (*AlertNotifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifiers[name]
	return n, ok
}

// Lookup is Get behind the ports.Notifier interface.
func (r *Registry) Lookup(name string) (ports.Notifier, bool) {
	n, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	return n, true
}

// Replace installs notifiers in place of the current set.
func (r *Registry) Replace(notifiers []*AlertNotifier) {
	next := make(map[string]*AlertNotifier, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			next[n.Name()] = n
		}
	}
	r.mu.Lock()
	r.notifiers = next
	r.mu.Unlock()
}

// Names lists the registered handler names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.notifiers))
	for name := range r.notifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
