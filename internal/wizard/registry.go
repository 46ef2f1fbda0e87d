package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds one wizard per dashboard visit. Visits never share state.
type Registry struct {
	mu      sync.Mutex
	m       map[string]*Wizard
	factory func(id string) *Wizard
	now     func() time.Time
}

func NewRegistry(factory func(id string) *Wizard) *Registry {
	return &Registry{
		m:       make(map[string]*Wizard),
		factory: factory,
		now:     time.Now,
	}
}

func (r *Registry) Create() *Wizard {
	id := uuid.NewString()
	w := r.factory(id)
	r.mu.Lock()
	r.m[id] = w
	r.mu.Unlock()
	return w
}

func (r *Registry) Get(id string) (*Wizard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.m[id]
	return w, ok
}

func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return false
	}
	delete(r.m, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}

// Prune drops visits idle for longer than idle. Busy visits are kept.
func (r *Registry) Prune(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, w := range r.m {
		if w.Busy() || w.LastActive().After(cutoff) {
			continue
		}
		delete(r.m, id)
		n++
	}
	return n
}

// RemoveAll drops every visit, e.g. on logout.
func (r *Registry) RemoveAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.m)
	r.m = make(map[string]*Wizard)
	return n
}
