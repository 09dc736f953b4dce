package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry tracks live owning wrappers so leaks show up in logs and
// metrics instead of as silently pinned native objects. Registration is
// voluntary bookkeeping on top of the ownership discipline, not a
// substitute for it.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
	logger  *logrus.Entry

	registered int64
	released   int64
}

// RegistryEntry describes one tracked wrapper.
type RegistryEntry struct {
	ID      string
	Kind    string
	Name    string
	Created time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
		logger:  logrus.WithField("component", "handle-registry"),
	}
}

// Register records a live wrapper and returns its tracking id.
func (r *Registry) Register(kind, name string) string {
	entry := &RegistryEntry{
		ID:      uuid.NewString(),
		Kind:    kind,
		Name:    name,
		Created: time.Now(),
	}

	r.mu.Lock()
	r.entries[entry.ID] = entry
	r.registered++
	r.mu.Unlock()

	r.logger.Debugf("Registered %s %q as %s", kind, name, entry.ID)
	return entry.ID
}

// Release removes a tracked wrapper. Releasing an unknown id is an error
// so double-release bugs in the bookkeeping surface immediately.
func (r *Registry) Release(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("unknown or already released handle %s", id)
	}
	delete(r.entries, id)
	r.released++

	r.logger.Debugf("Released %s %q (%s) after %v",
		entry.Kind, entry.Name, id, time.Since(entry.Created))
	return nil
}

// Live returns the number of tracked wrappers.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns a copy of all live entries.
func (r *Registry) Snapshot() []RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]RegistryEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, *entry)
	}
	return entries
}

// Stats returns registration counters.
func (r *Registry) Stats() (registered, released int64, live int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registered, r.released, len(r.entries)
}

// ReportLeaks logs every wrapper still tracked and returns their count.
// Call it after teardown, when everything should have been released.
func (r *Registry) ReportLeaks() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		r.logger.Warnf("Leaked %s %q, registered %v ago",
			entry.Kind, entry.Name, time.Since(entry.Created))
	}
	return len(r.entries)
}
