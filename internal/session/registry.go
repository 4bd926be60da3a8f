// internal/session/registry.go
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry tracks which usernames currently have a live authenticated
// session. Entries are created on login and removed on logout or disconnect;
// nothing here is persisted.
type Registry struct {
	mu      sync.Mutex
	entries map[string]uuid.UUID // username -> owning session id
	logger  *logrus.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		entries: make(map[string]uuid.UUID),
		logger:  logger,
	}
}

// Add installs an entry for username owned by session id. A second login for
// the same user replaces the first entry; the superseded session keeps
// running unauthenticated-equivalent cleanup rights only for its own entry.
func (r *Registry) Add(username string, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.entries[username]; ok {
		r.logger.WithFields(logrus.Fields{
			"user":    username,
			"old":     old,
			"session": id,
		}).Warn("replacing live session entry")
	}
	r.entries[username] = id
}

// Remove drops the entry for username, but only if session id still owns it.
// A logout from a superseded session must not evict the newer login.
func (r *Registry) Remove(username string, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.entries[username]; ok && cur == id {
		delete(r.entries, username)
	}
}

// IsOnline reports whether username has a live session.
func (r *Registry) IsOnline(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[username]
	return ok
}

// Snapshot returns a copy of the table for inspection. The copy is safe to
// iterate while sessions come and go.
func (r *Registry) Snapshot() map[string]uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[string]uuid.UUID, len(r.entries))
	for k, v := range r.entries {
		cp[k] = v
	}
	return cp
}
