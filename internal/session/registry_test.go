// internal/session/registry_test.go
package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestRegistry() *Registry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return NewRegistry(l)
}

func TestRegistryAddRemove(t *testing.T) {
	r := newTestRegistry()
	id := uuid.New()

	r.Add("alice", id)
	assert.True(t, r.IsOnline("alice"))

	r.Remove("alice", id)
	assert.False(t, r.IsOnline("alice"))
}

func TestRegistryRemoveIsOwnershipChecked(t *testing.T) {
	r := newTestRegistry()
	first := uuid.New()
	second := uuid.New()

	r.Add("alice", first)
	r.Add("alice", second) // second login replaces the first

	// The superseded session's cleanup must not evict the newer login.
	r.Remove("alice", first)
	assert.True(t, r.IsOnline("alice"))

	r.Remove("alice", second)
	assert.False(t, r.IsOnline("alice"))
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := newTestRegistry()
	id := uuid.New()
	r.Add("alice", id)

	snap := r.Snapshot()
	assert.Equal(t, map[string]uuid.UUID{"alice": id}, snap)

	delete(snap, "alice")
	assert.True(t, r.IsOnline("alice"), "mutating the snapshot must not touch the table")
}
