// Package storage holds image bytes in an S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrObjectNotFound is returned by Remove when the object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the narrow surface the image service needs from a bucket.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Remove(ctx context.Context, name string) error
}

// MemoryStore keeps objects in process memory. It backs local development
// without S3 credentials and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, name string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[name] = buf
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[name]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, name)
	return nil
}

// Get returns a stored object.
func (m *MemoryStore) Get(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[name]
	return b, ok
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
