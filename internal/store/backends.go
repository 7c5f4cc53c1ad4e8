package store

import (
	"context"
	"sync"
)

// MemoryBackend is the ephemeral tier: values live as long as the process.
type MemoryBackend struct {
	mutex  sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.values)
}

// NoopBackend stands in for a tier that does not exist in the current
// environment. Reads find nothing and writes vanish.
type NoopBackend struct{}

func (NoopBackend) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NoopBackend) Set(context.Context, string, string) error         { return nil }
func (NoopBackend) Delete(context.Context, string) error              { return nil }
