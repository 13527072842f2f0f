package store

import (
	"context"
	"sync"
)

// Memory keeps entries in process. The map lock is held only to find or
// create an entry; reads and writes then lock the entry alone, so readers
// never block each other and writers to different keys never contend.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
}

type memEntry struct {
	mu      sync.RWMutex
	value   string
	present bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memEntry)}
}

func (m *Memory) lookup(key string) *memEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key]
}

func (m *Memory) entry(key string) *memEntry {
	if e := m.lookup(key); e != nil {
		return e
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		return e
	}
	e := &memEntry{}
	m.entries[key] = e
	return e
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	e := m.lookup(key)
	if e == nil {
		return "", false, nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.value, e.present, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	e := m.entry(key)
	e.mu.Lock()
	e.value, e.present = value, true
	e.mu.Unlock()
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	e := m.lookup(key)
	if e == nil {
		return nil
	}
	e.mu.Lock()
	e.value, e.present = "", false
	e.mu.Unlock()
	return nil
}

// Len returns the number of keys currently holding a value.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		e.mu.RLock()
		if e.present {
			n++
		}
		e.mu.RUnlock()
	}
	return n
}

var _ Storage = (*Memory)(nil)
