// File: /localdata/localdata.go

// Package localdata models the device-local key-value cache the app
// keeps beside its remote state. Session teardown must be able to
// enumerate and wipe every key, so the contract is built around
// GetAllKeys and MultiRemove.
package localdata

import "sync"

type Store interface {
	Set(key, value string)
	Get(key string) (string, bool)
	GetAllKeys() []string
	MultiRemove(keys []string)
}

// Memory is the in-process Store implementation.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *Memory) GetAllKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

func (m *Memory) MultiRemove(keys []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
}
