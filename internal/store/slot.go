package store

import "sync"

// Slot is a durable string key-value store, the local equivalent of a
// browser's localStorage.
type Slot interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// MemorySlot is a Slot that lives only as long as the process.
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{
		values: map[string]string{},
	}
}

func (m *MemorySlot) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySlot) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
