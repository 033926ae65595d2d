package sdk

import (
	"sync"
)

// Store is the durable key/value backend of a Chain. Writes only ever reach
// it as one atomic batch per committed request.
type Store interface {
	// Get returns nil when the key does not exist.
	Get(key string) ([]byte, error)
	// Commit applies all writes at once; a nil value deletes the key.
	Commit(writes map[string][]byte) error
	Close() error
}

// MemStore keeps everything in a map. Used by tests and throwaway chains.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemStore) Commit(writes map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range writes {
		if v == nil {
			delete(m.data, k)
			continue
		}
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *MemStore) Close() error { return nil }
