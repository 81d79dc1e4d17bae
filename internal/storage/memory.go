package storage

import "sync"

// MemoryMedium is an in-process Medium with a byte ceiling. Used by tests
// and as the default backend in development. Safe for concurrent use.
type MemoryMedium struct {
	mu       sync.RWMutex
	maxBytes int
	entries  map[string][]byte
}

// NewMemoryMedium creates a memory-backed medium. maxBytes <= 0 means
// unbounded.
func NewMemoryMedium(maxBytes int) *MemoryMedium {
	return &MemoryMedium{
		maxBytes: maxBytes,
		entries:  map[string][]byte{},
	}
}

func (m *MemoryMedium) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryMedium) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxBytes > 0 {
		used := 0
		for k, v := range m.entries {
			if k == key {
				continue
			}
			used += len(v)
		}
		if used+len(value) > m.maxBytes {
			return &QuotaExceededError{Key: key, Attempted: len(value), Used: used, Limit: m.maxBytes}
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = stored
	return nil
}

func (m *MemoryMedium) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
