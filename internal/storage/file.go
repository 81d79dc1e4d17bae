package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileMedium persists all keys as a single JSON object in one file,
// rewritten atomically on every Set. The byte ceiling applies to the sum of
// stored values, mirroring the fixed quota of the browser storage the
// original sheets lived in.
type FileMedium struct {
	mu       sync.Mutex
	path     string
	maxBytes int
	entries  map[string]json.RawMessage
}

// NewFileMedium opens (or creates) the backing file. maxBytes <= 0 means
// unbounded.
func NewFileMedium(path string, maxBytes int) (*FileMedium, error) {
	m := &FileMedium{
		path:     path,
		maxBytes: maxBytes,
		entries:  map[string]json.RawMessage{},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m.entries); err != nil {
			return nil, fmt.Errorf("parse storage file %s: %w", path, err)
		}
	}
	return m, nil
}

func (m *FileMedium) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *FileMedium) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}

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

	prev, hadPrev := m.entries[key]
	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	m.entries[key] = stored

	if err := m.flush(); err != nil {
		if hadPrev {
			m.entries[key] = prev
		} else {
			delete(m.entries, key)
		}
		return err
	}
	return nil
}

func (m *FileMedium) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return nil
	}
	delete(m.entries, key)
	return m.flush()
}

// flush writes the whole entry map via a temp file and rename so a crash
// mid-write never leaves a truncated storage file.
func (m *FileMedium) flush() error {
	data, err := json.Marshal(m.entries)
	if err != nil {
		return fmt.Errorf("marshal storage entries: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp storage file: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
