package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store for development and tests. Patterns use
// path.Match globbing.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.expired(entry) {
		delete(m.entries, key)
		return nil, false
	}
	return append([]byte(nil), entry.value...), true
}

// Set stores a copy of value; a non-positive ttl never expires.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

func (m *MemoryStore) DeleteByPattern(_ context.Context, pattern string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for key, entry := range m.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return deleted
		}
		if !matched {
			continue
		}
		delete(m.entries, key)
		if !m.expired(entry) {
			deleted++
		}
	}
	return deleted
}

// Len returns the number of live entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, entry := range m.entries {
		if !m.expired(entry) {
			n++
		}
	}
	return n
}

func (m *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt)
}
