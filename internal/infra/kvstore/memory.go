package kvstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Lalithx4/agroai/internal/domain/cache"
)

// MemoryStore is an in-process implementation of the cache store for
// tests/dev. An optional byte limit emulates quota exhaustion.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string][]byte
	byteLimit int
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// SetByteLimit caps the total stored bytes; writes past the cap fail with
// cache.ErrStoreFull. Zero disables the cap.
func (s *MemoryStore) SetByteLimit(limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byteLimit = limit
}

// Get implements cache.Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set overwrites the value for key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byteLimit > 0 {
		total := len(value)
		for k, v := range s.entries {
			if k == key {
				continue
			}
			total += len(v)
		}
		if total > s.byteLimit {
			return fmt.Errorf("%w: memory store over %d bytes", cache.ErrStoreFull, s.byteLimit)
		}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries[key] = stored
	return nil
}

// Delete removes a key; absent keys are not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Keys lists every stored key with the given prefix, sorted for determinism.
func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

var _ cache.Store = (*MemoryStore)(nil)
