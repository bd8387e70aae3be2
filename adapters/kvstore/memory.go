package kvstore

import (
	"context"
	"sync"

	"opsdash/domain/core"
)

// MemoryStore is a quota-bounded in-process key-value store. A quota of zero
// or less disables the limit.
type MemoryStore struct {
	mu         sync.RWMutex
	values     map[string][]byte
	quotaBytes int
}

// NewMemoryStore creates an empty store
func NewMemoryStore(quotaBytes int) *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte), quotaBytes: quotaBytes}
}

// Get returns a copy of the value stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, core.NewNotFoundError("key", key)
	}
	return append([]byte(nil), v...), nil
}

// Set stores value under key unless the total size would exceed the quota
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quotaBytes > 0 {
		used := len(value)
		for k, v := range s.values {
			if k != key {
				used += len(v)
			}
		}
		if used > s.quotaBytes {
			return core.NewQuotaError(used, s.quotaBytes)
		}
	}

	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key; deleting an absent key is not an error
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Size returns the total stored bytes
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, v := range s.values {
		total += len(v)
	}
	return total
}
