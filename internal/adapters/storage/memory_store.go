package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/ports"
)

// MemoryStore is an in-process ports.Storage used by tests and by embedded
// callers that bring their own durability.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.NewStorageError("put", key, domain.ErrClosed)
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.NewStorageError("get", key, domain.ErrClosed)
	}

	value, ok := s.data[key]
	if !ok {
		return nil, domain.NewNotFoundError("key", key)
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.NewStorageError("delete", key, domain.ErrClosed)
	}

	delete(s.data, key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]ports.KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.NewStorageError("list", prefix, domain.ErrClosed)
	}

	var results []ports.KeyValue
	for key, value := range s.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		cp := make([]byte, len(value))
		copy(cp, value)
		results = append(results, ports.KeyValue{Key: key, Value: cp})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})
	return results, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
