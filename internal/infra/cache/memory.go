package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore in-process LRU с истечением записей
// TTL задается на весь кэш при создании, ttl в Set игнорируется
type MemoryStore struct {
	cache *expirable.LRU[string, []byte]
}

// NewMemoryStore создает LRU на size записей с временем жизни ttl
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := s.cache.Get(key)
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.cache.Add(key, value)
	return nil
}

func (s *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	deleted := 0
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) && s.cache.Remove(key) {
			deleted++
		}
	}
	return deleted, nil
}

// Len количество записей
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
