package inmemory

import (
	"context"
	"sync"

	"github.com/UkralStul/apexmed-interactions/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
// Значения копируются на входе и на выходе, чтобы вызывающий код не мог изменить их напрямую.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		items: make(map[string][]byte),
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *Store) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := s.items[key]; ok {
			result[key] = append([]byte(nil), value...)
		}
	}
	return result, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = append([]byte(nil), value...)
	return nil
}

// Len возвращает число сохраненных ключей.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
