// Package memkv is an in-memory kv.Store, for development and tests.
package memkv

import (
	"context"
	"sync"

	"github.com/abdel28fr/ecole-pwa/storage/kv"
)

type Store struct {
	mutex sync.RWMutex
	table map[string][]byte
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{table: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	val := make([]byte, len(value))
	copy(val, value)
	s.table[key] = val
	return nil
}

func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, key := range keys {
		delete(s.table, key)
	}
	return nil
}

func (s *Store) Close() error { return nil }
