// Package memstore is an in-memory kv.Store used by tests and as the
// zero-configuration default when no on-disk path is supplied.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/ytmresolve/core/internal/kv"
)

type store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New builds an empty in-memory store.
func New() kv.Store {
	return &store{data: make(map[string][]byte)}
}

func (s *store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *store) Iterate(_ context.Context, prefix string, fn func(kv.Entry) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.data {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		out := make([]byte, len(v))
		copy(out, v)
		if !fn(kv.Entry{Key: k, Value: out}) {
			return nil
		}
	}
	return nil
}

func (s *store) Close() error { return nil }
