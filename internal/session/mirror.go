package session

import (
	"context"
	"sync"

	"github.com/Mohsinsiddi/w3dapp/internal/contract"
)

// Mirror is a local copy of on-chain views, keyed by entity. Entries may lag
// the chain between refreshes.
type Mirror[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewMirror returns an empty mirror.
func NewMirror[K comparable, V any]() *Mirror[K, V] {
	return &Mirror[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key.
func (m *Mirror[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set overwrites the slot for key.
func (m *Mirror[K, V]) Set(key K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = v
}

// Len returns the number of cached entries.
func (m *Mirror[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Snapshot returns a copy of every entry.
func (m *Mirror[K, V]) Snapshot() map[K]V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[K]V, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

// Reader performs one read-only call through a bound handle.
type Reader[V any] func(ctx context.Context, h *contract.Handle) (V, error)

// Refresh reads one value and stores it under key. On failure the mirror is
// left untouched and the error is returned.
func Refresh[K comparable, V any](ctx context.Context, s *Session, m *Mirror[K, V], key K, read Reader[V]) (V, error) {
	var zero V
	h, err := s.Handle()
	if err != nil {
		return zero, err
	}
	v, err := read(ctx, h)
	if err != nil {
		return zero, err
	}
	m.Set(key, v)
	return v, nil
}
