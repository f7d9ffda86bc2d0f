// Package store defines the opaque key-value blob store the note store
// persists through, plus an in-memory implementation.
package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Keys used by the note store.
const (
	KeyNotes       = "notes"
	KeyPreferences = "preferences"
)

// BlobStore is an opaque key-value persistence service.
// Get reports ok=false when the key is absent; that is not an error.
type BlobStore interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
}

// Pinger is implemented by backends that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Lister is implemented by backends that can enumerate the keys they hold.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Memory is a BlobStore kept in process memory. Nothing survives a restart.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty in-memory blob store
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return clone(data), true, nil
}

func (m *Memory) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = clone(data)
	return nil
}

// Keys returns the stored keys, sorted.
func (m *Memory) Keys(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.blobs)), nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
