package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"hoejeong/internal/adapters/storage"
)

// MemoryBackend keeps snapshots in a process-local expiring LRU.
type MemoryBackend struct {
	lru *expirable.LRU[string, storage.Snapshot]

	mu   sync.Mutex
	gens map[string]int64
}

// NewMemoryBackend holds up to one snapshot per registered table.
func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{
		lru:  expirable.NewLRU[string, storage.Snapshot](len(storage.Schemas), nil, ClampTTL(ttl)),
		gens: map[string]int64{},
	}
}

// Get implements Backend.
func (m *MemoryBackend) Get(_ context.Context, table string) (storage.Snapshot, bool, error) {
	snap, ok := m.lru.Get(table)
	return snap, ok, nil
}

// Generation implements Backend.
func (m *MemoryBackend) Generation(_ context.Context, table string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[table], nil
}

// SetIfGeneration implements Backend.
func (m *MemoryBackend) SetIfGeneration(_ context.Context, snap storage.Snapshot, gen int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[snap.Table] != gen {
		return false, nil
	}
	m.lru.Add(snap.Table, snap)
	return true, nil
}

// Invalidate implements Backend.
func (m *MemoryBackend) Invalidate(_ context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[table]++
	m.lru.Remove(table)
	return nil
}
