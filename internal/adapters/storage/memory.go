package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// MemoryStore keeps slots in process memory. Values do not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// Compile-time interface checks.
var (
	_ ports.SlotStore     = (*MemoryStore)(nil)
	_ ports.HealthChecker = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory slot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

// Load implements ports.SlotStore.
func (s *MemoryStore) Load(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.slots[slot]
	if !ok {
		return nil, domain.NewNotFoundError("slot", slot)
	}

	return slices.Clone(value), nil
}

// Save implements ports.SlotStore.
func (s *MemoryStore) Save(ctx context.Context, slot string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[slot] = slices.Clone(value)

	return nil
}

// Name implements ports.HealthChecker.
func (s *MemoryStore) Name() string {
	return checkerName
}

// Check implements ports.HealthChecker. Memory is always available.
func (s *MemoryStore) Check(ctx context.Context) error {
	return ctx.Err()
}

// Close implements io.Closer.
func (s *MemoryStore) Close() error {
	return nil
}
