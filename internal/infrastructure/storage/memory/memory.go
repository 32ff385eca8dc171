// Package memory is a process-local SlotStorage. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/sunrise-apartments/portal/internal/core/ports"
)

// Storage keeps slots in a map.
type Storage struct {
	mu    sync.RWMutex
	slots map[string]string
}

var _ ports.SlotStorage = (*Storage)(nil)

func New() *Storage {
	return &Storage{slots: make(map[string]string)}
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[key]
	if !ok {
		return "", ports.ErrSlotNotFound
	}
	return v, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = value
	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error { return nil }
