// Package localstore is the client's durable key/value cache. Values live in
// named slots; callers own the encoding.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrSlotEmpty is returned by Get when nothing is stored under the slot.
var ErrSlotEmpty = errors.New("local slot is empty")

// Store persists opaque values under slot names.
type Store interface {
	Get(ctx context.Context, slot string) ([]byte, error)
	Put(ctx context.Context, slot string, data []byte) error
	Delete(ctx context.Context, slot string) error
}

// GetJSON decodes the value stored under slot into v.
func GetJSON(ctx context.Context, s Store, slot string, v any) error {
	data, err := s.Get(ctx, slot)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// PutJSON encodes v and stores it under slot.
func PutJSON(ctx context.Context, s Store, slot string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, slot, data)
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps slots in memory. Safe for concurrent access.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[slot]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Put(ctx context.Context, slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[slot] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, slot)
	return nil
}
