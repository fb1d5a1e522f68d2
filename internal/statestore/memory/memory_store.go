// Package memory keeps the result table in process memory only. Nothing
// survives a restart; the batch CLI uses it when no state path is wanted.
package memory

import (
	"context"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

type memoryStore struct {
	data []byte
}

// NewStore returns an empty in-memory StateStore.
func NewStore() port.StateStore {
	return &memoryStore{}
}

func (s *memoryStore) Load(ctx context.Context) ([]byte, error) {
	return s.data, nil
}

func (s *memoryStore) Save(ctx context.Context, data []byte) error {
	s.data = append([]byte(nil), data...)
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return nil
}
