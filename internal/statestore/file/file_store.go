// Package file persists the result table as a single JSON file on disk.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

type fileStore struct {
	path string
}

// NewStore creates a StateStore backed by one file. The file holds the whole
// serialized table and is rewritten on every Save.
func NewStore(path string) port.StateStore {
	return &fileStore{path: path}
}

func (s *fileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return data, nil
}

func (s *fileStore) Save(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot leave a half-written
	// table behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

func (s *fileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	return nil
}
