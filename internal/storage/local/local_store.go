// Package local stores queued documents on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

type localStore struct {
	dir string
}

// NewStore creates a DocumentStore rooted at dir. Keys map to paths below
// the root; a key that escapes the root is rejected.
func NewStore(dir string) port.DocumentStore {
	return &localStore{dir: dir}
}

func (s *localStore) resolve(key string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	root := filepath.Clean(s.dir) + string(os.PathSeparator)
	if !strings.HasPrefix(path, root) {
		return "", fmt.Errorf("key %q escapes storage root", key)
	}
	return path, nil
}

func (s *localStore) Put(ctx context.Context, input port.StoreInput) error {
	path, err := s.resolve(input.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(f, input.Body); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func (s *localStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
