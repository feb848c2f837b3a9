package resolver

import (
	"context"
	"fmt"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// SchemeMem is the URL scheme for in-memory fixture inputs.
const SchemeMem = "mem"

// MemStore serves `mem:` inputs from trees registered up front. It exists
// for tests and examples that must not touch the network or the disk.
type MemStore struct {
	trees map[string]billy.Filesystem
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{trees: make(map[string]billy.Filesystem)}
}

// Add registers a tree under `mem:<key>`, built from path → file content.
func (s *MemStore) Add(key string, files map[string]string) error {
	fsys := memfs.New()
	for path, content := range files {
		if err := util.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write fixture file %s: %w", path, err)
		}
	}
	s.trees[key] = fsys
	return nil
}

// Fetch returns the tree registered for the URL's key.
func (s *MemStore) Fetch(ctx context.Context, url string) (billy.Filesystem, error) {
	key := strings.TrimPrefix(url, SchemeMem+":")
	tree, ok := s.trees[key]
	if !ok {
		return nil, fmt.Errorf("no fixture registered for %q", key)
	}
	return tree, nil
}
