package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// SchemePath is the URL scheme for local directory inputs.
const SchemePath = "path"

// PathFetcher serves `path:` inputs by rooting a filesystem at a local
// directory. Relative paths are resolved against baseDir, the directory of
// the manifest that declared the input.
type PathFetcher struct {
	baseDir string
}

// NewPathFetcher creates a fetcher resolving relative paths against baseDir.
func NewPathFetcher(baseDir string) *PathFetcher {
	return &PathFetcher{baseDir: baseDir}
}

// Fetch roots a read view at the referenced directory.
func (f *PathFetcher) Fetch(ctx context.Context, url string) (billy.Filesystem, error) {
	target := strings.TrimPrefix(url, SchemePath+":")
	if target == "" {
		return nil, fmt.Errorf("path URL names no directory")
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(f.baseDir, target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", target)
	}

	return osfs.New(target), nil
}
