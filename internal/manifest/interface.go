package manifest

import (
	"context"
)

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads the manifest at path, translates it into the
	// format-agnostic model, and reports syntax or shape problems. A
	// loadable manifest with missing optional sections is not an error.
	Load(ctx context.Context, path string) (*Manifest, error)
}
