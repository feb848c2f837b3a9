package resolver

import (
	"context"
	"fmt"
	"strings"

	billy "github.com/go-git/go-billy/v5"

	"github.com/vk/flakego/internal/ctxlog"
)

// Fetcher materializes the source tree behind one URL scheme.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (billy.Filesystem, error)
}

// Registry dispatches input resolution to the Fetcher registered for the
// URL's scheme and wraps every failure in an *InputFetchError.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// Register adds a fetcher for a URL scheme.
func (r *Registry) Register(scheme string, fetcher Fetcher) {
	if _, exists := r.fetchers[scheme]; exists {
		panic(fmt.Sprintf("fetcher for scheme '%s' already registered", scheme))
	}
	r.fetchers[scheme] = fetcher
}

// Close closes every registered fetcher that holds releasable resources.
// A fetcher registered under several schemes is closed once.
func (r *Registry) Close() error {
	var firstErr error
	closed := make(map[Fetcher]bool)
	for _, fetcher := range r.fetchers {
		if closed[fetcher] {
			continue
		}
		closed[fetcher] = true
		if closer, ok := fetcher.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Resolve fetches the source tree named by spec and fingerprints it.
func (r *Registry) Resolve(ctx context.Context, spec Spec) (*Handle, error) {
	logger := ctxlog.FromContext(ctx)

	scheme, _, ok := strings.Cut(spec.URL, ":")
	if !ok || scheme == "" {
		return nil, &InputFetchError{Name: spec.Name, URL: spec.URL, Err: fmt.Errorf("URL has no scheme")}
	}

	fetcher, ok := r.fetchers[scheme]
	if !ok {
		return nil, &InputFetchError{Name: spec.Name, URL: spec.URL, Err: fmt.Errorf("no fetcher registered for scheme %q", scheme)}
	}

	logger.Debug("Resolving input.", "name", spec.Name, "url", spec.URL, "scheme", scheme)

	source, err := fetcher.Fetch(ctx, spec.URL)
	if err != nil {
		return nil, &InputFetchError{Name: spec.Name, URL: spec.URL, Err: err}
	}

	digest, err := hashTree(source)
	if err != nil {
		return nil, &InputFetchError{Name: spec.Name, URL: spec.URL, Err: fmt.Errorf("failed to digest source tree: %w", err)}
	}

	logger.Debug("Input resolved.", "name", spec.Name, "digest", digest)
	return &Handle{Name: spec.Name, URL: spec.URL, Digest: digest, Source: source}, nil
}
