package resolver

import (
	"context"
	"fmt"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"
)

// Spec is the declared side of an input: a name and the URL it is fetched
// from.
type Spec struct {
	Name string
	URL  string
}

// Handle is the resolved side of an input. Source is the materialized
// tree; Digest fingerprints its contents.
type Handle struct {
	Name   string
	URL    string
	Digest string
	Source billy.Filesystem
}

// Resolver turns an input spec into a resolved handle.
type Resolver interface {
	Resolve(ctx context.Context, spec Spec) (*Handle, error)
}

// ResolvedInputs maps input names to their resolved handles. It is built
// once by ResolveAll and must not be mutated afterwards.
type ResolvedInputs map[string]*Handle

// Get returns the handle for the named input.
func (r ResolvedInputs) Get(name string) (*Handle, bool) {
	h, ok := r[name]
	return h, ok
}

// Names returns the sorted input names.
func (r ResolvedInputs) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InputFetchError reports a failure to resolve one input.
type InputFetchError struct {
	Name string
	URL  string
	Err  error
}

func (e *InputFetchError) Error() string {
	return fmt.Sprintf("failed to resolve input %q from %s: %v", e.Name, e.URL, e.Err)
}

func (e *InputFetchError) Unwrap() error {
	return e.Err
}

// ResolveAll resolves every spec concurrently, failing fast on the first
// error. The returned map is complete on success and nil on failure.
func ResolveAll(ctx context.Context, r Resolver, specs map[string]Spec) (ResolvedInputs, error) {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	handles := make([]*Handle, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			handle, err := r.Resolve(ctx, specs[name])
			if err != nil {
				return err
			}
			handles[i] = handle
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := make(ResolvedInputs, len(names))
	for i, name := range names {
		resolved[name] = handles[i]
	}
	return resolved, nil
}
