package resolver

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveAll_ResolvesEverySpec(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	require.NoError(t, store.Add("pkgs", map[string]string{"p.pkg.hcl": `package "p" { version = "1" }`}))
	require.NoError(t, store.Add("extra", map[string]string{"readme.txt": "hi"}))
	registry := NewRegistry()
	registry.Register(SchemeMem, store)

	specs := map[string]Spec{
		"basepkgs": {Name: "basepkgs", URL: "mem:pkgs"},
		"extra":    {Name: "extra", URL: "mem:extra"},
	}

	resolved, err := ResolveAll(quietContext(), registry, specs)

	require.NoError(t, err)
	require.Equal(t, []string{"basepkgs", "extra"}, resolved.Names())

	handle, ok := resolved.Get("basepkgs")
	require.True(t, ok)
	require.Equal(t, "mem:pkgs", handle.URL)

	_, ok = resolved.Get("missing")
	require.False(t, ok)
}

func TestResolveAll_FailsFast(t *testing.T) {
	t.Parallel()

	registry := fixtureRegistry(t, "pkgs", nil)
	specs := map[string]Spec{
		"good": {Name: "good", URL: "mem:pkgs"},
		"bad":  {Name: "bad", URL: "mem:absent"},
	}

	resolved, err := ResolveAll(quietContext(), registry, specs)

	require.Nil(t, resolved)
	var fetchErr *InputFetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, "bad", fetchErr.Name)
}

func TestResolveAll_EmptySpecs(t *testing.T) {
	t.Parallel()

	resolved, err := ResolveAll(quietContext(), NewRegistry(), nil)

	require.NoError(t, err)
	require.Empty(t, resolved)
}

// barrierResolver blocks every Resolve until all expected calls have
// arrived, so the test only passes when resolution is concurrent.
type barrierResolver struct {
	expected int32
	arrived  atomic.Int32
	release  chan struct{}
}

func (r *barrierResolver) Resolve(ctx context.Context, spec Spec) (*Handle, error) {
	if r.arrived.Add(1) == r.expected {
		close(r.release)
	}
	select {
	case <-r.release:
		return &Handle{Name: spec.Name, URL: spec.URL}, nil
	case <-time.After(2 * time.Second):
		return nil, fmt.Errorf("resolution of %s never ran concurrently", spec.Name)
	}
}

func TestResolveAll_RunsConcurrently(t *testing.T) {
	t.Parallel()

	resolver := &barrierResolver{expected: 3, release: make(chan struct{})}
	specs := map[string]Spec{
		"a": {Name: "a", URL: "mem:a"},
		"b": {Name: "b", URL: "mem:b"},
		"c": {Name: "c", URL: "mem:c"},
	}

	resolved, err := ResolveAll(quietContext(), resolver, specs)

	require.NoError(t, err)
	require.Len(t, resolved, 3)
}
