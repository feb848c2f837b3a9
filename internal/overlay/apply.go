package overlay

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/lazy"
)

// CyclicError reports a strict dependency cycle between overlay overrides:
// forcing a key's override transitively demanded the same key again
// through the final view.
type CyclicError struct {
	// Key is the package name at which the cycle was detected.
	Key string

	err error
}

func (e *CyclicError) Error() string {
	return fmt.Sprintf("cyclic overlay override for package %q: %v", e.Key, e.err)
}

func (e *CyclicError) Unwrap() error {
	return e.err
}

// Apply materializes an overlay over a base collection. The overlay's
// overrides win on key collisions with the base. Every key of the result
// is forced before returning, so the returned map is fully realized and
// the caller never observes deferred state. The base map is not modified.
//
// A cycle through the final view fails with *CyclicError; any other
// override failure is returned wrapped with the offending package name.
func Apply(base map[string]cty.Value, fn Func) (map[string]cty.Value, error) {
	baseThunks := make(map[string]*lazy.Thunk[cty.Value], len(base))
	for name, val := range base {
		baseThunks[name] = lazy.FromValue(name, val)
	}
	prev := NewView(baseThunks)

	// The final view resolves through the composed result. Its thunks are
	// installed only after the overlay has reported its key set; a layer
	// that strictly forces final while the stack is still being planned is
	// in a cycle by construction (the key set would depend on a value that
	// depends on the key set).
	finalThunks := make(map[string]*lazy.Thunk[cty.Value])
	planning := true
	final := &View{
		resolve: func(name string) (*lazy.Thunk[cty.Value], error) {
			if planning {
				return nil, &CyclicError{
					Key: name,
					err: errors.New("final collection forced while overlays were still being planned"),
				}
			}
			th, ok := finalThunks[name]
			if !ok {
				return nil, &MissingKeyError{Key: name}
			}
			return th, nil
		},
		names: func() []string {
			if planning {
				return nil
			}
			names := make([]string, 0, len(finalThunks))
			for name := range finalThunks {
				names = append(names, name)
			}
			sort.Strings(names)
			return names
		},
	}

	overrides, err := fn(final, prev)
	if err != nil {
		return nil, fmt.Errorf("failed to plan overlay overrides: %w", err)
	}
	for name, th := range overrides {
		override := th
		finalThunks[name] = lazy.New("final."+name, override.Force)
	}
	for name, th := range baseThunks {
		if _, overridden := overrides[name]; !overridden {
			finalThunks[name] = th
		}
	}
	planning = false

	names := make([]string, 0, len(finalThunks))
	for name := range finalThunks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]cty.Value, len(names))
	for _, name := range names {
		val, err := finalThunks[name].Force()
		if err != nil {
			var cycle *lazy.CycleError
			if errors.As(err, &cycle) {
				return nil, &CyclicError{Key: strings.TrimPrefix(cycle.Name, "final."), err: err}
			}
			var cyclic *CyclicError
			if errors.As(err, &cyclic) {
				return nil, cyclic
			}
			return nil, fmt.Errorf("failed to compute package %q: %w", name, err)
		}
		out[name] = val
	}
	return out, nil
}
