package overlay

import (
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/lazy"
)

// MissingKeyError reports a lookup of a package name that no layer of the
// collection defines. Reading `prev.<name>` for a name absent from the base
// collection fails with this error rather than being treated as a cycle.
type MissingKeyError struct {
	// Key is the package name that was looked up.
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("package %q is not defined in this collection view", e.Key)
}

// View is a read-only, demand-driven window onto a package collection.
// Values are forced through memoized thunks, so repeated lookups of the
// same name observe the same result.
type View struct {
	resolve func(name string) (*lazy.Thunk[cty.Value], error)
	names   func() []string
}

// NewView builds a view over an already-materialized set of thunks.
func NewView(thunks map[string]*lazy.Thunk[cty.Value]) *View {
	return &View{
		resolve: func(name string) (*lazy.Thunk[cty.Value], error) {
			th, ok := thunks[name]
			if !ok {
				return nil, &MissingKeyError{Key: name}
			}
			return th, nil
		},
		names: func() []string {
			names := make([]string, 0, len(thunks))
			for name := range thunks {
				names = append(names, name)
			}
			sort.Strings(names)
			return names
		},
	}
}

// Extend layers a set of overrides on top of a view. Lookups consult the
// overrides first and fall back to the underlying view; the name set is
// the union of both.
func Extend(base *View, overrides Overrides) *View {
	return &View{
		resolve: func(name string) (*lazy.Thunk[cty.Value], error) {
			if th, ok := overrides[name]; ok {
				return th, nil
			}
			return base.resolve(name)
		},
		names: func() []string {
			seen := make(map[string]struct{})
			var names []string
			for name := range overrides {
				seen[name] = struct{}{}
				names = append(names, name)
			}
			for _, name := range base.names() {
				if _, ok := seen[name]; !ok {
					names = append(names, name)
				}
			}
			sort.Strings(names)
			return names
		},
	}
}

// Value forces and returns the package value for name. A name defined by
// no layer yields a *MissingKeyError; a value whose computation demands
// itself yields a cycle error from the thunk machinery.
func (v *View) Value(name string) (cty.Value, error) {
	th, err := v.resolve(name)
	if err != nil {
		return cty.NilVal, err
	}
	return th.Force()
}

// Has reports whether name is defined by any layer of the view.
func (v *View) Has(name string) bool {
	_, err := v.resolve(name)
	return err == nil
}

// Names returns the sorted set of package names visible through the view.
func (v *View) Names() []string {
	return v.names()
}
