package pkgset

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Config is an arbitrary record of package-collection flags (e.g.
// allow_unfree). A nil Config behaves like an empty one.
type Config map[string]cty.Value

// Bool reads a boolean flag; missing or non-boolean entries read as false.
func (c Config) Bool(name string) bool {
	v, ok := c[name]
	if !ok || v.IsNull() || !v.Type().Equals(cty.Bool) {
		return false
	}
	return v.True()
}

// AsObject renders the config record as a cty object for evaluation
// contexts. An empty config renders as an empty object.
func (c Config) AsObject() cty.Value {
	if len(c) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(c)
}

// Collection is a fully-realized, system-specific package set. It is
// frozen on construction: the constituent cty values are immutable and
// the name map is copied both in and out.
type Collection struct {
	system SystemID
	pkgs   map[string]cty.Value
}

// NewCollection copies pkgs into a fresh collection scoped to system.
func NewCollection(system SystemID, pkgs map[string]cty.Value) Collection {
	owned := make(map[string]cty.Value, len(pkgs))
	for name, val := range pkgs {
		owned[name] = val
	}
	return Collection{system: system, pkgs: owned}
}

// System returns the system identifier the collection was built for.
func (c Collection) System() SystemID {
	return c.system
}

// Len returns the number of packages in the collection.
func (c Collection) Len() int {
	return len(c.pkgs)
}

// Has reports whether the collection defines the named package.
func (c Collection) Has(name string) bool {
	_, ok := c.pkgs[name]
	return ok
}

// Package returns the named package value.
func (c Collection) Package(name string) (cty.Value, bool) {
	v, ok := c.pkgs[name]
	return v, ok
}

// Names returns the sorted package names.
func (c Collection) Names() []string {
	names := make([]string, 0, len(c.pkgs))
	for name := range c.pkgs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns a copy of the underlying name map.
func (c Collection) Values() map[string]cty.Value {
	out := make(map[string]cty.Value, len(c.pkgs))
	for name, val := range c.pkgs {
		out[name] = val
	}
	return out
}

// AsObject renders the collection as one cty object keyed by package name,
// the shape handed to output functions as `pkgs`.
func (c Collection) AsObject() cty.Value {
	if len(c.pkgs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(c.pkgs)
}
