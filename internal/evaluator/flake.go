package evaluator

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/overlay"
	"github.com/vk/flakego/internal/pkgset"
	"github.com/vk/flakego/internal/resolver"
)

// Flake is the result of evaluating a manifest for one system. It is
// immutable once assembled, and its Self method returns the flake itself,
// closing the fixed point the manifest functions observed partially.
type Flake struct {
	description    string
	system         pkgset.SystemID
	inputs         map[string]resolver.Spec
	overlays       map[string]overlay.Func
	overlayNames   []string
	modules        map[string]cty.Value
	templates      map[string]manifest.Template
	configurations map[string]cty.Value
	config         pkgset.Config
	pkgs           pkgset.Collection
	outputs        map[string]cty.Value

	// sections carries the cty rendering of every reserved top-level
	// attribute, for selector resolution.
	sections map[string]cty.Value

	self *Flake
}

// Description returns the manifest's description literal.
func (f *Flake) Description() string {
	return f.description
}

// System returns the system the flake was evaluated for.
func (f *Flake) System() pkgset.SystemID {
	return f.system
}

// Inputs returns the declared input specs by name. Read-only.
func (f *Flake) Inputs() map[string]resolver.Spec {
	return f.inputs
}

// Overlays returns the exported overlay functions by name. Read-only.
// Exported overlays are for downstream consumers; they were applied to
// this flake's own collection only if the manifest asked for them.
func (f *Flake) Overlays() map[string]overlay.Func {
	return f.overlays
}

// OverlayNames returns the names of the overlays applied to the package
// collection, in application order.
func (f *Flake) OverlayNames() []string {
	return f.overlayNames
}

// Modules returns the literal module records. Read-only.
func (f *Flake) Modules() map[string]cty.Value {
	return f.modules
}

// Templates returns the template records. Read-only.
func (f *Flake) Templates() map[string]manifest.Template {
	return f.templates
}

// Configurations returns the literal configuration records. Read-only.
func (f *Flake) Configurations() map[string]cty.Value {
	return f.configurations
}

// Config returns the configuration record the collection was built with.
func (f *Flake) Config() pkgset.Config {
	return f.config
}

// Pkgs returns the realized package collection.
func (f *Flake) Pkgs() pkgset.Collection {
	return f.pkgs
}

// Output returns one output value by name.
func (f *Flake) Output(name string) (cty.Value, bool) {
	v, ok := f.outputs[name]
	return v, ok
}

// Outputs returns a copy of the outputs mapping.
func (f *Flake) Outputs() map[string]cty.Value {
	out := make(map[string]cty.Value, len(f.outputs))
	for name, val := range f.outputs {
		out[name] = val
	}
	return out
}

// OutputsObject renders the whole outputs mapping as one cty object.
func (f *Flake) OutputsObject() cty.Value {
	return objectOrEmpty(f.outputs)
}

// Self returns the flake itself.
func (f *Flake) Self() *Flake {
	return f.self
}

// Attr resolves a dotted selector path against the flake. The first
// segment is looked up among output names first, then among the reserved
// top-level sections; remaining segments descend into the value.
func (f *Flake) Attr(path string) (cty.Value, error) {
	if path == "" {
		return cty.NilVal, fmt.Errorf("empty attribute path")
	}
	segments := strings.Split(path, ".")

	root, rest := segments[0], segments[1:]
	val, ok := f.outputs[root]
	if !ok {
		val, ok = f.sections[root]
	}
	if !ok {
		return cty.NilVal, fmt.Errorf("flake has no attribute %q", root)
	}

	return descend(val, root, rest)
}

// descend walks the remaining selector segments into a value.
func descend(val cty.Value, walked string, segments []string) (cty.Value, error) {
	current := val
	for _, segment := range segments {
		ty := current.Type()
		switch {
		case ty.IsObjectType() && ty.HasAttribute(segment):
			current = current.GetAttr(segment)
		case ty.IsMapType() && current.HasIndex(cty.StringVal(segment)).True():
			current = current.Index(cty.StringVal(segment))
		default:
			return cty.NilVal, fmt.Errorf("%s has no attribute %q", walked, segment)
		}
		walked += "." + segment
	}
	return current, nil
}
