package manifest

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/overlay"
	"github.com/vk/flakego/internal/pkgset"
	"github.com/vk/flakego/internal/resolver"
)

// DefaultBaseInput is the conventional name of the input whose source tree
// seeds the base package collection.
const DefaultBaseInput = "basepkgs"

// SelfReader is the evaluator's view of the flake under construction.
// Manifest functions read fields settled by earlier evaluation phases
// through it; reading a field still being computed is a cycle.
type SelfReader interface {
	Field(name string) (cty.Value, error)
}

// EvalContext is the uniform scope handed to every manifest function: the
// in-progress flake, the target system, and resolved input metadata. Pkgs
// is populated only for the outputs function, after the collection is
// realized.
type EvalContext struct {
	Self   SelfReader
	System pkgset.SystemID
	Inputs resolver.ResolvedInputs
	Pkgs   *pkgset.Collection
}

// ConfigFunc produces the configuration record for the package-set build.
type ConfigFunc func(ectx *EvalContext) (pkgset.Config, error)

// NamedOverlay pairs an overlay function with the name it is declared
// under, for reporting and for the flake's overlay listing.
type NamedOverlay struct {
	Name string
	Func overlay.Func
}

// OverlaysFunc produces the ordered overlay sequence applied to the base
// collection.
type OverlaysFunc func(ectx *EvalContext) ([]NamedOverlay, error)

// PkgsFunc produces a complete package collection directly, bypassing the
// base factory and overlay pipeline.
type PkgsFunc func(ectx *EvalContext) (pkgset.Collection, error)

// OutputsFunc produces the flake's outputs from the realized collection.
type OutputsFunc func(ectx *EvalContext) (map[string]cty.Value, error)

// Template is a project scaffold pointer carried through evaluation.
type Template struct {
	Path        string
	Description string
}

// Manifest is the raw declarative form of a flake, independent of the
// syntax it was written in. Optional sections are nil when absent; the
// evaluator supplies the documented defaults.
type Manifest struct {
	// Path records where the manifest was loaded from, for diagnostics.
	Path string

	Description string

	// Inputs declares the external source trees by name.
	Inputs map[string]resolver.Spec

	// BaseInput names the input seeding the base collection; empty means
	// DefaultBaseInput.
	BaseInput string

	// Overlays are exported for downstream consumers. They are NOT applied
	// to this flake's own collection unless PkgsOverlays names them.
	Overlays map[string]overlay.Func

	Modules        map[string]cty.Value
	Templates      map[string]Template
	Configurations map[string]cty.Value

	PkgsConfig    ConfigFunc
	PkgsOverlays  OverlaysFunc
	PkgsForSystem PkgsFunc
	Outputs       OutputsFunc
}

// BaseInputName returns the input name seeding the base collection,
// applying the default.
func (m *Manifest) BaseInputName() string {
	if m.BaseInput != "" {
		return m.BaseInput
	}
	return DefaultBaseInput
}
