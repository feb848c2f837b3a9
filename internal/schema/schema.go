package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Flake Manifest Structures ---

// Input represents an `input` block from a flake manifest. It names an
// external source tree and the URL it is fetched from.
type Input struct {
	Name string `hcl:"name,label"`
	URL  string `hcl:"url"`
}

// Overlay represents a named `overlay` block. Its body is a set of
// attributes, one per package the overlay defines or overrides; the
// expressions are captured unevaluated so they can be forced lazily
// against the final and previous collection views.
type Overlay struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// PkgsConfig represents the `pkgs_config` block. Its attributes form the
// configuration record handed to the base-collection factory, for example
// `allow_unfree = true`.
type PkgsConfig struct {
	Body hcl.Body `hcl:",remain"`
}

// PkgsOverlay represents one `pkgs_overlay` block. Unlike exported
// `overlay` blocks these are applied automatically, in declaration order,
// when the package collection is built.
type PkgsOverlay struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// PkgsForSystem represents the `pkgs_for_system` block. When present its
// attributes define the complete package collection for the requested
// system, bypassing the base factory and overlay pipeline entirely.
type PkgsForSystem struct {
	Body hcl.Body `hcl:",remain"`
}

// Outputs represents the `outputs` block. Each attribute becomes one
// output of the evaluated flake; expressions may reference the realized
// package collection, the flake itself, the system id and input metadata.
type Outputs struct {
	Body hcl.Body `hcl:",remain"`
}

// Module represents a named `module` block whose attributes are carried
// through evaluation as literal values.
type Module struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Template represents a named `template` block pointing at a project
// scaffold directory.
type Template struct {
	Name        string `hcl:"name,label"`
	Path        string `hcl:"path"`
	Description string `hcl:"description,optional"`
}

// Configuration represents a named `configuration` block whose attributes
// are carried through evaluation as literal values.
type Configuration struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// FlakeConfig represents the top-level structure of a flake manifest file.
type FlakeConfig struct {
	Description string `hcl:"description,optional"`

	// BaseInput names the input whose source tree seeds the base package
	// collection. Empty means the conventional default input name.
	BaseInput string `hcl:"base_input,optional"`

	// UseOverlays is an expression yielding the names of exported overlays
	// to apply ahead of the inline pkgs_overlay sequence. Captured
	// unevaluated because it may reference the flake itself.
	UseOverlays hcl.Expression `hcl:"use_overlays,optional"`

	Inputs         []*Input         `hcl:"input,block"`
	Overlays       []*Overlay       `hcl:"overlay,block"`
	PkgsConfig     *PkgsConfig      `hcl:"pkgs_config,block"`
	PkgsOverlays   []*PkgsOverlay   `hcl:"pkgs_overlay,block"`
	PkgsForSystem  *PkgsForSystem   `hcl:"pkgs_for_system,block"`
	Outputs        *Outputs         `hcl:"outputs,block"`
	Modules        []*Module        `hcl:"module,block"`
	Templates      []*Template      `hcl:"template,block"`
	Configurations []*Configuration `hcl:"configuration,block"`
	Body           hcl.Body         `hcl:",remain"`
}

// --- Package Definition Schemas ---

// PackageMeta holds the free-form metadata attributes of a package
// definition, such as homepage or license.
type PackageMeta struct {
	Body hcl.Body `hcl:",remain"`
}

// PackageDef represents a single `package` block from a *.pkg.hcl
// definition file.
type PackageDef struct {
	Name        string       `hcl:"name,label"`
	Version     string       `hcl:"version"`
	Description string       `hcl:"description,optional"`
	Systems     []string     `hcl:"systems,optional"`
	Unfree      bool         `hcl:"unfree,optional"`
	Depends     []string     `hcl:"depends,optional"`
	Meta        *PackageMeta `hcl:"meta,block"`
}

// PackageFile represents the top-level structure of a *.pkg.hcl file,
// containing any number of package definitions.
type PackageFile struct {
	Packages []*PackageDef `hcl:"package,block"`
	Body     hcl.Body      `hcl:",remain"`
}
