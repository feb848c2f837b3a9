package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/ctxlog"
	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/overlay"
	"github.com/vk/flakego/internal/resolver"
	"github.com/vk/flakego/internal/schema"
)

// ManifestFileName is the manifest file a directory target must contain.
const ManifestFileName = "flake.hcl"

// Loader is the HCL-specific implementation of the manifest.Loader
// interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses and translates a flake manifest. path may name the manifest
// file itself or a directory containing flake.hcl.
func (l *Loader) Load(ctx context.Context, path string) (*manifest.Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	manifestPath, err := locateManifest(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("HCL loader started.", "path", manifestPath)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(manifestPath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", manifestPath, diags)
	}

	var parsed schema.FlakeConfig
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", manifestPath, diags)
	}

	m, err := l.translate(&parsed, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", manifestPath, err)
	}

	logger.Debug("HCL loading complete.",
		"inputs", len(m.Inputs),
		"overlays", len(m.Overlays),
		"modules", len(m.Modules),
		"templates", len(m.Templates),
	)
	return m, nil
}

// translate converts the decoded HCL schema into the format-agnostic
// manifest model, compiling the function-valued sections into closures.
func (l *Loader) translate(parsed *schema.FlakeConfig, path string) (*manifest.Manifest, error) {
	m := &manifest.Manifest{
		Path:           path,
		Description:    parsed.Description,
		BaseInput:      parsed.BaseInput,
		Inputs:         make(map[string]resolver.Spec),
		Overlays:       make(map[string]overlay.Func),
		Modules:        make(map[string]cty.Value),
		Templates:      make(map[string]manifest.Template),
		Configurations: make(map[string]cty.Value),
	}

	for _, input := range parsed.Inputs {
		if _, exists := m.Inputs[input.Name]; exists {
			return nil, fmt.Errorf("duplicate input %q", input.Name)
		}
		m.Inputs[input.Name] = resolver.Spec{Name: input.Name, URL: input.URL}
	}

	exported := make(map[string]map[string]hcl.Expression, len(parsed.Overlays))
	for _, block := range parsed.Overlays {
		if _, exists := exported[block.Name]; exists {
			return nil, fmt.Errorf("duplicate overlay %q", block.Name)
		}
		attrs, err := bodyAttributes(block.Body, "overlay", block.Name)
		if err != nil {
			return nil, err
		}
		exported[block.Name] = attrs
		m.Overlays[block.Name] = compileOverlay(block.Name, attrs, nil)
	}

	var inline []inlineOverlay
	for _, block := range parsed.PkgsOverlays {
		attrs, err := bodyAttributes(block.Body, "pkgs_overlay", block.Name)
		if err != nil {
			return nil, err
		}
		inline = append(inline, inlineOverlay{name: block.Name, attrs: attrs})
	}
	useOverlays := parsed.UseOverlays
	if !exprDefined(useOverlays) {
		useOverlays = nil
	}
	if useOverlays != nil || len(inline) > 0 {
		m.PkgsOverlays = compileOverlaySequence(useOverlays, exported, inline)
	}

	if parsed.PkgsConfig != nil {
		attrs, err := bodyAttributes(parsed.PkgsConfig.Body, "pkgs_config", "")
		if err != nil {
			return nil, err
		}
		m.PkgsConfig = compileConfig(attrs)
	}

	if parsed.PkgsForSystem != nil {
		attrs, err := bodyAttributes(parsed.PkgsForSystem.Body, "pkgs_for_system", "")
		if err != nil {
			return nil, err
		}
		m.PkgsForSystem = compilePkgsForSystem(attrs)
	}

	if parsed.Outputs != nil {
		attrs, err := bodyAttributes(parsed.Outputs.Body, "outputs", "")
		if err != nil {
			return nil, err
		}
		m.Outputs = compileOutputs(attrs)
	}

	for _, block := range parsed.Modules {
		if _, exists := m.Modules[block.Name]; exists {
			return nil, fmt.Errorf("duplicate module %q", block.Name)
		}
		val, err := literalAttributes(block.Body, "module", block.Name)
		if err != nil {
			return nil, err
		}
		m.Modules[block.Name] = val
	}

	for _, block := range parsed.Templates {
		if _, exists := m.Templates[block.Name]; exists {
			return nil, fmt.Errorf("duplicate template %q", block.Name)
		}
		m.Templates[block.Name] = manifest.Template{Path: block.Path, Description: block.Description}
	}

	for _, block := range parsed.Configurations {
		if _, exists := m.Configurations[block.Name]; exists {
			return nil, fmt.Errorf("duplicate configuration %q", block.Name)
		}
		val, err := literalAttributes(block.Body, "configuration", block.Name)
		if err != nil {
			return nil, err
		}
		m.Configurations[block.Name] = val
	}

	return m, nil
}

// exprDefined checks if an HCL expression was actually present in the
// source code. The decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a simple nil check is insufficient; a
// real attribute occupies bytes in the file.
func exprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	return exprRange.End.Byte > exprRange.Start.Byte
}

// bodyAttributes flattens an attribute-only block body into a map of
// expressions. Nested blocks and duplicate attributes are errors.
func bodyAttributes(body hcl.Body, kind, name string) (map[string]hcl.Expression, error) {
	if body == nil {
		return nil, nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		if name == "" {
			return nil, fmt.Errorf("failed to decode %s: %w", kind, diags)
		}
		return nil, fmt.Errorf("failed to decode %s %q: %w", kind, name, diags)
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for attrName, attr := range attrs {
		exprMap[attrName] = attr.Expr
	}
	return exprMap, nil
}

// literalAttributes decodes a block whose attributes must be constant and
// renders them as a single cty object.
func literalAttributes(body hcl.Body, kind, name string) (cty.Value, error) {
	attrs, err := bodyAttributes(body, kind, name)
	if err != nil {
		return cty.NilVal, err
	}
	vals := make(map[string]cty.Value, len(attrs))
	for attrName, expr := range attrs {
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("failed to evaluate %q in %s %q: %w", attrName, kind, name, diags)
		}
		vals[attrName] = val
	}
	if len(vals) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(vals), nil
}

// locateManifest resolves a load target to a manifest file path.
func locateManifest(path string) (string, error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	manifestPath := filepath.Join(path, ManifestFileName)
	if _, err := os.Stat(manifestPath); err != nil {
		return "", fmt.Errorf("no %s found in %s", ManifestFileName, path)
	}
	return manifestPath, nil
}
