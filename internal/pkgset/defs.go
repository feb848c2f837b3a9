package pkgset

import (
	"context"
	"fmt"
	"slices"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/ctxlog"
	"github.com/vk/flakego/internal/fsutil"
	"github.com/vk/flakego/internal/schema"
)

// DefExtension is the file suffix of package definition files.
const DefExtension = ".pkg.hcl"

// DefsFactory builds base collections from package definition files found
// in a source tree, typically the tree of a resolved input.
type DefsFactory struct {
	source billy.Filesystem
}

// NewDefsFactory creates a factory reading definitions from the given
// filesystem.
func NewDefsFactory(source billy.Filesystem) *DefsFactory {
	return &DefsFactory{source: source}
}

// Base loads every package definition in the source tree and materializes
// the subset available to the given system and configuration. Packages
// whose `systems` list excludes the requested system are skipped, as are
// unfree packages unless the configuration sets `allow_unfree`.
func (f *DefsFactory) Base(ctx context.Context, system SystemID, config Config) (Collection, error) {
	logger := ctxlog.FromContext(ctx)

	filePaths, err := fsutil.FindFilesByExtension(f.source, ".", DefExtension)
	if err != nil {
		return Collection{}, fmt.Errorf("failed to walk package definition tree: %w", err)
	}

	if len(filePaths) == 0 {
		logger.Warn("No package definition files found in source tree.", "extension", DefExtension)
	}

	parser := hclparse.NewParser()
	allowUnfree := config.Bool("allow_unfree")
	pkgs := make(map[string]cty.Value)

	for _, filePath := range filePaths {
		src, err := util.ReadFile(f.source, filePath)
		if err != nil {
			return Collection{}, fmt.Errorf("failed to read package definition file %s: %w", filePath, err)
		}

		hclFile, diags := parser.ParseHCL(src, filePath)
		if diags.HasErrors() {
			return Collection{}, fmt.Errorf("failed to parse package definition file %s: %w", filePath, diags)
		}

		var parsedFile schema.PackageFile
		diags = gohcl.DecodeBody(hclFile.Body, nil, &parsedFile)
		if diags.HasErrors() {
			return Collection{}, fmt.Errorf("failed to decode package definition file %s: %w", filePath, diags)
		}

		for _, def := range parsedFile.Packages {
			if len(def.Systems) > 0 && !slices.Contains(def.Systems, string(system)) {
				logger.Debug("Skipping package unavailable on system.", "package", def.Name, "system", system)
				continue
			}
			if def.Unfree && !allowUnfree {
				logger.Debug("Skipping unfree package.", "package", def.Name)
				continue
			}
			if _, exists := pkgs[def.Name]; exists {
				return Collection{}, fmt.Errorf("duplicate package definition %q in %s", def.Name, filePath)
			}

			val, err := packageValue(def, system)
			if err != nil {
				return Collection{}, fmt.Errorf("invalid package definition %q in %s: %w", def.Name, filePath, err)
			}
			pkgs[def.Name] = val
		}
	}

	logger.Debug("Base collection loaded from package definitions.", "system", system, "packages", len(pkgs), "files", len(filePaths))
	return Collection{system: system, pkgs: pkgs}, nil
}

// packageValue converts a decoded definition into the object value exposed
// to overlays and outputs.
func packageValue(def *schema.PackageDef, system SystemID) (cty.Value, error) {
	attrs := map[string]cty.Value{
		"name":        cty.StringVal(def.Name),
		"version":     cty.StringVal(def.Version),
		"description": cty.StringVal(def.Description),
		"system":      cty.StringVal(string(system)),
		"unfree":      cty.BoolVal(def.Unfree),
	}

	if len(def.Depends) == 0 {
		attrs["depends"] = cty.ListValEmpty(cty.String)
	} else {
		depends := make([]cty.Value, 0, len(def.Depends))
		for _, dep := range def.Depends {
			depends = append(depends, cty.StringVal(dep))
		}
		attrs["depends"] = cty.ListVal(depends)
	}

	if def.Meta != nil {
		meta, err := metaValue(def.Meta)
		if err != nil {
			return cty.NilVal, err
		}
		attrs["meta"] = meta
	}

	return cty.ObjectVal(attrs), nil
}

// metaValue evaluates the literal attributes of a meta block into an
// object value.
func metaValue(meta *schema.PackageMeta) (cty.Value, error) {
	metaAttrs, diags := meta.Body.JustAttributes()
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to read meta block: %w", diags)
	}

	vals := make(map[string]cty.Value, len(metaAttrs))
	for name, attr := range metaAttrs {
		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() {
			return cty.NilVal, fmt.Errorf("failed to evaluate meta attribute %q: %w", name, valDiags)
		}
		vals[name] = val
	}

	if len(vals) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(vals), nil
}
