package hcl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/pkgset"
)

// evalAttributes strictly evaluates every attribute of a section, in name
// order so failures are reported deterministically.
func evalAttributes(attrs map[string]hcl.Expression, section string, s *scope) (map[string]cty.Value, error) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	vals := make(map[string]cty.Value, len(attrs))
	for _, name := range names {
		expr := attrs[name]
		evalCtx, err := buildEvalContext(expr, s)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %q in %s: %w", name, section, err)
		}
		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate %q in %s: %w", name, section, diags)
		}
		vals[name] = val
	}
	return vals, nil
}

// compileConfig turns the pkgs_config block into the function producing
// the package-set configuration record.
func compileConfig(attrs map[string]hcl.Expression) manifest.ConfigFunc {
	return func(ectx *manifest.EvalContext) (pkgset.Config, error) {
		vals, err := evalAttributes(attrs, "pkgs_config", &scope{ectx: ectx})
		if err != nil {
			return nil, err
		}
		return pkgset.Config(vals), nil
	}
}

// compilePkgsForSystem turns the pkgs_for_system block into the function
// producing the complete package collection, bypassing the base factory
// and overlay pipeline.
func compilePkgsForSystem(attrs map[string]hcl.Expression) manifest.PkgsFunc {
	return func(ectx *manifest.EvalContext) (pkgset.Collection, error) {
		vals, err := evalAttributes(attrs, "pkgs_for_system", &scope{ectx: ectx})
		if err != nil {
			return pkgset.Collection{}, err
		}
		return pkgset.NewCollection(ectx.System, vals), nil
	}
}

// compileOutputs turns the outputs block into the function producing the
// flake's outputs from the realized collection.
func compileOutputs(attrs map[string]hcl.Expression) manifest.OutputsFunc {
	return func(ectx *manifest.EvalContext) (map[string]cty.Value, error) {
		return evalAttributes(attrs, "outputs", &scope{ectx: ectx})
	}
}
