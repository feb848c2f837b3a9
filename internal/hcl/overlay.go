package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/lazy"
	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/overlay"
)

// compileOverlay turns one overlay block's attributes into an overlay
// function. Each attribute becomes a deferred override: its expression
// runs the first time the key is demanded, against the views the
// collection hands back at apply time. ectx is nil for exported overlays,
// which may therefore reference only final and prev.
func compileOverlay(name string, attrs map[string]hcl.Expression, ectx *manifest.EvalContext) overlay.Func {
	return func(final, prev *overlay.View) (overlay.Overrides, error) {
		overrides := make(overlay.Overrides, len(attrs))
		for key, expr := range attrs {
			overrides[key] = lazy.New(name+"."+key, func() (cty.Value, error) {
				evalCtx, err := buildEvalContext(expr, &scope{ectx: ectx, final: final, prev: prev})
				if err != nil {
					return cty.NilVal, fmt.Errorf("failed to evaluate %q in overlay %q: %w", key, name, err)
				}
				val, diags := expr.Value(evalCtx)
				if diags.HasErrors() {
					return cty.NilVal, fmt.Errorf("failed to evaluate %q in overlay %q: %w", key, name, diags)
				}
				return val, nil
			})
		}
		return overrides, nil
	}
}

// inlineOverlay pairs a pkgs_overlay block's label with its attribute
// expressions, preserving declaration order.
type inlineOverlay struct {
	name  string
	attrs map[string]hcl.Expression
}

// compileOverlaySequence builds the function producing the ordered overlay
// sequence for the package-set build: the overlays selected by the
// use_overlays expression first, then the inline pkgs_overlay blocks in
// declaration order. Selected overlays are re-bound to the running
// evaluation, so unlike their exported form they may reference self.
func compileOverlaySequence(useExpr hcl.Expression, exported map[string]map[string]hcl.Expression, inline []inlineOverlay) manifest.OverlaysFunc {
	return func(ectx *manifest.EvalContext) ([]manifest.NamedOverlay, error) {
		var sequence []manifest.NamedOverlay
		if useExpr != nil {
			names, err := evalOverlayNames(useExpr, ectx)
			if err != nil {
				return nil, err
			}
			for _, name := range names {
				attrs, ok := exported[name]
				if !ok {
					return nil, fmt.Errorf("use_overlays names unknown overlay %q", name)
				}
				sequence = append(sequence, manifest.NamedOverlay{Name: name, Func: compileOverlay(name, attrs, ectx)})
			}
		}
		for _, block := range inline {
			sequence = append(sequence, manifest.NamedOverlay{Name: block.name, Func: compileOverlay(block.name, block.attrs, ectx)})
		}
		return sequence, nil
	}
}

// evalOverlayNames evaluates the use_overlays expression to a list of
// exported overlay names. A null result selects nothing.
func evalOverlayNames(expr hcl.Expression, ectx *manifest.EvalContext) ([]string, error) {
	evalCtx, err := buildEvalContext(expr, &scope{ectx: ectx})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate use_overlays: %w", err)
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate use_overlays: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return nil, fmt.Errorf("use_overlays must be a list of overlay names, got %s", ty.FriendlyName())
	}
	var names []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() || elem.Type() != cty.String {
			return nil, fmt.Errorf("use_overlays must contain only overlay names")
		}
		names = append(names, elem.AsString())
	}
	return names, nil
}
