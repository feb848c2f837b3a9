package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/overlay"
)

// scope describes which variables an expression may reference. The final
// and prev views exist only inside overlay bodies. ectx is nil when an
// exported overlay runs outside the manifest that declared it, in which
// case only final and prev are in scope.
type scope struct {
	ectx  *manifest.EvalContext
	final *overlay.View
	prev  *overlay.View
}

// buildEvalContext assembles the evaluation context for a single
// expression. It scans the expression's traversals and materializes only
// what is referenced: each `final.<name>` or `prev.<name>` forces exactly
// that key of the underlying view, and each `self.<field>` reads exactly
// that flake attribute. Roots outside the scope's vocabulary are left
// unbound so that expression evaluation reports them in its own
// diagnostics.
func buildEvalContext(expr hcl.Expression, s *scope) (*hcl.EvalContext, error) {
	vars := make(map[string]cty.Value)
	finalVals := make(map[string]cty.Value)
	prevVals := make(map[string]cty.Value)
	selfVals := make(map[string]cty.Value)

	for _, traversal := range expr.Variables() {
		root := traversal.RootName()
		switch root {
		case "final", "prev":
			if s.final == nil || s.prev == nil {
				return nil, fmt.Errorf("%q is only available inside overlay bodies", root)
			}
			key, ok := traversalKey(traversal)
			if !ok {
				return nil, fmt.Errorf("%q must be followed by a package name", root)
			}
			view, vals := s.final, finalVals
			if root == "prev" {
				view, vals = s.prev, prevVals
			}
			if _, done := vals[key]; done {
				continue
			}
			val, err := view.Value(key)
			if err != nil {
				return nil, err
			}
			vals[key] = val
		case "self":
			if s.ectx == nil {
				return nil, fmt.Errorf("%q is not available in exported overlays", root)
			}
			field, ok := traversalKey(traversal)
			if !ok {
				return nil, fmt.Errorf("%q must be followed by a flake attribute name", root)
			}
			if _, done := selfVals[field]; done {
				continue
			}
			val, err := s.ectx.Self.Field(field)
			if err != nil {
				return nil, err
			}
			selfVals[field] = val
		case "system":
			if s.ectx == nil {
				return nil, fmt.Errorf("%q is not available in exported overlays", root)
			}
			vars["system"] = cty.StringVal(string(s.ectx.System))
		case "inputs":
			if s.ectx == nil {
				return nil, fmt.Errorf("%q is not available in exported overlays", root)
			}
			val, err := s.ectx.Self.Field("inputs")
			if err != nil {
				return nil, err
			}
			vars["inputs"] = val
		case "pkgs":
			if s.ectx == nil {
				return nil, fmt.Errorf("%q is not available in exported overlays", root)
			}
			// Outputs see the realized collection; everywhere else the
			// read goes through self, where an in-flight collection is
			// reported as a self-reference cycle.
			if s.ectx.Pkgs != nil {
				vars["pkgs"] = s.ectx.Pkgs.AsObject()
				continue
			}
			val, err := s.ectx.Self.Field("pkgs")
			if err != nil {
				return nil, err
			}
			vars["pkgs"] = val
		}
	}

	if len(finalVals) > 0 {
		vars["final"] = cty.ObjectVal(finalVals)
	}
	if len(prevVals) > 0 {
		vars["prev"] = cty.ObjectVal(prevVals)
	}
	if len(selfVals) > 0 {
		vars["self"] = cty.ObjectVal(selfVals)
	}

	return &hcl.EvalContext{Variables: vars, Functions: stdFunctions}, nil
}

// traversalKey extracts the step following a traversal's root, so both
// final.gcc and final["gcc"] address the key "gcc".
func traversalKey(traversal hcl.Traversal) (string, bool) {
	if len(traversal) < 2 {
		return "", false
	}
	switch step := traversal[1].(type) {
	case hcl.TraverseAttr:
		return step.Name, true
	case hcl.TraverseIndex:
		if step.Key.Type() == cty.String {
			return step.Key.AsString(), true
		}
	}
	return "", false
}
