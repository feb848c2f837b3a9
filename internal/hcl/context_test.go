package hcl

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/lazy"
	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/overlay"
	"github.com/vk/flakego/internal/pkgset"
)

func parseExpr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

// viewOf wraps already-known values in a view.
func viewOf(vals map[string]cty.Value) *overlay.View {
	thunks := make(map[string]*lazy.Thunk[cty.Value], len(vals))
	for name, val := range vals {
		thunks[name] = lazy.FromValue(name, val)
	}
	return overlay.NewView(thunks)
}

func TestBuildEvalContext_ForcesOnlyReferencedKeys(t *testing.T) {
	t.Parallel()

	forced := map[string]bool{}
	thunks := map[string]*lazy.Thunk[cty.Value]{}
	for _, name := range []string{"wanted", "untouched"} {
		thunks[name] = lazy.New(name, func() (cty.Value, error) {
			forced[name] = true
			return cty.StringVal(name), nil
		})
	}
	view := overlay.NewView(thunks)
	expr := parseExpr(t, `prev.wanted`)

	evalCtx, err := buildEvalContext(expr, &scope{final: view, prev: view})

	require.NoError(t, err)
	require.True(t, forced["wanted"])
	require.False(t, forced["untouched"], "unreferenced keys must stay unforced")

	val, diags := expr.Value(evalCtx)
	require.False(t, diags.HasErrors(), diags.Error())
	require.Equal(t, "wanted", val.AsString())
}

func TestBuildEvalContext_IndexedKey(t *testing.T) {
	t.Parallel()

	// Bracket form addresses keys that are not valid HCL identifiers.
	view := viewOf(map[string]cty.Value{"dashed-name": cty.StringVal("v")})
	expr := parseExpr(t, `prev["dashed-name"]`)

	evalCtx, err := buildEvalContext(expr, &scope{final: view, prev: view})

	require.NoError(t, err)
	val, diags := expr.Value(evalCtx)
	require.False(t, diags.HasErrors(), diags.Error())
	require.Equal(t, "v", val.AsString())
}

func TestBuildEvalContext_SystemAndInputs(t *testing.T) {
	t.Parallel()

	ectx := &manifest.EvalContext{
		Self: fakeSelf{
			"inputs": cty.ObjectVal(map[string]cty.Value{
				"basepkgs": cty.ObjectVal(map[string]cty.Value{
					"url": cty.StringVal("path:./pkgs"),
				}),
			}),
		},
		System: "x86_64-linux",
	}
	expr := parseExpr(t, `"${system} ${inputs.basepkgs.url}"`)

	evalCtx, err := buildEvalContext(expr, &scope{ectx: ectx})

	require.NoError(t, err)
	val, diags := expr.Value(evalCtx)
	require.False(t, diags.HasErrors(), diags.Error())
	require.Equal(t, "x86_64-linux path:./pkgs", val.AsString())
}

func TestBuildEvalContext_PkgsPrefersRealizedCollection(t *testing.T) {
	t.Parallel()

	collection := pkgset.NewCollection("x86_64-linux", map[string]cty.Value{
		"hello": cty.ObjectVal(map[string]cty.Value{"version": cty.StringVal("2.12")}),
	})
	ectx := &manifest.EvalContext{
		Self:   fakeSelf{"pkgs": cty.StringVal("stale")},
		System: "x86_64-linux",
		Pkgs:   &collection,
	}
	expr := parseExpr(t, `pkgs.hello.version`)

	evalCtx, err := buildEvalContext(expr, &scope{ectx: ectx})

	require.NoError(t, err)
	val, diags := expr.Value(evalCtx)
	require.False(t, diags.HasErrors(), diags.Error())
	require.Equal(t, "2.12", val.AsString())
}

func TestBuildEvalContext_PkgsFallsBackToSelf(t *testing.T) {
	t.Parallel()

	ectx := &manifest.EvalContext{
		Self:   fakeSelf{"pkgs": cty.EmptyObjectVal},
		System: "x86_64-linux",
	}

	evalCtx, err := buildEvalContext(parseExpr(t, `pkgs`), &scope{ectx: ectx})

	require.NoError(t, err)
	require.Equal(t, cty.EmptyObjectVal, evalCtx.Variables["pkgs"])
}

func TestBuildEvalContext_Failure(t *testing.T) {
	t.Parallel()

	views := &scope{
		final: viewOf(nil),
		prev:  viewOf(nil),
	}
	withSelf := &scope{
		ectx: &manifest.EvalContext{Self: fakeSelf{}, System: "x86_64-linux"},
	}

	cases := []struct {
		name        string
		expr        string
		scope       *scope
		errContains string
	}{
		{
			name:        "final outside overlay bodies",
			expr:        `final.cc`,
			scope:       withSelf,
			errContains: `"final" is only available inside overlay bodies`,
		},
		{
			name:        "bare final",
			expr:        `final`,
			scope:       views,
			errContains: `"final" must be followed by a package name`,
		},
		{
			name:        "self in exported overlay",
			expr:        `self.description`,
			scope:       views,
			errContains: `"self" is not available in exported overlays`,
		},
		{
			name:        "system in exported overlay",
			expr:        `system`,
			scope:       views,
			errContains: `"system" is not available in exported overlays`,
		},
		{
			name:        "bare self",
			expr:        `self`,
			scope:       withSelf,
			errContains: `"self" must be followed by a flake attribute name`,
		},
		{
			name:        "missing self field propagates",
			expr:        `self.ghost`,
			scope:       withSelf,
			errContains: `flake has no attribute "ghost"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := buildEvalContext(parseExpr(t, tc.expr), tc.scope)

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestBuildEvalContext_MissingPrevKey(t *testing.T) {
	t.Parallel()

	views := &scope{final: viewOf(nil), prev: viewOf(nil)}

	_, err := buildEvalContext(parseExpr(t, `prev.ghost`), views)

	var missing *overlay.MissingKeyError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "ghost", missing.Key)
}

func TestBuildEvalContext_UnknownRootIsLeftToEvaluation(t *testing.T) {
	t.Parallel()

	ectx := &manifest.EvalContext{Self: fakeSelf{}, System: "x86_64-linux"}
	expr := parseExpr(t, `nosuch.thing`)

	evalCtx, err := buildEvalContext(expr, &scope{ectx: ectx})

	require.NoError(t, err)
	_, diags := expr.Value(evalCtx)
	require.True(t, diags.HasErrors())
	require.Contains(t, diags.Error(), "Unknown variable")
}
