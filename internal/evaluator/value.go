package evaluator

import (
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/resolver"
)

// objectOrEmpty renders a name map as a cty object, empty maps included.
func objectOrEmpty(vals map[string]cty.Value) cty.Value {
	if len(vals) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vals)
}

// stringList renders an ordered string slice as a cty list.
func stringList(names []string) cty.Value {
	if len(names) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, 0, len(names))
	for _, name := range names {
		vals = append(vals, cty.StringVal(name))
	}
	return cty.ListVal(vals)
}

// sortedNames returns the sorted keys of a name map.
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// inputsValue renders input metadata for evaluation scopes: one object per
// declared input carrying name, url and the digest of its resolved tree.
func inputsValue(specs map[string]resolver.Spec, resolved resolver.ResolvedInputs) cty.Value {
	if len(specs) == 0 {
		return cty.EmptyObjectVal
	}
	vals := make(map[string]cty.Value, len(specs))
	for name, spec := range specs {
		digest := ""
		if handle, ok := resolved.Get(name); ok {
			digest = handle.Digest
		}
		vals[name] = cty.ObjectVal(map[string]cty.Value{
			"name":   cty.StringVal(name),
			"url":    cty.StringVal(spec.URL),
			"digest": cty.StringVal(digest),
		})
	}
	return cty.ObjectVal(vals)
}

// templatesValue renders the template listing.
func templatesValue(templates map[string]manifest.Template) cty.Value {
	if len(templates) == 0 {
		return cty.EmptyObjectVal
	}
	vals := make(map[string]cty.Value, len(templates))
	for name, tpl := range templates {
		vals[name] = cty.ObjectVal(map[string]cty.Value{
			"path":        cty.StringVal(tpl.Path),
			"description": cty.StringVal(tpl.Description),
		})
	}
	return cty.ObjectVal(vals)
}
