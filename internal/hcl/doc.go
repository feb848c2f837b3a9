// Package hcl provides the concrete HCL implementation of the manifest
// Loader interface. It is responsible for parsing flake.hcl, translating
// its blocks into the format-agnostic manifest model, and compiling the
// function-valued sections into closures that evaluate their expressions
// on demand.
//
// Expression scopes are built per expression by scanning its variable
// traversals, so an overlay forces exactly the collection keys it
// references and nothing else. That scanning is what keeps the fixed-point
// semantics lazy: `final.cc` demands one key of the end collection, not
// the whole thing.
package hcl
