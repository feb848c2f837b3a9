// Package manifest defines the format-agnostic flake model, along with the
// Loader interface for parsing it from various sources.
//
// The `manifest.Manifest` is the single source of truth for the evaluator:
// its function-valued sections close over whatever host language they were
// written in, so evaluation never touches syntax. The concrete HCL
// implementation lives in a separate package.
package manifest
