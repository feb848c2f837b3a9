// Package evaluator turns a manifest into an evaluated Flake for one
// target system.
//
// Evaluation runs a fixed phase order: configuration, overlay sequence,
// package collection, outputs, and finally the self-tie that points the
// flake's `self` at the flake itself. Manifest functions observe the
// phases through a partial view of the flake: fields settled by earlier
// phases read normally, fields still being computed raise
// SelfReferenceCycleError, and unknown fields are plain errors.
//
// A single evaluation is synchronous and deterministic. Parallelism exists
// only across systems (EvaluateSystems), whose evaluations share nothing
// but the immutable manifest and resolved inputs.
package evaluator
