package evaluator

import "fmt"

// MissingOutputsError reports a manifest with no outputs section. Outputs
// are the one required section; everything else has a default.
type MissingOutputsError struct {
	Path string
}

func (e *MissingOutputsError) Error() string {
	if e.Path == "" {
		return "manifest declares no outputs"
	}
	return fmt.Sprintf("manifest %s declares no outputs", e.Path)
}

// UnresolvedInputError reports a reference to an input that is absent from
// the resolved input set.
type UnresolvedInputError struct {
	Input string
}

func (e *UnresolvedInputError) Error() string {
	return fmt.Sprintf("input %q is not resolved; declare it in the inputs section", e.Input)
}

// SelfReferenceCycleError reports a manifest function reading a flake
// field that is still being computed in the current phase.
type SelfReferenceCycleError struct {
	Field string
}

func (e *SelfReferenceCycleError) Error() string {
	return fmt.Sprintf("self-reference cycle: flake attribute %q is still being computed", e.Field)
}

// ConfigEvaluationError reports a failing pkgs_config or pkgs_overlay
// function.
type ConfigEvaluationError struct {
	Section string
	Err     error
}

func (e *ConfigEvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate %s: %v", e.Section, e.Err)
}

func (e *ConfigEvaluationError) Unwrap() error {
	return e.Err
}
