package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// AssertOutputString verifies that the evaluation succeeded and that the
// named flake attribute is a string with the expected value. The path uses
// the CLI selector syntax, e.g. "pkgs.hello.version".
func AssertOutputString(t *testing.T, result *EvalResult, path, want string) {
	t.Helper()

	require.NoError(t, result.Err, "evaluation failed. Logs:\n%s", result.LogOutput)
	require.NotNil(t, result.Flake)

	val, err := result.Flake.Attr(path)
	require.NoError(t, err, "attribute %q not found. Logs:\n%s", path, result.LogOutput)
	require.Equal(t, cty.String, val.Type(), "attribute %q is not a string", path)
	require.Equal(t, want, val.AsString(), "attribute %q has the wrong value", path)
}

// AssertEvalFails verifies that the evaluation failed and that the error
// message contains the given fragment.
func AssertEvalFails(t *testing.T, result *EvalResult, errContains string) {
	t.Helper()

	require.Error(t, result.Err, "evaluation unexpectedly succeeded. Logs:\n%s", result.LogOutput)
	require.ErrorContains(t, result.Err, errContains)
}
