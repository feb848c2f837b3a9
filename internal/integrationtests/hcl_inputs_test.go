package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flakego/internal/evaluator"
	"github.com/vk/flakego/internal/resolver"
	"github.com/vk/flakego/internal/testutil"
)

func TestInputs_MetadataVisibleInOutputs(t *testing.T) {
	flakeHCL := `
		input "basepkgs" {
			url = "mem:basepkgs"
		}

		input "extras" {
			url = "mem:extras"
		}

		outputs {
			base_url      = inputs.basepkgs.url
			extras_digest = inputs.extras.digest
			v             = pkgs.hello.version
		}
	`
	fixtures := map[string]map[string]string{
		"basepkgs": {
			"hello.pkg.hcl": `
				package "hello" {
					version = "2.12.1"
				}
			`,
		},
		"extras": {
			"README.md": "extra content",
		},
	}

	result := testutil.EvaluateFlake(t, map[string]string{"flake.hcl": flakeHCL}, testutil.EvalOptions{Fixtures: fixtures})

	testutil.AssertOutputString(t, result, "base_url", "mem:basepkgs")
	testutil.AssertOutputString(t, result, "v", "2.12.1")

	digest, err := result.Flake.Attr("extras_digest")
	require.NoError(t, err)
	assert.Regexp(t, `^sha256:[0-9a-f]{64}$`, digest.AsString())
}

func TestInputs_DigestIsContentAddressed(t *testing.T) {
	// Two inputs with identical trees share a digest; a third with
	// different content does not.
	flakeHCL := `
		input "basepkgs" {
			url = "mem:basepkgs"
		}

		input "mirror" {
			url = "mem:mirror"
		}

		input "other" {
			url = "mem:other"
		}

		outputs {
			same_tree = inputs.basepkgs.digest == inputs.mirror.digest
			diff_tree = inputs.basepkgs.digest == inputs.other.digest
		}
	`
	tree := map[string]string{
		"hello.pkg.hcl": `
			package "hello" {
				version = "2.12.1"
			}
		`,
	}
	fixtures := map[string]map[string]string{
		"basepkgs": tree,
		"mirror":   tree,
		"other":    {"hello.pkg.hcl": `package "hello" { version = "0.1" }`},
	}

	result := testutil.EvaluateFlake(t, map[string]string{"flake.hcl": flakeHCL}, testutil.EvalOptions{Fixtures: fixtures})

	require.NoError(t, result.Err, "Logs:\n%s", result.LogOutput)
	same, err := result.Flake.Attr("same_tree")
	require.NoError(t, err)
	assert.True(t, same.True())

	diff, err := result.Flake.Attr("diff_tree")
	require.NoError(t, err)
	assert.False(t, diff.True())
}

func TestInputs_BaseInputSelectsCollectionSource(t *testing.T) {
	// base_input redirects the collection build away from the conventional
	// input name.
	flakeHCL := `
		base_input = "custompkgs"

		input "basepkgs" {
			url = "mem:decoy"
		}

		input "custompkgs" {
			url = "mem:custom"
		}

		outputs {
			v = pkgs.hello.version
		}
	`
	fixtures := map[string]map[string]string{
		"decoy":  {"hello.pkg.hcl": `package "hello" { version = "0.0.1" }`},
		"custom": {"hello.pkg.hcl": `package "hello" { version = "7.7.7" }`},
	}

	result := testutil.EvaluateFlake(t, map[string]string{"flake.hcl": flakeHCL}, testutil.EvalOptions{Fixtures: fixtures})

	testutil.AssertOutputString(t, result, "v", "7.7.7")
}

func TestInputs_UnresolvedBaseInputFails(t *testing.T) {
	flakeHCL := `
		outputs {
			v = pkgs.hello.version
		}
	`

	result := testutil.EvaluateFlake(t, map[string]string{"flake.hcl": flakeHCL}, testutil.EvalOptions{})

	require.Error(t, result.Err)
	var unresolved *evaluator.UnresolvedInputError
	require.ErrorAs(t, result.Err, &unresolved)
	assert.Equal(t, "basepkgs", unresolved.Input)
}

func TestInputs_FetchFailureNamesTheInput(t *testing.T) {
	// The input is declared but no fixture backs it, so resolution fails
	// before evaluation starts.
	flakeHCL := `
		input "basepkgs" {
			url = "mem:missing"
		}

		outputs {
			v = pkgs.hello.version
		}
	`

	result := testutil.EvaluateFlake(t, map[string]string{"flake.hcl": flakeHCL}, testutil.EvalOptions{})

	require.Error(t, result.Err)
	var fetchErr *resolver.InputFetchError
	require.ErrorAs(t, result.Err, &fetchErr)
	assert.Equal(t, "basepkgs", fetchErr.Name)
	assert.Equal(t, "mem:missing", fetchErr.URL)
}

func TestInputs_UnknownSchemeFails(t *testing.T) {
	flakeHCL := `
		input "basepkgs" {
			url = "gopher:pkgs"
		}

		outputs {
			v = pkgs.hello.version
		}
	`

	result := testutil.EvaluateFlake(t, map[string]string{"flake.hcl": flakeHCL}, testutil.EvalOptions{})

	testutil.AssertEvalFails(t, result, `no fetcher registered for scheme "gopher"`)
}

func TestInputs_PathInputResolvesLocalTree(t *testing.T) {
	// A path: input reads a directory next to the manifest.
	files := map[string]string{
		"flake.hcl": `
			input "basepkgs" {
				url = "path:./vendor/pkgs"
			}

			outputs {
				v = pkgs.hello.version
			}
		`,
		"vendor/pkgs/hello.pkg.hcl": `
			package "hello" {
				version = "2.12.1"
			}
		`,
	}

	result := testutil.EvaluateFlake(t, files, testutil.EvalOptions{})

	testutil.AssertOutputString(t, result, "v", "2.12.1")
}
