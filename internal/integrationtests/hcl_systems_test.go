package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flakego/internal/pkgset"
	"github.com/vk/flakego/internal/testutil"
)

func TestSystems_DefsFilterByDeclaredSystems(t *testing.T) {
	flakeHCL := `
		input "basepkgs" {
			url = "mem:basepkgs"
		}

		outputs {
			names = join(",", sort(keys(pkgs)))
		}
	`
	fixtures := map[string]map[string]string{
		"basepkgs": {
			"tools.pkg.hcl": `
				package "hello" {
					version = "2.12.1"
				}

				package "systemd" {
					version = "255"
					systems = ["x86_64-linux", "aarch64-linux"]
				}

				package "xcode-wrapper" {
					version = "15"
					systems = ["aarch64-darwin"]
				}
			`,
		},
	}
	files := map[string]string{"flake.hcl": flakeHCL}

	cases := []struct {
		system pkgset.SystemID
		names  string
	}{
		{system: "x86_64-linux", names: "hello,systemd"},
		{system: "aarch64-darwin", names: "hello,xcode-wrapper"},
		{system: "aarch64-linux", names: "hello,systemd"},
	}
	for _, tc := range cases {
		t.Run(string(tc.system), func(t *testing.T) {
			result := testutil.EvaluateFlake(t, files, testutil.EvalOptions{System: tc.system, Fixtures: fixtures})

			testutil.AssertOutputString(t, result, "names", tc.names)
			require.Equal(t, tc.system, result.Flake.System())
		})
	}
}

func TestSystems_UnfreeGatedByConfig(t *testing.T) {
	fixtures := map[string]map[string]string{
		"basepkgs": {
			"pkgs.pkg.hcl": `
				package "hello" {
					version = "2.12.1"
				}

				package "slack" {
					version = "4.39"
					unfree  = true
				}
			`,
		},
	}

	t.Run("excluded by default", func(t *testing.T) {
		flakeHCL := `
			input "basepkgs" {
				url = "mem:basepkgs"
			}

			outputs {
				names = join(",", sort(keys(pkgs)))
			}
		`

		result := testutil.EvaluateFlake(t, map[string]string{"flake.hcl": flakeHCL}, testutil.EvalOptions{Fixtures: fixtures})

		testutil.AssertOutputString(t, result, "names", "hello")
	})

	t.Run("included when allowed", func(t *testing.T) {
		flakeHCL := `
			input "basepkgs" {
				url = "mem:basepkgs"
			}

			pkgs_config {
				allow_unfree = true
			}

			outputs {
				names = join(",", sort(keys(pkgs)))
			}
		`

		result := testutil.EvaluateFlake(t, map[string]string{"flake.hcl": flakeHCL}, testutil.EvalOptions{Fixtures: fixtures})

		testutil.AssertOutputString(t, result, "names", "hello,slack")
	})
}

func TestSystems_SystemThreadsThroughEveryScope(t *testing.T) {
	// The same manifest evaluated for two systems yields fully independent
	// results; `system` is in scope for config, overlays and outputs alike.
	flakeHCL := `
		input "basepkgs" {
			url = "mem:basepkgs"
		}

		pkgs_config {
			allow_unfree = system == "x86_64-linux"
		}

		pkgs_overlay "brand" {
			hello = merge(prev.hello, { platform = system })
		}

		outputs {
			platform = pkgs.hello.platform
			built_on = pkgs.hello.system
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
	}
	files := map[string]string{"flake.hcl": flakeHCL}

	linux := testutil.EvaluateFlake(t, files, testutil.EvalOptions{System: "x86_64-linux", Fixtures: fixtures})
	darwin := testutil.EvaluateFlake(t, files, testutil.EvalOptions{System: "aarch64-darwin", Fixtures: fixtures})

	testutil.AssertOutputString(t, linux, "platform", "x86_64-linux")
	testutil.AssertOutputString(t, linux, "built_on", "x86_64-linux")
	testutil.AssertOutputString(t, darwin, "platform", "aarch64-darwin")
	testutil.AssertOutputString(t, darwin, "built_on", "aarch64-darwin")

	require.NoError(t, linux.Err)
	require.NoError(t, darwin.Err)
	assert.True(t, linux.Flake.Config().Bool("allow_unfree"))
	assert.False(t, darwin.Flake.Config().Bool("allow_unfree"))
}
