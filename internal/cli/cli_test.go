package cli

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/flakego/internal/pkgset"
	"github.com/vk/flakego/internal/resolver"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	config, shouldExit, err := Parse([]string{"./demo"}, io.Discard)

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, "./demo", config.Target)
	require.Equal(t, "", config.Attr)
	require.Equal(t, pkgset.CurrentSystem(), config.System)
	require.Equal(t, "json", config.LogFormat)
	require.Equal(t, "info", config.LogLevel)
	require.Equal(t, resolver.DefaultCacheTTL, config.InputTTL)
	require.Equal(t, resolver.DefaultFetchTimeout, config.FetchTimeout)
}

func TestParse_TargetSelector(t *testing.T) {
	t.Parallel()

	config, shouldExit, err := Parse(
		[]string{"--system", "aarch64-darwin", "./demo#pkgs.hello.version"},
		io.Discard,
	)

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, "./demo", config.Target)
	require.Equal(t, "pkgs.hello.version", config.Attr)
	require.Equal(t, pkgset.SystemID("aarch64-darwin"), config.System)
}

func TestParse_TargetFlagWinsOverPositional(t *testing.T) {
	t.Parallel()

	config, _, err := Parse([]string{"--target", "./a", "./b"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "./a", config.Target)

	config, _, err = Parse([]string{"-t", "./c"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "./c", config.Target)
}

func TestParse_AttrFlagWinsOverSelector(t *testing.T) {
	t.Parallel()

	config, _, err := Parse([]string{"--attr", "description", "./demo#pkgs.hello"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "./demo", config.Target)
	require.Equal(t, "description", config.Attr)
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	config, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Nil(t, config)
	require.Contains(t, out.String(), "Usage:")
}

func TestParse_NoTargetPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	config, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Nil(t, config)
	require.Contains(t, out.String(), "Usage:")
}

func TestParse_Failure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		args        []string
		errContains string
	}{
		{
			name:        "unknown flag",
			args:        []string{"--this-is-not-a-valid-flag", "./demo"},
			errContains: "flag provided but not defined",
		},
		{
			name:        "invalid log format",
			args:        []string{"--log-format", "yaml", "./demo"},
			errContains: "invalid log-format",
		},
		{
			name:        "invalid log level",
			args:        []string{"--log-level", "loud", "./demo"},
			errContains: "invalid log-level",
		},
		{
			name:        "invalid system identifier",
			args:        []string{"--system", "linux", "./demo"},
			errContains: "invalid system identifier",
		},
		{
			name:        "selector without a path",
			args:        []string{"#pkgs.hello"},
			errContains: "target names no manifest path",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := Parse(tc.args, io.Discard)

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errContains)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			require.Equal(t, 2, exitErr.Code)
		})
	}
}
