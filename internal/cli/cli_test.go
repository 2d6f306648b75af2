package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_ListCommandWithDefaults(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, cmd, shouldExit, err := Parse([]string{"-list"}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.True(t, cmd.List)
	require.Empty(t, cmd.Describe)
	require.Equal(t, "yaml", cfg.Output)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Empty(t, cfg.ManifestPaths)
}

func TestParse_DescribeWithFilters(t *testing.T) {
	t.Parallel()

	args := []string{
		"-describe", "linear_reg",
		"-mode", "regression",
		"-engine", "glm",
		"-manifests", "/tmp/models",
		"-output", "json",
	}
	cfg, cmd, shouldExit, err := Parse(args, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, "linear_reg", cmd.Describe)
	require.Equal(t, "regression", cmd.Mode)
	require.Equal(t, "glm", cmd.Engine)
	require.Equal(t, "json", cfg.Output)
	require.Equal(t, []string{"/tmp/models"}, cfg.ManifestPaths)
}

func TestParse_NoCommandPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Contains(t, out.String(), "Usage:")
}

func TestParse_HelpFlagExitsCleanly(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, _, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	require.True(t, shouldExit)
}

func TestParse_InvalidValuesExitWithCodeTwo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
	}{
		{name: "bad output", args: []string{"-list", "-output", "xml"}},
		{name: "bad log format", args: []string{"-list", "-log-format", "pretty"}},
		{name: "bad log level", args: []string{"-list", "-log-level", "loud"}},
		{name: "unknown flag", args: []string{"-unknown"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)

			exitErr, ok := err.(*ExitError)
			require.True(t, ok, "expected an ExitError, got %T", err)
			require.Equal(t, 2, exitErr.Code)
			require.Equal(t, exitErr.Message, exitErr.Error())
		})
	}
}

func TestParse_CaseInsensitiveEnumFlags(t *testing.T) {
	t.Parallel()

	cfg, _, shouldExit, err := Parse([]string{"-list", "-output", "JSON", "-log-level", "DEBUG"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, "json", cfg.Output)
	require.Equal(t, "debug", cfg.LogLevel)
}
