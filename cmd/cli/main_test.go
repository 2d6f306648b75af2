package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/modelspec/internal/cli"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ListsBuiltinModels(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-list"})

	require.NoError(t, err)
	require.Contains(t, out.String(), "linear_reg")
	require.Contains(t, out.String(), "mixture_da")
	require.Contains(t, out.String(), "null_model")
}

func TestRun_DescribeUnknownModelFails(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, []string{"-describe", "ghost"})
	require.Error(t, err)
}

func TestRun_InvalidFlagReturnsExitError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, []string{"-list", "-output", "xml"})
	require.Error(t, err)

	exitErr, ok := err.(*cli.ExitError)
	require.True(t, ok, "expected an ExitError, got %T", err)
	require.Equal(t, 2, exitErr.Code)
}
