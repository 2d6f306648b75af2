// Package testutil provides helpers for building isolated registries and
// sample data in tests. Every helper constructs independent instances so
// tests cannot pollute each other through shared registration state.
package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/modelspec/internal/app"
	"github.com/vk/modelspec/internal/data"
	"github.com/vk/modelspec/internal/hclconf"
	"github.com/vk/modelspec/internal/registry"
)

// NewApp builds an App over the given modules (the built-in model packages
// when none are given), logging into the returned buffer.
func NewApp(t *testing.T, modules ...registry.Module) (*app.App, *bytes.Buffer) {
	t.Helper()

	logBuf := &bytes.Buffer{}
	cfg := &app.Config{LogLevel: "debug", LogFormat: "text", Verbosity: 1}
	application, err := app.New(logBuf, cfg, hclconf.NewLoader(), modules...)
	require.NoError(t, err, "app construction failed; logs:\n%s", logBuf.String())
	return application, logBuf
}

// NewRegistry builds a validated registry over the given modules.
func NewRegistry(t *testing.T, modules ...registry.Module) *registry.Registry {
	t.Helper()
	application, _ := NewApp(t, modules...)
	return application.Registry()
}

// RegressionFrame returns a small numeric training table with outcome y
// and predictors x1, x2, where y = 2*x1 + 1 exactly.
func RegressionFrame(t *testing.T) *data.Frame {
	t.Helper()
	frame, err := data.NewFrame(
		data.Column{Name: "y", Numeric: []float64{3, 5, 7, 9, 11, 13}},
		data.Column{Name: "x1", Numeric: []float64{1, 2, 3, 4, 5, 6}},
		data.Column{Name: "x2", Numeric: []float64{2, 1, 4, 3, 6, 5}},
	)
	require.NoError(t, err)
	return frame
}

// ClassificationFrame returns a small two-class training table separable on
// both predictors.
func ClassificationFrame(t *testing.T) *data.Frame {
	t.Helper()
	frame, err := data.NewFrame(
		data.Column{Name: "species", Factor: []string{"a", "a", "a", "b", "b", "b"}},
		data.Column{Name: "x1", Numeric: []float64{1, 1.2, 0.8, 5, 5.3, 4.9}},
		data.Column{Name: "x2", Numeric: []float64{2, 2.1, 1.9, 8, 7.8, 8.2}},
	)
	require.NoError(t, err)
	return frame
}
