package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/modelspec/internal/app"
	"github.com/vk/modelspec/internal/data"
	"github.com/vk/modelspec/internal/dispatch"
	"github.com/vk/modelspec/internal/hclconf"
	"github.com/vk/modelspec/internal/registry"
	"github.com/vk/modelspec/internal/spec"
	"github.com/vk/modelspec/internal/testutil"
)

func TestNew_RegistersCoreModels(t *testing.T) {
	t.Parallel()

	application, _ := testutil.NewApp(t)

	out := &bytes.Buffer{}
	require.NoError(t, application.ListModels(out))
	require.Equal(t, "linear_reg\nmixture_da\nnull_model\n", out.String())
	require.Equal(t, dispatch.Control{Verbosity: 1}, application.Control())
}

func TestDescribe_OutputFormats(t *testing.T) {
	t.Parallel()

	application, _ := testutil.NewApp(t)

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		out := &bytes.Buffer{}
		err := application.Describe(out, "linear_reg", registry.LookupFilter{}, "yaml")
		require.NoError(t, err)
		require.Contains(t, out.String(), "name: linear_reg")
		require.Contains(t, out.String(), "glm")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		out := &bytes.Buffer{}
		err := application.Describe(out, "mixture_da", registry.LookupFilter{Engine: "mda"}, "json")
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		require.Equal(t, "mixture_da", decoded["name"])
	})

	t.Run("unknown model", func(t *testing.T) {
		t.Parallel()

		err := application.Describe(&bytes.Buffer{}, "ghost", registry.LookupFilter{}, "yaml")
		require.ErrorIs(t, err, registry.ErrUnknownModel)
	})
}

func TestNew_ExtraManifestExtendsBuiltinModel(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An extra manifest adds an lm engine to linear_reg, reusing the
	// already-registered glm functions.
	extraManifest := `
model "linear_reg" {
  mode "regression" {
    engines = ["lm"]
  }

  fit "lm" "regression" {
    interface = "formula"
    protect   = ["formula", "data", "weights"]
    func      = "FitLinearGLM"
  }

  predict "lm" "regression" "numeric" {
    func = "PredictLinearGLM"

    args {
      object   = object
      new_data = new_data
    }
  }
}
`
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "extra.hcl")
	require.NoError(t, os.WriteFile(path, []byte(extraManifest), 0600))

	cfg := &app.Config{
		ManifestPaths: []string{path},
		LogLevel:      "error",
		LogFormat:     "text",
	}

	// --- Act ---
	application, err := app.New(&bytes.Buffer{}, cfg, hclconf.NewLoader())

	// --- Assert ---
	require.NoError(t, err)
	engines, err := application.Registry().Engines("linear_reg", "regression")
	require.NoError(t, err)
	require.Equal(t, []string{"glm", "rlm", "lm"}, engines)

	// The added engine fits end to end.
	sp, err := spec.New(application.Registry(), "linear_reg", "regression", nil)
	require.NoError(t, err)
	require.NoError(t, sp.SetEngine("lm", nil))

	frame := testutil.RegressionFrame(t)
	formula, err := data.ParseFormula("y ~ x1")
	require.NoError(t, err)
	mf, err := dispatch.Fit(context.Background(), sp, formula, frame, application.Control())
	require.NoError(t, err)
	require.False(t, mf.Failed())
}

func TestNew_ValidationFailureSurfacesAtStartup(t *testing.T) {
	t.Parallel()

	// A manifest-only model with no Go functions behind it must fail the
	// startup parity check.
	orphanManifest := `
model "orphan" {
  mode "regression" {
    engines = ["mystery"]
  }

  fit "mystery" "regression" {
    interface = "formula"
    func      = "FitMystery"
  }
}
`
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "orphan.hcl")
	require.NoError(t, os.WriteFile(path, []byte(orphanManifest), 0600))

	cfg := &app.Config{
		ManifestPaths: []string{path},
		LogLevel:      "error",
		LogFormat:     "text",
	}

	_, err := app.New(&bytes.Buffer{}, cfg, hclconf.NewLoader())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unregistered fit function 'FitMystery'")
}

func TestNew_DuplicateModelAcrossModulesFails(t *testing.T) {
	t.Parallel()

	// Registering the same module twice makes its Go function registration
	// collide before any manifest is applied.
	cfg := &app.Config{LogLevel: "error", LogFormat: "text"}
	_, err := app.New(&bytes.Buffer{}, cfg, hclconf.NewLoader(),
		&doubleModule{}, &doubleModule{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
}

type doubleModule struct{}

func (m *doubleModule) Manifest() (string, []byte) { return "", nil }

func (m *doubleModule) Register(r *registry.Registry) error {
	return r.RegisterFitFunc("FitDouble", func(ctx context.Context, req *registry.FitRequest) (any, error) {
		return nil, nil
	})
}
