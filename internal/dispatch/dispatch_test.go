package dispatch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/modelspec/internal/data"
	"github.com/vk/modelspec/internal/dispatch"
	"github.com/vk/modelspec/internal/registry"
	"github.com/vk/modelspec/internal/spec"
	"github.com/vk/modelspec/internal/testutil"
)

func regressionSpec(t *testing.T, engine string, args map[string]any) *spec.Spec {
	t.Helper()
	reg := testutil.NewRegistry(t)
	sp, err := spec.New(reg, "linear_reg", "regression", args)
	require.NoError(t, err)
	require.NoError(t, sp.SetEngine(engine, nil))
	return sp
}

func TestFit_ThenPredict_RecoversLinearSignal(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx := context.Background()
	sp := regressionSpec(t, "glm", nil)
	frame := testutil.RegressionFrame(t)
	formula, err := data.ParseFormula("y ~ x1")
	require.NoError(t, err)

	// --- Act ---
	mf, err := dispatch.Fit(ctx, sp, formula, frame, dispatch.DefaultControl)

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, mf.Failed())
	require.NotEmpty(t, mf.ID)
	require.NotNil(t, mf.Fit)
	require.Equal(t, "y", mf.Preproc.OutcomeName)
	require.Equal(t, []string{"x1"}, mf.Preproc.TermNames)

	// The training data is y = 2*x1 + 1 exactly, so predictions on it must
	// reproduce the outcome.
	preds, err := dispatch.Predict(ctx, mf, frame, "")
	require.NoError(t, err)
	require.Len(t, preds.Numeric, frame.NRows())
	outcome, _ := frame.Column("y")
	for i, got := range preds.Numeric {
		require.InDelta(t, outcome.Numeric[i], got, 1e-6)
	}
}

func TestFit_TranslatesLazilyWhenNeeded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sp := regressionSpec(t, "glm", nil)
	require.Nil(t, sp.Method)

	formula, err := data.ParseFormula("y ~ .")
	require.NoError(t, err)
	mf, err := dispatch.Fit(ctx, sp, formula, testutil.RegressionFrame(t), dispatch.DefaultControl)
	require.NoError(t, err)
	require.NotNil(t, sp.Method)
	require.False(t, mf.Failed())
}

func TestFitXY_RebuildsFrameForFormulaInterface(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	ctx := context.Background()
	sp := regressionSpec(t, "glm", nil)

	frame := testutil.RegressionFrame(t)
	formula, err := data.ParseFormula("y ~ x1 + x2")
	require.NoError(t, err)
	x, y, err := data.BuildXY(formula, frame)
	require.NoError(t, err)

	// --- Act ---
	mf, err := dispatch.FitXY(ctx, sp, x, y, dispatch.DefaultControl)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "y", mf.Preproc.OutcomeName)
	require.ElementsMatch(t, []string{"x1", "x2"}, mf.Preproc.TermNames)

	preds, err := dispatch.Predict(ctx, mf, frame, "numeric")
	require.NoError(t, err)
	require.Len(t, preds.Numeric, frame.NRows())
}

func TestFitXY_ValidatesShapes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sp := regressionSpec(t, "glm", nil)

	_, err := dispatch.FitXY(ctx, sp, nil, data.Column{}, dispatch.DefaultControl)
	require.ErrorIs(t, err, dispatch.ErrInterfaceMismatch)

	x := &data.Matrix{Names: []string{"a"}, Rows: [][]float64{{1}, {2}}}
	y := data.Column{Numeric: []float64{1}}
	_, err = dispatch.FitXY(ctx, sp, x, y, dispatch.DefaultControl)
	require.ErrorIs(t, err, dispatch.ErrInterfaceMismatch)
}

func TestFit_RejectsEmptyData(t *testing.T) {
	t.Parallel()

	sp := regressionSpec(t, "glm", nil)
	_, err := dispatch.Fit(context.Background(), sp, data.Formula{}, nil, dispatch.DefaultControl)
	require.ErrorIs(t, err, dispatch.ErrInterfaceMismatch)
}

func TestFit_CatchBehavior(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	frame := testutil.RegressionFrame(t)
	formula, err := data.ParseFormula("y ~ x1")
	require.NoError(t, err)

	// The glm engine only accepts the gaussian family, so this fit fails at
	// execution time.
	badSpec := func(t *testing.T) *spec.Spec {
		sp := regressionSpec(t, "glm", nil)
		require.NoError(t, sp.SetEngine("glm", map[string]any{"family": "poisson"}))
		return sp
	}

	t.Run("catch disabled propagates the error", func(t *testing.T) {
		t.Parallel()

		_, err := dispatch.Fit(ctx, badSpec(t), formula, frame, dispatch.Control{})
		require.ErrorIs(t, err, dispatch.ErrFitExecution)
		require.Contains(t, err.Error(), "poisson")
	})

	t.Run("catch enabled returns a tagged failure fit", func(t *testing.T) {
		t.Parallel()

		mf, err := dispatch.Fit(ctx, badSpec(t), formula, frame, dispatch.Control{Catch: true})
		require.NoError(t, err)
		require.True(t, mf.Failed())
		require.ErrorIs(t, mf.Err, dispatch.ErrFitExecution)
		require.Nil(t, mf.Fit)
		require.NotEmpty(t, mf.ID)

		// Predicting from a caught failure is still an error.
		_, err = dispatch.Predict(ctx, mf, frame, "")
		require.ErrorIs(t, err, dispatch.ErrFitExecution)
	})
}

func TestPredict_DefaultTypeFollowsMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := testutil.NewRegistry(t)
	frame := testutil.ClassificationFrame(t)
	formula, err := data.ParseFormula("species ~ x1 + x2")
	require.NoError(t, err)

	sp, err := spec.New(reg, "mixture_da", "", nil)
	require.NoError(t, err)
	require.NoError(t, sp.SetEngine("mda", nil))

	mf, err := dispatch.Fit(ctx, sp, formula, frame, dispatch.DefaultControl)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, mf.Preproc.OutcomeLevels)

	// Empty type means class for a classification fit. The training classes
	// are well separated, so the fit reclassifies them exactly.
	preds, err := dispatch.Predict(ctx, mf, frame, "")
	require.NoError(t, err)
	outcome, _ := frame.Column("species")
	require.Equal(t, outcome.Factor, preds.Class)

	// Probabilities come back as one column per outcome level, each row
	// summing to one.
	probs, err := dispatch.Predict(ctx, mf, frame, "prob")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, probs.Prob.Names())
	colA, _ := probs.Prob.Column("a")
	colB, _ := probs.Prob.Column("b")
	for i := 0; i < probs.NRows(); i++ {
		require.InDelta(t, 1.0, colA.Numeric[i]+colB.Numeric[i], 1e-9)
	}

	_, err = dispatch.Predict(ctx, mf, frame, "numeric")
	require.ErrorIs(t, err, registry.ErrUnsupportedPredictionType)
}

func TestPredict_PreHookRejectsMissingPredictors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := testutil.NewRegistry(t)
	frame := testutil.ClassificationFrame(t)
	formula, err := data.ParseFormula("species ~ x1 + x2")
	require.NoError(t, err)

	sp, err := spec.New(reg, "mixture_da", "", nil)
	require.NoError(t, err)
	require.NoError(t, sp.SetEngine("mda", nil))
	mf, err := dispatch.Fit(ctx, sp, formula, frame, dispatch.DefaultControl)
	require.NoError(t, err)

	_, err = dispatch.Predict(ctx, mf, frame.Drop("x2"), "class")
	require.Error(t, err)
	require.Contains(t, err.Error(), `missing predictor "x2"`)
}

func TestMultiPredict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := testutil.NewRegistry(t)
	frame := testutil.ClassificationFrame(t)
	formula, err := data.ParseFormula("species ~ x1 + x2")
	require.NoError(t, err)

	sp, err := spec.New(reg, "mixture_da", "", nil)
	require.NoError(t, err)
	require.NoError(t, sp.SetEngine("mda", nil))
	mf, err := dispatch.Fit(ctx, sp, formula, frame, dispatch.DefaultControl)
	require.NoError(t, err)

	t.Run("one entry per combination per row", func(t *testing.T) {
		t.Parallel()

		rows, err := dispatch.MultiPredict(ctx, mf, frame,
			map[string][]any{"sub_classes": {1, 2, 3}}, "")
		require.NoError(t, err)
		require.Len(t, rows, frame.NRows())
		for i, row := range rows {
			require.Equal(t, i, row.Row)
			require.Len(t, row.Pred, 3)
			for _, sub := range row.Pred {
				require.Contains(t, sub.Params, "sub_classes")
				require.IsType(t, "", sub.Value)
			}
		}
	})

	t.Run("needs at least one varying parameter", func(t *testing.T) {
		t.Parallel()

		_, err := dispatch.MultiPredict(ctx, mf, frame, nil, "")
		require.Error(t, err)
	})

	t.Run("unknown argument fails", func(t *testing.T) {
		t.Parallel()

		_, err := dispatch.MultiPredict(ctx, mf, frame,
			map[string][]any{"ghost": {1}}, "")
		require.ErrorIs(t, err, dispatch.ErrNoSubmodelSupport)
	})
}

func TestMultiPredict_RequiresSubmodelSupport(t *testing.T) {
	t.Parallel()

	// linear_reg's threshold argument is registered without submodel support.
	ctx := context.Background()
	sp := regressionSpec(t, "rlm", nil)
	frame := testutil.RegressionFrame(t)
	formula, err := data.ParseFormula("y ~ x1")
	require.NoError(t, err)

	mf, err := dispatch.Fit(ctx, sp, formula, frame, dispatch.DefaultControl)
	require.NoError(t, err)

	_, err = dispatch.MultiPredict(ctx, mf, frame,
		map[string][]any{"threshold": {1.0, 2.0}}, "")
	require.ErrorIs(t, err, dispatch.ErrNoSubmodelSupport)
	require.Contains(t, err.Error(), "cannot vary")
}

// brokenModule registers a model whose engine violates the row-count
// contract, and a second engine that takes the matrix interface.
type brokenModule struct{}

func (m *brokenModule) Manifest() (string, []byte) {
	return "broken.hcl", []byte(`
model "broken_reg" {
  mode "regression" {
    engines = ["shrink", "mat"]
  }

  fit "shrink" "regression" {
    interface = "formula"
    protect   = ["formula", "data"]
    func      = "FitBroken"
  }

  predict "shrink" "regression" "numeric" {
    func = "PredictShrunk"

    args {
      object   = object
      new_data = new_data
    }
  }

  fit "mat" "regression" {
    interface = "matrix"
    protect   = ["x", "y"]
    func      = "FitMatrixMean"
  }

  predict "mat" "regression" "numeric" {
    func = "PredictMatrixMean"

    args {
      object   = object
      new_data = new_data
    }
  }
}
`)
}

func (m *brokenModule) Register(r *registry.Registry) error {
	if err := r.RegisterFitFunc("FitBroken", func(ctx context.Context, req *registry.FitRequest) (any, error) {
		return "fit", nil
	}); err != nil {
		return err
	}
	// Returns one row fewer than it was given.
	if err := r.RegisterPredictFunc("PredictShrunk", func(ctx context.Context, req *registry.PredictRequest) (any, error) {
		out := make([]float64, req.NewData.NRows()-1)
		return out, nil
	}); err != nil {
		return err
	}
	if err := r.RegisterFitFunc("FitMatrixMean", func(ctx context.Context, req *registry.FitRequest) (any, error) {
		if req.X == nil {
			return nil, fmt.Errorf("matrix interface delivered no design matrix")
		}
		sum := 0.0
		for _, v := range req.Y.Numeric {
			sum += v
		}
		return sum / float64(len(req.Y.Numeric)), nil
	}); err != nil {
		return err
	}
	return r.RegisterPredictFunc("PredictMatrixMean", func(ctx context.Context, req *registry.PredictRequest) (any, error) {
		mean := req.Object.(float64)
		out := make([]float64, req.NewData.NRows())
		for i := range out {
			out[i] = mean
		}
		return out, nil
	})
}

func TestPredict_RowCountInvariantIsEnforced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := testutil.NewRegistry(t, &brokenModule{})
	frame := testutil.RegressionFrame(t)
	formula, err := data.ParseFormula("y ~ x1")
	require.NoError(t, err)

	sp, err := spec.New(reg, "broken_reg", "regression", nil)
	require.NoError(t, err)
	require.NoError(t, sp.SetEngine("shrink", nil))
	mf, err := dispatch.Fit(ctx, sp, formula, frame, dispatch.DefaultControl)
	require.NoError(t, err)

	_, err = dispatch.Predict(ctx, mf, frame, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "5 prediction rows for 6 input rows")
}

func TestFit_CoercesFrameToMatrixInterface(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := testutil.NewRegistry(t, &brokenModule{})
	frame := testutil.RegressionFrame(t)
	formula, err := data.ParseFormula("y ~ x1 + x2")
	require.NoError(t, err)

	sp, err := spec.New(reg, "broken_reg", "regression", nil)
	require.NoError(t, err)
	require.NoError(t, sp.SetEngine("mat", nil))

	mf, err := dispatch.Fit(ctx, sp, formula, frame, dispatch.DefaultControl)
	require.NoError(t, err)
	require.Equal(t, "y", mf.Preproc.OutcomeName)

	preds, err := dispatch.Predict(ctx, mf, frame, "")
	require.NoError(t, err)
	// The mean of y = {3,5,...,13} is 8.
	for _, v := range preds.Numeric {
		require.InDelta(t, 8.0, v, 1e-9)
	}
}
