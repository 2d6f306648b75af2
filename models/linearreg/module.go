// Package linearreg defines the linear_reg model: ordinary least squares via
// the glm engine and a Huber-reweighted robust variant via the rlm engine.
// The solvers are deliberately small; they exist so the fit and predict
// paths are executable end to end.
package linearreg

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/vk/modelspec/internal/data"
	"github.com/vk/modelspec/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements registry.Module for this package.
type Module struct{}

// Manifest returns the embedded model definition.
func (m *Module) Manifest() (string, []byte) {
	return "models/linearreg/manifest.hcl", manifest
}

// Register installs the engine functions and the linear_reg translation
// hook.
func (m *Module) Register(r *registry.Registry) error {
	if err := r.RegisterFitFunc("FitLinearGLM", fitGLM); err != nil {
		return err
	}
	if err := r.RegisterFitFunc("FitLinearRLM", fitRLM); err != nil {
		return err
	}
	if err := r.RegisterPredictFunc("PredictLinearGLM", predictLinear); err != nil {
		return err
	}
	if err := r.RegisterPredictFunc("PredictLinearRLM", predictLinear); err != nil {
		return err
	}
	return r.RegisterTranslationHook("linear_reg", translationHook)
}

// translationHook rejects argument values the engines cannot accept before
// any call is built.
func translationHook(info registry.HookInfo, args *registry.Arguments) error {
	if v, ok := args.Get("family"); ok && v.IsLiteral() {
		cv, err := v.Resolve(nil)
		if err != nil {
			return err
		}
		if cv.Type().FriendlyName() == "bool" {
			return fmt.Errorf("argument %q must be a string, not a bool", "family")
		}
	}
	return nil
}

// linearFit is the opaque fitted object shared by both engines.
type linearFit struct {
	terms  []string
	levels map[string][]string
	coef   []float64 // intercept first
}

func fitGLM(ctx context.Context, req *registry.FitRequest) (any, error) {
	if family, ok := req.Args["family"].(string); ok && family != "gaussian" {
		return nil, fmt.Errorf("glm engine supports only the gaussian family, got %q", family)
	}
	return fitLinear(req, nil)
}

func fitRLM(ctx context.Context, req *registry.FitRequest) (any, error) {
	k := 1.345
	if v, ok := req.Args["k"]; ok {
		switch kv := v.(type) {
		case float64:
			k = kv
		case int:
			k = float64(kv)
		default:
			return nil, fmt.Errorf("argument %q must be numeric, got %T", "k", v)
		}
	}

	fit, err := fitLinear(req, nil)
	if err != nil {
		return nil, err
	}

	// One Huber reweighting pass over the ordinary solution.
	lf := fit.(*linearFit)
	x, y, err := trainingDesign(req, lf)
	if err != nil {
		return nil, err
	}
	weights := make([]float64, len(y))
	for i, row := range x.Rows {
		resid := y[i] - lf.predictRow(row)
		if r := absf(resid); r > k {
			weights[i] = k / r
		} else {
			weights[i] = 1
		}
	}
	coef, err := leastSquares(x.Rows, y, weights)
	if err != nil {
		return nil, err
	}
	lf.coef = coef
	return lf, nil
}

// fitLinear solves the weighted or ordinary least-squares problem declared
// by the request's formula.
func fitLinear(req *registry.FitRequest, weights []float64) (any, error) {
	terms, err := req.Formula.Predictors(req.Frame)
	if err != nil {
		return nil, err
	}
	lf := &linearFit{
		terms:  terms,
		levels: data.FactorLevels(req.Frame, terms),
	}
	x, y, err := trainingDesign(req, lf)
	if err != nil {
		return nil, err
	}
	if weights == nil {
		weights = req.Weights
	}
	lf.coef, err = leastSquares(x.Rows, y, weights)
	if err != nil {
		return nil, err
	}
	return lf, nil
}

func trainingDesign(req *registry.FitRequest, lf *linearFit) (*data.Matrix, []float64, error) {
	x, err := data.Design(req.Frame, lf.terms, lf.levels)
	if err != nil {
		return nil, nil, err
	}
	outcome, ok := req.Frame.Column(req.Formula.Response)
	if !ok {
		return nil, nil, fmt.Errorf("response %q not found in data", req.Formula.Response)
	}
	if outcome.IsFactor() {
		return nil, nil, fmt.Errorf("response %q must be numeric for regression", outcome.Name)
	}
	return x, outcome.Numeric, nil
}

func (lf *linearFit) predictRow(row []float64) float64 {
	out := lf.coef[0]
	for j, v := range row {
		out += lf.coef[j+1] * v
	}
	return out
}

// predictLinear serves both engines: the fitted object already carries the
// training-time encoding.
func predictLinear(ctx context.Context, req *registry.PredictRequest) (any, error) {
	lf, ok := req.Object.(*linearFit)
	if !ok {
		return nil, fmt.Errorf("object is %T, not a linear fit", req.Object)
	}
	x, err := data.Design(req.NewData, lf.terms, lf.levels)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x.Rows))
	for i, row := range x.Rows {
		out[i] = lf.predictRow(row)
	}
	return out, nil
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
