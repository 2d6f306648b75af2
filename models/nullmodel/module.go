// Package nullmodel defines the null_model baseline: it predicts the
// training outcome's mean (regression) or modal class (classification) for
// every observation. Supporting both modes, it exercises the multi-mode
// defaulting rules.
package nullmodel

import (
	"context"
	_ "embed"
	"fmt"
	"sort"

	"github.com/vk/modelspec/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements registry.Module for this package.
type Module struct{}

// Manifest returns the embedded model definition.
func (m *Module) Manifest() (string, []byte) {
	return "models/nullmodel/manifest.hcl", manifest
}

// Register installs the builtin engine functions.
func (m *Module) Register(r *registry.Registry) error {
	if err := r.RegisterFitFunc("FitNullRegression", fitRegression); err != nil {
		return err
	}
	if err := r.RegisterFitFunc("FitNullClassification", fitClassification); err != nil {
		return err
	}
	return r.RegisterPredictFunc("PredictNullModel", predictNull)
}

// nullFit holds the constant the model predicts.
type nullFit struct {
	mean  float64
	class string
	isNum bool
}

func fitRegression(ctx context.Context, req *registry.FitRequest) (any, error) {
	outcome, ok := req.Frame.Column(req.Formula.Response)
	if !ok {
		return nil, fmt.Errorf("response %q not found in data", req.Formula.Response)
	}
	if outcome.IsFactor() {
		return nil, fmt.Errorf("response %q must be numeric for regression", outcome.Name)
	}
	sum := 0.0
	for _, v := range outcome.Numeric {
		sum += v
	}
	return &nullFit{mean: sum / float64(len(outcome.Numeric)), isNum: true}, nil
}

func fitClassification(ctx context.Context, req *registry.FitRequest) (any, error) {
	outcome, ok := req.Frame.Column(req.Formula.Response)
	if !ok {
		return nil, fmt.Errorf("response %q not found in data", req.Formula.Response)
	}
	if !outcome.IsFactor() {
		return nil, fmt.Errorf("response %q must be a factor for classification", outcome.Name)
	}
	counts := make(map[string]int)
	for _, v := range outcome.Factor {
		counts[v]++
	}
	classes := make([]string, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	// Ties break toward the alphabetically first class, deterministically.
	sort.Strings(classes)
	best := classes[0]
	for _, class := range classes[1:] {
		if counts[class] > counts[best] {
			best = class
		}
	}
	return &nullFit{class: best}, nil
}

func predictNull(ctx context.Context, req *registry.PredictRequest) (any, error) {
	fit, ok := req.Object.(*nullFit)
	if !ok {
		return nil, fmt.Errorf("object is %T, not a null-model fit", req.Object)
	}
	n := req.NewData.NRows()
	if fit.isNum {
		out := make([]float64, n)
		for i := range out {
			out[i] = fit.mean
		}
		return out, nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fit.class
	}
	return out, nil
}
