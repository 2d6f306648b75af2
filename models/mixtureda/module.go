// Package mixtureda defines the mixture_da model backed by the mda engine,
// a nearest-centroid discriminant stand-in. It demonstrates argument-name
// remapping (sub_classes to subclasses), submodel prediction, and pre/post
// prediction hooks.
package mixtureda

import (
	"context"
	_ "embed"
	"fmt"
	"math"

	"github.com/vk/modelspec/internal/data"
	"github.com/vk/modelspec/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements registry.Module for this package.
type Module struct{}

// Manifest returns the embedded model definition.
func (m *Module) Manifest() (string, []byte) {
	return "models/mixtureda/manifest.hcl", manifest
}

// Register installs the mda engine functions and hooks.
func (m *Module) Register(r *registry.Registry) error {
	if err := r.RegisterFitFunc("FitMixtureDA", fitMDA); err != nil {
		return err
	}
	if err := r.RegisterPredictFunc("PredictMixtureDA", predictMDA); err != nil {
		return err
	}
	if err := r.RegisterPreHook("MdaCheckPredictors", checkPredictors); err != nil {
		return err
	}
	if err := r.RegisterPostHook("MdaPostClass", postClass); err != nil {
		return err
	}
	if err := r.RegisterPostHook("MdaPostProb", postProb); err != nil {
		return err
	}
	return r.RegisterTranslationHook("mixture_da", translationHook)
}

// translationHook validates sub_classes before any call is built.
func translationHook(info registry.HookInfo, args *registry.Arguments) error {
	v, ok := args.Get("subclasses")
	if !ok || !v.IsLiteral() {
		return nil
	}
	cv, err := v.Resolve(nil)
	if err != nil {
		return err
	}
	if cv.Type().FriendlyName() != "number" {
		return fmt.Errorf("argument %q must be a number", "sub_classes")
	}
	f, _ := cv.AsBigFloat().Float64()
	if f < 1 || f != math.Trunc(f) {
		return fmt.Errorf("argument %q must be a positive whole number, got %v", "sub_classes", f)
	}
	return nil
}

// mdaFit holds per-class centroids over the training predictors.
type mdaFit struct {
	terms      []string
	levels     []string // outcome levels, sorted
	centroids  map[string][]float64
	subclasses int
}

func fitMDA(ctx context.Context, req *registry.FitRequest) (any, error) {
	outcome, ok := req.Frame.Column(req.Formula.Response)
	if !ok {
		return nil, fmt.Errorf("response %q not found in data", req.Formula.Response)
	}
	if !outcome.IsFactor() {
		return nil, fmt.Errorf("response %q must be a factor for classification", outcome.Name)
	}

	terms, err := req.Formula.Predictors(req.Frame)
	if err != nil {
		return nil, err
	}
	x, err := data.Design(req.Frame, terms, nil)
	if err != nil {
		return nil, err
	}

	fit := &mdaFit{
		terms:      terms,
		levels:     outcome.Levels(),
		centroids:  make(map[string][]float64),
		subclasses: 2,
	}
	if v, ok := req.Args["subclasses"].(int); ok {
		fit.subclasses = v
	}

	counts := make(map[string]int)
	for i, class := range outcome.Factor {
		c := fit.centroids[class]
		if c == nil {
			c = make([]float64, len(x.Names))
			fit.centroids[class] = c
		}
		for j, v := range x.Rows[i] {
			c[j] += v
		}
		counts[class]++
	}
	for class, c := range fit.centroids {
		for j := range c {
			c[j] /= float64(counts[class])
		}
	}
	return fit, nil
}

// mdaScores is the raw engine output the post hooks normalize: one row per
// observation, one negated squared distance per outcome level.
type mdaScores struct {
	levels []string
	scores [][]float64
}

func predictMDA(ctx context.Context, req *registry.PredictRequest) (any, error) {
	fit, ok := req.Object.(*mdaFit)
	if !ok {
		return nil, fmt.Errorf("object is %T, not an mda fit", req.Object)
	}
	x, err := data.Design(req.NewData, fit.terms, nil)
	if err != nil {
		return nil, err
	}

	out := &mdaScores{levels: fit.levels, scores: make([][]float64, len(x.Rows))}
	for i, row := range x.Rows {
		out.scores[i] = make([]float64, len(fit.levels))
		for l, level := range fit.levels {
			c := fit.centroids[level]
			dist := 0.0
			for j, v := range row {
				d := v - c[j]
				dist += d * d
			}
			out.scores[i][l] = -dist
		}
	}
	return out, nil
}

// checkPredictors rejects prediction data missing a training predictor, so
// shape errors surface before the engine call.
func checkPredictors(newData *data.Frame, object any) (*data.Frame, error) {
	fit, ok := object.(*mdaFit)
	if !ok {
		return nil, fmt.Errorf("object is %T, not an mda fit", object)
	}
	for _, term := range fit.terms {
		if _, ok := newData.Column(term); !ok {
			return nil, fmt.Errorf("new data is missing predictor %q", term)
		}
	}
	return newData, nil
}

// postClass picks the best-scoring level per row.
func postClass(raw any, object any) (*data.Predictions, error) {
	scores, ok := raw.(*mdaScores)
	if !ok {
		return nil, fmt.Errorf("engine returned %T, want mda scores", raw)
	}
	classes := make([]string, len(scores.scores))
	for i, row := range scores.scores {
		best := 0
		for l := range row {
			if row[l] > row[best] {
				best = l
			}
		}
		classes[i] = scores.levels[best]
	}
	return &data.Predictions{Class: classes}, nil
}

// postProb softmaxes scores into one probability column per outcome level.
func postProb(raw any, object any) (*data.Predictions, error) {
	scores, ok := raw.(*mdaScores)
	if !ok {
		return nil, fmt.Errorf("engine returned %T, want mda scores", raw)
	}
	cols := make([]data.Column, len(scores.levels))
	for l, level := range scores.levels {
		cols[l] = data.Column{Name: level, Numeric: make([]float64, len(scores.scores))}
	}
	for i, row := range scores.scores {
		total := 0.0
		exps := make([]float64, len(row))
		for l, s := range row {
			exps[l] = math.Exp(s)
			total += exps[l]
		}
		for l := range row {
			cols[l].Numeric[i] = exps[l] / total
		}
	}
	frame, err := data.NewFrame(cols...)
	if err != nil {
		return nil, err
	}
	return &data.Predictions{Prob: frame}, nil
}
