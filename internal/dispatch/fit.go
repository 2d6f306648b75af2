package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/modelspec/internal/ctxlog"
	"github.com/vk/modelspec/internal/data"
	"github.com/vk/modelspec/internal/registry"
	"github.com/vk/modelspec/internal/spec"
)

// Fit fits a specification against a formula and a data frame.
func Fit(ctx context.Context, sp *spec.Spec, formula data.Formula, frame *data.Frame, ctl Control) (*ModelFit, error) {
	if frame == nil || frame.NRows() == 0 {
		return nil, fmt.Errorf("fit needs a non-empty data frame: %w", ErrInterfaceMismatch)
	}
	return fit(ctx, sp, fitData{formula: formula, frame: frame}, ctl)
}

// FitXY fits a specification against a design matrix and an outcome column.
func FitXY(ctx context.Context, sp *spec.Spec, x *data.Matrix, y data.Column, ctl Control) (*ModelFit, error) {
	if x == nil || x.NRows() == 0 {
		return nil, fmt.Errorf("fit_xy needs a non-empty design matrix: %w", ErrInterfaceMismatch)
	}
	if y.Len() != x.NRows() {
		return nil, fmt.Errorf("x has %d rows but y has %d: %w", x.NRows(), y.Len(), ErrInterfaceMismatch)
	}
	if y.Name == "" {
		y.Name = "outcome"
	}
	return fit(ctx, sp, fitData{x: x, y: y}, ctl)
}

func fit(ctx context.Context, sp *spec.Spec, fd fitData, ctl Control) (*ModelFit, error) {
	logger := ctxlog.FromContext(ctx).With("model", sp.Model, "mode", sp.Mode, "engine", sp.Engine)

	method := sp.Method
	if method == nil {
		var err error
		method, err = sp.Translate(ctx, "")
		if err != nil {
			return nil, err
		}
		logger = logger.With("engine", sp.Engine)
	}
	desc := method.Fit

	shaped, err := shape(desc.Interface, fd)
	if err != nil {
		return nil, err
	}

	req := &registry.FitRequest{
		Formula: shaped.formula,
		Frame:   shaped.frame,
		X:       shaped.x,
		Y:       shaped.y,
		Weights: shaped.weights,
	}
	req.Args, err = resolveArgs(desc, fitBindings(shaped))
	if err != nil {
		return nil, err
	}

	fn, ok := sp.Registry().FitFunc(desc.Func.Name)
	if !ok {
		return nil, fmt.Errorf("fit function %q not registered", desc.Func.Name)
	}

	logger.Debug("Calling fit function.", "func", desc.Func.Name)
	start := time.Now()
	raw, err := fn(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		wrapped := fmt.Errorf("engine %q: %v: %w", sp.Engine, err, ErrFitExecution)
		if !ctl.Catch {
			return nil, wrapped
		}
		if ctl.Verbosity >= 1 {
			logger.Warn("Fit failed and was caught.", "error", err)
		}
		return &ModelFit{ID: uuid.NewString(), Spec: sp, Elapsed: elapsed, Err: wrapped}, nil
	}

	mf := &ModelFit{
		ID:      uuid.NewString(),
		Spec:    sp,
		Fit:     raw,
		Preproc: buildPreproc(shaped),
		Elapsed: elapsed,
	}
	logger.Info("Model fitted.", "fit_id", mf.ID, "elapsed", elapsed)
	return mf, nil
}

// shape coerces the caller's inputs to the interface the fit module
// declares. Both directions are defined: formula+frame expand to x/y, and
// x/y rebuild a frame plus a "y ~ ." formula.
func shape(kind registry.InterfaceKind, fd fitData) (fitData, error) {
	switch kind {
	case registry.InterfaceFormula, registry.InterfaceDataFrame:
		if fd.frame == nil {
			frame, err := data.FrameFromMatrix(fd.x, fd.y)
			if err != nil {
				return fitData{}, fmt.Errorf("%v: %w", err, ErrInterfaceMismatch)
			}
			fd.frame = frame
			fd.formula = data.Formula{Response: fd.y.Name, Dot: true}
		}
		if fd.formula.Response == "" {
			return fitData{}, fmt.Errorf("interface %q needs a formula: %w", kind, ErrInterfaceMismatch)
		}
		return fd, nil

	case registry.InterfaceMatrix:
		if fd.x == nil {
			x, y, err := data.BuildXY(fd.formula, fd.frame)
			if err != nil {
				return fitData{}, fmt.Errorf("%v: %w", err, ErrInterfaceMismatch)
			}
			fd.x = x
			fd.y = y
		}
		return fd, nil

	default:
		return fitData{}, fmt.Errorf("unknown fit interface %q: %w", kind, ErrInterfaceMismatch)
	}
}

// fitBindings exposes the shaped data to deferred fit arguments.
func fitBindings(fd fitData) map[string]cty.Value {
	bindings := make(map[string]cty.Value)
	if fd.frame != nil {
		bindings["data"] = data.FrameVal(fd.frame)
	}
	if fd.formula.Response != "" {
		bindings["formula"] = cty.StringVal(fd.formula.String())
	}
	return bindings
}

// resolveArgs evaluates every deferred argument of a call descriptor and
// converts the results to native Go values, in descriptor order.
func resolveArgs(desc *spec.CallDescriptor, bindings map[string]cty.Value) (map[string]any, error) {
	out := make(map[string]any, len(desc.Names))
	for _, name := range desc.Names {
		v := desc.Args[name]
		cv, err := v.Resolve(bindings)
		if err != nil {
			return nil, fmt.Errorf("resolving argument %q: %w", name, err)
		}
		nv, err := data.ToNative(cv)
		if err != nil {
			return nil, fmt.Errorf("converting argument %q: %w", name, err)
		}
		out[name] = nv
	}
	return out, nil
}

func buildPreproc(fd fitData) Preproc {
	pre := Preproc{}
	if fd.frame != nil && fd.formula.Response != "" {
		pre.OutcomeName = fd.formula.Response
		if col, ok := fd.frame.Column(fd.formula.Response); ok {
			pre.OutcomeLevels = col.Levels()
		}
		if terms, err := fd.formula.Predictors(fd.frame); err == nil {
			pre.TermNames = terms
		}
		return pre
	}
	pre.OutcomeName = fd.y.Name
	pre.OutcomeLevels = fd.y.Levels()
	if fd.x != nil {
		pre.TermNames = append([]string(nil), fd.x.Names...)
	}
	return pre
}
