package dispatch

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/modelspec/internal/ctxlog"
	"github.com/vk/modelspec/internal/data"
	"github.com/vk/modelspec/internal/registry"
)

// Predict builds and runs a prediction call against a fitted model. An empty
// prediction type picks the canonical type for the specification's mode:
// numeric for regression, class for classification.
func Predict(ctx context.Context, mf *ModelFit, newData *data.Frame, ptype string) (*data.Predictions, error) {
	return predict(ctx, mf, newData, ptype, nil)
}

// predict is the shared prediction path. extra overlays resolved argument
// values, which is how multi-predict varies submodel parameters against one
// fitted object.
func predict(ctx context.Context, mf *ModelFit, newData *data.Frame, ptype string, extra map[string]any) (*data.Predictions, error) {
	if mf.Failed() {
		return nil, fmt.Errorf("cannot predict from a failed fit: %w", mf.Err)
	}
	if newData == nil || newData.NRows() == 0 {
		return nil, fmt.Errorf("predict needs non-empty new data")
	}

	sp := mf.Spec
	reg := sp.Registry()
	if ptype == "" {
		ptype = defaultPredictType(sp.Mode)
	}
	logger := ctxlog.FromContext(ctx).With(
		"model", sp.Model, "engine", sp.Engine, "type", ptype, "fit_id", mf.ID)

	pm, err := reg.Predict(sp.Model, sp.Engine, sp.Mode, ptype)
	if err != nil {
		return nil, err
	}

	// Pre hook, if any, adjusts the incoming data.
	if pm.Pre != "" {
		hook, ok := reg.PreHook(pm.Pre)
		if !ok {
			return nil, fmt.Errorf("pre hook %q not registered", pm.Pre)
		}
		newData, err = hook(newData, mf.Fit)
		if err != nil {
			return nil, fmt.Errorf("pre hook %q: %w", pm.Pre, err)
		}
	}

	// The module's deferred args reference the fit object and new data
	// symbolically; bind them now.
	bindings := map[string]cty.Value{
		"object":   data.FittedVal(mf.Fit),
		"new_data": data.FrameVal(newData),
	}
	req := &registry.PredictRequest{
		Object:  mf.Fit,
		NewData: newData,
		Args:    make(map[string]any, pm.Args.Len()+len(extra)),
	}
	for _, name := range pm.Args.Names() {
		dv, _ := pm.Args.Get(name)
		cv, err := dv.Resolve(bindings)
		if err != nil {
			return nil, fmt.Errorf("resolving prediction argument %q: %w", name, err)
		}
		nv, err := data.ToNative(cv)
		if err != nil {
			return nil, fmt.Errorf("converting prediction argument %q: %w", name, err)
		}
		req.Args[name] = nv
	}
	for name, val := range extra {
		req.Args[name] = val
	}

	fn, ok := reg.PredictFunc(pm.Func.Name)
	if !ok {
		return nil, fmt.Errorf("predict function %q not registered", pm.Func.Name)
	}
	logger.Debug("Calling predict function.", "func", pm.Func.Name, "rows", newData.NRows())
	raw, err := fn(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("engine %q predict: %w", sp.Engine, err)
	}

	// Post hook normalizes the output shape; otherwise apply the default
	// coercion.
	var preds *data.Predictions
	if pm.Post != "" {
		hook, ok := reg.PostHook(pm.Post)
		if !ok {
			return nil, fmt.Errorf("post hook %q not registered", pm.Post)
		}
		preds, err = hook(raw, mf.Fit)
		if err != nil {
			return nil, fmt.Errorf("post hook %q: %w", pm.Post, err)
		}
	} else {
		preds, err = data.NormalizePredictions(raw)
		if err != nil {
			return nil, err
		}
	}

	// Hard invariant: output rows equal input rows, in order. An engine
	// that reorders or drops rows is a defect this guard surfaces.
	if preds.NRows() != newData.NRows() {
		return nil, fmt.Errorf("engine %q returned %d prediction rows for %d input rows",
			sp.Engine, preds.NRows(), newData.NRows())
	}
	return preds, nil
}

func defaultPredictType(mode string) string {
	if mode == "classification" {
		return "class"
	}
	return "numeric"
}
