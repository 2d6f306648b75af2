package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/modelspec/internal/data"
)

// SubPrediction is one nested prediction entry: the varying-parameter
// settings it was produced under and the predicted value for the row.
type SubPrediction struct {
	Params map[string]any
	// Value is a float64 for numeric predictions or a string for class
	// predictions.
	Value any
}

// MultiRow is the nested prediction table for one input row.
type MultiRow struct {
	Row  int
	Pred []SubPrediction
}

// MultiPredict produces predictions at several hyperparameter settings from
// one fitted object: one result row per input row, each containing one entry
// per combination of varying parameter values. Every varying parameter must
// be registered as supporting submodel prediction for the fit's engine.
func MultiPredict(ctx context.Context, mf *ModelFit, newData *data.Frame, varying map[string][]any, ptype string) ([]MultiRow, error) {
	if mf.Failed() {
		return nil, fmt.Errorf("cannot predict from a failed fit: %w", mf.Err)
	}
	if len(varying) == 0 {
		return nil, fmt.Errorf("multi-predict needs at least one varying parameter")
	}

	sp := mf.Spec
	descs, err := sp.Registry().Arguments(sp.Model, sp.Engine)
	if err != nil {
		return nil, err
	}

	// Map each varying exposed name to the engine-native name, requiring
	// submodel support.
	original := make(map[string]string, len(varying))
	for exposed := range varying {
		found := false
		for _, desc := range descs {
			if desc.Exposed != exposed {
				continue
			}
			if !desc.Submodel {
				return nil, fmt.Errorf("argument %q of model %q, engine %q cannot vary against one fit: %w",
					exposed, sp.Model, sp.Engine, ErrNoSubmodelSupport)
			}
			original[exposed] = desc.Original
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("model %q, engine %q has no argument %q: %w",
				sp.Model, sp.Engine, exposed, ErrNoSubmodelSupport)
		}
	}

	if ptype == "" {
		ptype = defaultPredictType(sp.Mode)
	}

	combos := combinations(varying)
	rows := make([]MultiRow, newData.NRows())
	for i := range rows {
		rows[i] = MultiRow{Row: i}
	}

	for _, combo := range combos {
		extra := make(map[string]any, len(combo))
		for exposed, val := range combo {
			extra[original[exposed]] = val
		}
		preds, err := predict(ctx, mf, newData, ptype, extra)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			var value any
			switch {
			case preds.Numeric != nil:
				value = preds.Numeric[i]
			case preds.Class != nil:
				value = preds.Class[i]
			default:
				return nil, fmt.Errorf("multi-predict supports numeric and class outputs, got type %q", ptype)
			}
			rows[i].Pred = append(rows[i].Pred, SubPrediction{Params: combo, Value: value})
		}
	}
	return rows, nil
}

// combinations expands the varying-parameter value lists into the cartesian
// product, iterating parameter names in sorted order for determinism.
func combinations(varying map[string][]any) []map[string]any {
	names := make([]string, 0, len(varying))
	for name := range varying {
		names = append(names, name)
	}
	sort.Strings(names)

	combos := []map[string]any{{}}
	for _, name := range names {
		var next []map[string]any
		for _, combo := range combos {
			for _, val := range varying[name] {
				expanded := make(map[string]any, len(combo)+1)
				for k, v := range combo {
					expanded[k] = v
				}
				expanded[name] = val
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos
}
