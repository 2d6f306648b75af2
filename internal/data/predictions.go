package data

import "fmt"

// Predictions is the canonical prediction output. Exactly one field is
// populated, depending on the prediction type:
//
//   - class:   Class, one categorical value per input row
//   - prob:    Prob, one column per outcome level
//   - numeric: Numeric, one value per input row, or Table with a "values"
//     column plus one column per varying hyperparameter
type Predictions struct {
	Class   []string
	Prob    *Frame
	Numeric []float64
	Table   *Frame
}

// NRows returns the prediction row count, which must match the input row
// count and order.
func (p *Predictions) NRows() int {
	switch {
	case p == nil:
		return 0
	case p.Class != nil:
		return len(p.Class)
	case p.Prob != nil:
		return p.Prob.NRows()
	case p.Numeric != nil:
		return len(p.Numeric)
	case p.Table != nil:
		return p.Table.NRows()
	}
	return 0
}

// NormalizePredictions coerces a raw engine output into the canonical shape
// when a predict module registers no post hook.
func NormalizePredictions(raw any) (*Predictions, error) {
	switch out := raw.(type) {
	case *Predictions:
		return out, nil
	case []float64:
		return &Predictions{Numeric: out}, nil
	case []string:
		return &Predictions{Class: out}, nil
	case *Frame:
		return &Predictions{Prob: out}, nil
	default:
		return nil, fmt.Errorf("engine returned %T, which has no canonical prediction shape", raw)
	}
}
