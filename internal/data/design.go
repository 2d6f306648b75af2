package data

import "fmt"

// Design encodes the named predictor columns of a frame into a matrix using
// a fixed factor-level encoding, so prediction data is expanded exactly the
// way the training data was. levels maps factor term names to the level
// order captured at training time.
func Design(frame *Frame, terms []string, levels map[string][]string) (*Matrix, error) {
	m := &Matrix{Rows: make([][]float64, frame.NRows())}
	for i := range m.Rows {
		m.Rows[i] = []float64{}
	}
	for _, term := range terms {
		col, ok := frame.Column(term)
		if !ok {
			return nil, fmt.Errorf("predictor %q not found in data", term)
		}
		if lv, isFactor := levels[term]; isFactor {
			if !col.IsFactor() {
				return nil, fmt.Errorf("predictor %q was a factor at training time", term)
			}
			for _, level := range lv {
				m.Names = append(m.Names, term+"."+level)
				for i, v := range col.Factor {
					ind := 0.0
					if v == level {
						ind = 1.0
					}
					m.Rows[i] = append(m.Rows[i], ind)
				}
			}
			continue
		}
		if col.IsFactor() {
			return nil, fmt.Errorf("predictor %q was numeric at training time", term)
		}
		m.Names = append(m.Names, term)
		for i, v := range col.Numeric {
			m.Rows[i] = append(m.Rows[i], v)
		}
	}
	return m, nil
}

// FactorLevels captures the level order of every factor column among the
// named terms.
func FactorLevels(frame *Frame, terms []string) map[string][]string {
	levels := make(map[string][]string)
	for _, term := range terms {
		if col, ok := frame.Column(term); ok && col.IsFactor() {
			levels[term] = col.Levels()
		}
	}
	return levels
}
