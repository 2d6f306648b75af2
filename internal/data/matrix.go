package data

import "fmt"

// Matrix is a dense, row-major design matrix with named columns.
type Matrix struct {
	Names []string
	Rows  [][]float64
}

// NRows returns the number of observations.
func (m *Matrix) NRows() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// BuildXY expands a formula against a frame into a design matrix and an
// outcome column. Numeric predictors pass through; factor predictors are
// expanded into one indicator column per level. This is the only coercion
// the dispatcher defines between the formula and matrix interfaces.
func BuildXY(f Formula, frame *Frame) (*Matrix, Column, error) {
	y, ok := frame.Column(f.Response)
	if !ok {
		return nil, Column{}, fmt.Errorf("response %q not found in data", f.Response)
	}

	terms, err := f.Predictors(frame)
	if err != nil {
		return nil, Column{}, err
	}

	m := &Matrix{Rows: make([][]float64, frame.NRows())}
	for i := range m.Rows {
		m.Rows[i] = []float64{}
	}
	for _, term := range terms {
		col, ok := frame.Column(term)
		if !ok {
			return nil, Column{}, fmt.Errorf("formula term %q not found in data", term)
		}
		if col.IsFactor() {
			for _, level := range col.Levels() {
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
		m.Names = append(m.Names, term)
		for i, v := range col.Numeric {
			m.Rows[i] = append(m.Rows[i], v)
		}
	}
	return m, y, nil
}

// FrameFromMatrix rebuilds a frame from a design matrix plus an outcome
// column, for engines whose fit module declares a frame or formula interface
// when the caller supplied x/y data.
func FrameFromMatrix(x *Matrix, y Column) (*Frame, error) {
	cols := make([]Column, 0, len(x.Names)+1)
	for j, name := range x.Names {
		vals := make([]float64, len(x.Rows))
		for i, row := range x.Rows {
			if j >= len(row) {
				return nil, fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), len(x.Names))
			}
			vals[i] = row[j]
		}
		cols = append(cols, Column{Name: name, Numeric: vals})
	}
	cols = append(cols, y)
	return NewFrame(cols...)
}
