// Package data provides the minimal tabular shapes the dispatcher needs to
// move observations between callers and engines: data frames with numeric
// and factor columns, design matrices, and model formulas. Full formula
// expansion and preprocessing pipelines live outside this layer.
package data

import (
	"fmt"
	"sort"
)

// Column is a single named column of a Frame. Exactly one of Numeric or
// Factor is populated.
type Column struct {
	Name    string
	Numeric []float64
	Factor  []string
}

// IsFactor reports whether the column holds categorical values.
func (c Column) IsFactor() bool {
	return c.Factor != nil
}

// Len returns the number of observations in the column.
func (c Column) Len() int {
	if c.IsFactor() {
		return len(c.Factor)
	}
	return len(c.Numeric)
}

// Levels returns the sorted unique values of a factor column. For numeric
// columns it returns nil.
func (c Column) Levels() []string {
	if !c.IsFactor() {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Factor))
	for _, v := range c.Factor {
		seen[v] = struct{}{}
	}
	levels := make([]string, 0, len(seen))
	for v := range seen {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	return levels
}

// Frame is an immutable, column-oriented table.
type Frame struct {
	cols  []Column
	index map[string]int
	nrows int
}

// NewFrame builds a frame from columns of equal length.
func NewFrame(cols ...Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := f.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			f.nrows = c.Len()
		} else if c.Len() != f.nrows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), f.nrows)
		}
		f.index[c.Name] = i
		f.cols = append(f.cols, c)
	}
	return f, nil
}

// NRows returns the number of observations.
func (f *Frame) NRows() int {
	if f == nil {
		return 0
	}
	return f.nrows
}

// Names returns the column names in declaration order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (f *Frame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, false
	}
	return f.cols[i], true
}

// Columns returns all columns in declaration order.
func (f *Frame) Columns() []Column {
	out := make([]Column, len(f.cols))
	copy(out, f.cols)
	return out
}

// Drop returns a new frame without the named column. Dropping an absent
// column is a no-op.
func (f *Frame) Drop(name string) *Frame {
	kept := make([]Column, 0, len(f.cols))
	for _, c := range f.cols {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	out, err := NewFrame(kept...)
	if err != nil {
		// Columns came from a valid frame, so this cannot happen.
		panic(err)
	}
	return out
}
