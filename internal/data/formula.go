package data

import (
	"fmt"
	"strings"
)

// Formula describes which column is the outcome and which columns are
// predictors, in the conventional "y ~ a + b" notation. "y ~ ." selects every
// column other than the outcome.
type Formula struct {
	Response string
	Terms    []string
	Dot      bool
}

// ParseFormula parses formula source text. Only additive right-hand sides are
// understood; interactions and transformations are an engine concern.
func ParseFormula(src string) (Formula, error) {
	parts := strings.SplitN(src, "~", 2)
	if len(parts) != 2 {
		return Formula{}, fmt.Errorf("formula %q: missing '~'", src)
	}
	response := strings.TrimSpace(parts[0])
	if response == "" {
		return Formula{}, fmt.Errorf("formula %q: missing response", src)
	}

	rhs := strings.TrimSpace(parts[1])
	if rhs == "." {
		return Formula{Response: response, Dot: true}, nil
	}

	var terms []string
	for _, term := range strings.Split(rhs, "+") {
		term = strings.TrimSpace(term)
		if term == "" {
			return Formula{}, fmt.Errorf("formula %q: empty term", src)
		}
		terms = append(terms, term)
	}
	return Formula{Response: response, Terms: terms}, nil
}

// String renders the formula back to its source notation.
func (f Formula) String() string {
	if f.Dot {
		return f.Response + " ~ ."
	}
	return f.Response + " ~ " + strings.Join(f.Terms, " + ")
}

// Predictors expands the right-hand side against a frame, resolving "." to
// every non-response column.
func (f Formula) Predictors(frame *Frame) ([]string, error) {
	if f.Dot {
		var terms []string
		for _, name := range frame.Names() {
			if name != f.Response {
				terms = append(terms, name)
			}
		}
		return terms, nil
	}
	for _, term := range f.Terms {
		if _, ok := frame.Column(term); !ok {
			return nil, fmt.Errorf("formula term %q not found in data", term)
		}
	}
	return f.Terms, nil
}
