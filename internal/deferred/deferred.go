// Package deferred implements values whose evaluation is postponed until
// every symbol they reference is bound.
//
// A Value is either a literal cty.Value (already concrete) or an unevaluated
// hcl.Expression paired with a captured environment. Argument values in a
// model specification and the call arguments of fit/predict modules are all
// deferred: the data they refer to (the fitted object, the new data table)
// does not exist when the specification is written, so nothing may be
// evaluated before Resolve is called with the final bindings.
package deferred

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrUnresolvedSymbol reports that an expression references a symbol absent
// from both its captured environment and the bindings given to Resolve.
var ErrUnresolvedSymbol = errors.New("unresolved symbol")

// Value is a computation not yet run. The zero Value is "unset" and resolves
// to cty.NilVal; callers that need presence information should track it
// separately (see registry.Arguments).
type Value struct {
	lit  *cty.Value
	expr hcl.Expression
	env  map[string]cty.Value
}

// Literal wraps an already-concrete cty value.
func Literal(v cty.Value) Value {
	return Value{lit: &v}
}

// FromGo wraps a native Go value as a literal, inferring its cty type.
func FromGo(v any) (Value, error) {
	if v == nil {
		return Literal(cty.NullVal(cty.DynamicPseudoType)), nil
	}
	if cv, ok := v.(cty.Value); ok {
		return Literal(cv), nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return Value{}, fmt.Errorf("unable to infer cty type for %T: %w", v, err)
	}
	cv, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return Value{}, err
	}
	return Literal(cv), nil
}

// FromExpr wraps an unevaluated expression with no captured environment.
func FromExpr(expr hcl.Expression) Value {
	return Value{expr: expr}
}

// FromExprEnv wraps an unevaluated expression together with a capturing
// environment. Bindings passed to Resolve shadow the environment.
func FromExprEnv(expr hcl.Expression, env map[string]cty.Value) Value {
	return Value{expr: expr, env: env}
}

// Parse builds a deferred Value from expression source text.
func Parse(src string) (Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<expr>", hcl.InitialPos)
	if diags.HasErrors() {
		return Value{}, fmt.Errorf("parsing expression %q: %w", src, diags)
	}
	return FromExpr(expr), nil
}

// IsZero reports whether the Value is unset.
func (v Value) IsZero() bool {
	return v.lit == nil && v.expr == nil
}

// IsLiteral reports whether the Value is already concrete and needs no
// evaluation.
func (v Value) IsLiteral() bool {
	return v.lit != nil
}

// References returns the sorted, unique root symbols the expression refers to
// that are not satisfied by the captured environment. Literals reference
// nothing.
func (v Value) References() []string {
	if v.expr == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, traversal := range v.expr.Variables() {
		name := traversal.RootName()
		if _, ok := v.env[name]; ok {
			continue
		}
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve substitutes named symbols with concrete values from bindings and
// evaluates, returning a concrete value. Bindings shadow the captured
// environment. A symbol present in neither fails with ErrUnresolvedSymbol.
func (v Value) Resolve(bindings map[string]cty.Value) (cty.Value, error) {
	if v.lit != nil {
		return *v.lit, nil
	}
	if v.expr == nil {
		return cty.NilVal, nil
	}

	vars := make(map[string]cty.Value, len(v.env)+len(bindings))
	for name, val := range v.env {
		vars[name] = val
	}
	for name, val := range bindings {
		vars[name] = val
	}

	for _, name := range v.References() {
		if _, ok := vars[name]; !ok {
			return cty.NilVal, fmt.Errorf("expression references %q: %w", name, ErrUnresolvedSymbol)
		}
	}

	out, diags := v.expr.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating deferred expression: %w", diags)
	}
	return out, nil
}
