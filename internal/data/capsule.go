package data

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Fitted is the opaque handle a fitted engine object travels in when it is
// bound into an expression scope.
type Fitted struct {
	Object any
}

// FrameType is the capsule type that carries a *Frame through cty
// expressions, so predict-module argument expressions can reference new_data
// symbolically.
var FrameType = cty.Capsule("data_frame", reflect.TypeOf(Frame{}))

// FittedType is the capsule type that carries a fitted engine object through
// cty expressions under the conventional name "object".
var FittedType = cty.Capsule("fitted_model", reflect.TypeOf(Fitted{}))

// FrameVal wraps a frame as a cty value.
func FrameVal(f *Frame) cty.Value {
	return cty.CapsuleVal(FrameType, f)
}

// FittedVal wraps a fitted engine object as a cty value.
func FittedVal(object any) cty.Value {
	return cty.CapsuleVal(FittedType, &Fitted{Object: object})
}

// FrameFromVal unwraps a frame capsule.
func FrameFromVal(v cty.Value) (*Frame, bool) {
	if v.Type() != FrameType {
		return nil, false
	}
	return v.EncapsulatedValue().(*Frame), true
}

// FittedFromVal unwraps a fitted-model capsule.
func FittedFromVal(v cty.Value) (any, bool) {
	if v.Type() != FittedType {
		return nil, false
	}
	return v.EncapsulatedValue().(*Fitted).Object, true
}
