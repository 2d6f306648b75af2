package data

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToNative recursively converts a resolved cty value to its most natural Go
// counterpart, so engine functions receive plain Go values. Capsule values
// yield the Go value they carry.
func ToNative(v cty.Value) (any, error) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == FrameType:
		return v.EncapsulatedValue().(*Frame), nil

	case ty == FittedType:
		return v.EncapsulatedValue().(*Fitted).Object, nil

	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		// Whole numbers decode as int so hyperparameters like subclass
		// counts keep their integral identity.
		var i int64
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return int(i), nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, fmt.Errorf("could not convert cty.Bool: %w", err)
		}
		return b, nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			nv, err := ToNative(ev)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nv)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, ev := it.Element()
			nv, err := ToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			goMap[key.AsString()] = nv
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported cty type for native conversion: %s", ty.FriendlyName())
	}
}
