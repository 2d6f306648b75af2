package data

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestToNative_ScalarConversions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   cty.Value
		want any
	}{
		{name: "whole number stays int", in: cty.NumberIntVal(3), want: 3},
		{name: "fractional number", in: cty.NumberFloatVal(1.5), want: 1.5},
		{name: "string", in: cty.StringVal("gaussian"), want: "gaussian"},
		{name: "bool", in: cty.True, want: true},
		{name: "null", in: cty.NullVal(cty.String), want: nil},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToNative(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestToNative_Collections(t *testing.T) {
	t.Parallel()

	list := cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("two")})
	got, err := ToNative(list)
	require.NoError(t, err)
	require.Equal(t, []any{1, "two"}, got)

	obj := cty.ObjectVal(map[string]cty.Value{"k": cty.NumberFloatVal(1.345)})
	got, err = ToNative(obj)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"k": 1.345}, got)
}

func TestToNative_UnwrapsCapsules(t *testing.T) {
	t.Parallel()

	frame, err := NewFrame(Column{Name: "x", Numeric: []float64{1}})
	require.NoError(t, err)

	got, err := ToNative(FrameVal(frame))
	require.NoError(t, err)
	require.Same(t, frame, got)

	fit := &struct{ coef float64 }{coef: 2}
	got, err = ToNative(FittedVal(fit))
	require.NoError(t, err)
	require.Same(t, fit, got)
}

func TestCapsuleUnwrapHelpers(t *testing.T) {
	t.Parallel()

	frame, err := NewFrame(Column{Name: "x", Numeric: []float64{1}})
	require.NoError(t, err)

	unwrapped, ok := FrameFromVal(FrameVal(frame))
	require.True(t, ok)
	require.Same(t, frame, unwrapped)

	_, ok = FrameFromVal(cty.StringVal("not a frame"))
	require.False(t, ok)

	object, ok := FittedFromVal(FittedVal("handle"))
	require.True(t, ok)
	require.Equal(t, "handle", object)
}

func TestNormalizePredictions(t *testing.T) {
	t.Parallel()

	numeric, err := NormalizePredictions([]float64{1, 2})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, numeric.Numeric)
	require.Equal(t, 2, numeric.NRows())

	classes, err := NormalizePredictions([]string{"a", "b", "a"})
	require.NoError(t, err)
	require.Equal(t, 3, classes.NRows())

	_, err = NormalizePredictions(42)
	require.Error(t, err)
	require.Contains(t, err.Error(), "int")
}
