package registry

import (
	"context"

	"github.com/vk/modelspec/internal/data"
)

// InterfaceKind declares which data shape an engine's fitting function
// expects.
type InterfaceKind string

// The three supported fit interfaces.
const (
	InterfaceFormula   InterfaceKind = "formula"
	InterfaceDataFrame InterfaceKind = "data.frame"
	InterfaceMatrix    InterfaceKind = "matrix"
)

// ParseInterfaceKind validates interface text from a manifest.
func ParseInterfaceKind(s string) (InterfaceKind, bool) {
	switch InterfaceKind(s) {
	case InterfaceFormula, InterfaceDataFrame, InterfaceMatrix:
		return InterfaceKind(s), true
	}
	return "", false
}

// FuncRef names a registered Go function together with the package of origin
// it stands in for. The underlying computation is a black box reached only
// through this reference.
type FuncRef struct {
	Pkg  string `yaml:"package,omitempty" json:"package,omitempty"`
	Name string `yaml:"func" json:"func"`
}

// ArgumentDescriptor maps one user-facing argument name to an engine's
// native argument name.
type ArgumentDescriptor struct {
	// Exposed is the name users write in specifications.
	Exposed string `yaml:"exposed" json:"exposed"`
	// Original is the name the underlying function expects.
	Original string `yaml:"original" json:"original"`
	// Constructor optionally names a parameter-generation reference.
	Constructor string `yaml:"constructor,omitempty" json:"constructor,omitempty"`
	// Submodel marks arguments whose settings can be varied against a
	// single fitted object (multi-predict).
	Submodel bool `yaml:"submodel" json:"submodel"`
}

// FitModule describes how to build a fitting call for one (engine, mode)
// combination.
type FitModule struct {
	Interface InterfaceKind
	// Protected arguments are reserved for the dispatcher to fill in from
	// the actual data at fit time; users may never set them.
	Protected []string
	Func      FuncRef
	Defaults  *Arguments
}

// PredictModule describes how to build a prediction call for one
// (engine, mode, type) combination. Pre and Post name registered hooks and
// may be empty. Args values reference the eventual fit object and new data
// symbolically (as "object" and "new_data").
type PredictModule struct {
	Pre  string
	Post string
	Func FuncRef
	Args *Arguments
}

// FitRequest carries the shaped data and the resolved, engine-native
// arguments of one fitting call. The dispatcher populates the data slots;
// they are exactly the protected arguments users may not set.
type FitRequest struct {
	Formula data.Formula
	Frame   *data.Frame
	X       *data.Matrix
	Y       data.Column
	Weights []float64
	Args    map[string]any
}

// PredictRequest carries one prediction call.
type PredictRequest struct {
	Object  any
	NewData *data.Frame
	Args    map[string]any
}

// FitFunc is a registered fitting function. The returned value is an opaque
// handle stored on the ModelFit.
type FitFunc func(ctx context.Context, req *FitRequest) (any, error)

// PredictFunc is a registered prediction function.
type PredictFunc func(ctx context.Context, req *PredictRequest) (any, error)

// PreHook adjusts new data before a prediction call.
type PreHook func(newData *data.Frame, object any) (*data.Frame, error)

// PostHook normalizes a raw engine output into the canonical prediction
// shape for its type.
type PostHook func(raw any, object any) (*data.Predictions, error)

// HookInfo identifies the combination a translation hook runs for.
type HookInfo struct {
	Model  string
	Mode   string
	Engine string
}

// TranslationHook is a per-model extension point run after the generic
// merge step of translation. It may validate or rewrite the argument set.
type TranslationHook func(info HookInfo, args *Arguments) error

// Module is the interface model-definition packages implement to be
// registered with an application registry.
type Module interface {
	// Register installs the package's Go functions and hooks.
	Register(r *Registry) error
	// Manifest returns the package's embedded model definition source.
	Manifest() (filename string, src []byte)
}
