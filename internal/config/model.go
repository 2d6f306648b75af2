package config

import (
	"github.com/vk/modelspec/internal/deferred"
)

// Model is the unified, format-agnostic representation of a set of model
// definitions. Order is preserved everywhere so that applying the same
// sources always produces the same registry.
type Model struct {
	Order  []string
	Models map[string]*ModelDefinition
}

// ModelDefinition is the format-agnostic representation of one `model`
// block.
type ModelDefinition struct {
	Name         string
	Modes        []*ModeDefinition
	Arguments    []*ArgumentDefinition
	Fits         []*FitDefinition
	Predicts     []*PredictDefinition
	Dependencies []*DependencyDefinition
}

// ModeDefinition declares one supported mode and the engines available
// under it.
type ModeDefinition struct {
	Name    string
	Engines []string
}

// ArgumentDefinition maps a user-facing argument name to an engine-native
// one.
type ArgumentDefinition struct {
	Engine      string
	Exposed     string
	Original    string
	Constructor string
	Submodel    bool
}

// FitDefinition describes a fit module. Default values stay deferred: they
// are manifest expressions that must not be evaluated before dispatch.
type FitDefinition struct {
	Engine       string
	Mode         string
	Interface    string
	Protected    []string
	Func         string
	Pkg          string
	DefaultNames []string
	Defaults     map[string]deferred.Value
}

// PredictDefinition describes a predict module. Args reference the eventual
// fit object and new data symbolically and stay deferred.
type PredictDefinition struct {
	Engine   string
	Mode     string
	Type     string
	Func     string
	Pkg      string
	Pre      string
	Post     string
	ArgNames []string
	Args     map[string]deferred.Value
}

// DependencyDefinition declares the external packages an engine requires.
type DependencyDefinition struct {
	Engine   string
	Packages []string
}
