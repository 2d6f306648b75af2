// Package schema declares the HCL block structures of model-definition
// manifests. These structs are decode targets only; the format-agnostic
// representation lives in internal/config.
package schema

import "github.com/hashicorp/hcl/v2"

// File is the top-level structure of one manifest file.
type File struct {
	Models []*Model `hcl:"model,block"`
}

// Model represents a `model` block.
type Model struct {
	Name         string        `hcl:"name,label"`
	Modes        []*Mode       `hcl:"mode,block"`
	Arguments    []*Argument   `hcl:"argument,block"`
	Fits         []*Fit        `hcl:"fit,block"`
	Predicts     []*Predict    `hcl:"predict,block"`
	Dependencies []*Dependency `hcl:"dependencies,block"`
}

// Mode represents a `mode` block: one supported mode and its engines.
type Mode struct {
	Name    string   `hcl:"name,label"`
	Engines []string `hcl:"engines,optional"`
}

// Argument represents an `argument` block mapping an exposed argument name
// to an engine-native one.
type Argument struct {
	Engine      string `hcl:"engine,label"`
	Exposed     string `hcl:"exposed,label"`
	Original    string `hcl:"original"`
	Constructor string `hcl:"constructor,optional"`
	Submodel    bool   `hcl:"submodel,optional"`
}

// Fit represents a `fit` block for one (engine, mode) combination.
type Fit struct {
	Engine    string     `hcl:"engine,label"`
	Mode      string     `hcl:"mode,label"`
	Interface string     `hcl:"interface"`
	Protected []string   `hcl:"protect,optional"`
	Pkg       string     `hcl:"package,optional"`
	Func      string     `hcl:"func"`
	Defaults  *ArgsBlock `hcl:"defaults,block"`
}

// Predict represents a `predict` block for one (engine, mode, type)
// combination.
type Predict struct {
	Engine string     `hcl:"engine,label"`
	Mode   string     `hcl:"mode,label"`
	Type   string     `hcl:"type,label"`
	Pkg    string     `hcl:"package,optional"`
	Func   string     `hcl:"func"`
	Pre    string     `hcl:"pre,optional"`
	Post   string     `hcl:"post,optional"`
	Args   *ArgsBlock `hcl:"args,block"`
}

// ArgsBlock holds the free-form attributes of a `defaults` or `args` block.
// The attribute expressions stay unevaluated; they become deferred values.
type ArgsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Dependency represents a `dependencies` block for one engine.
type Dependency struct {
	Engine   string   `hcl:"engine,label"`
	Packages []string `hcl:"packages"`
}
