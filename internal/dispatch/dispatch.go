// Package dispatch executes translated call descriptors against registered
// engine functions. Fitting shapes the caller's data to the fit module's
// declared interface, resolves every deferred argument, and wraps the raw
// engine output into a ModelFit; prediction builds and runs prediction calls
// against a ModelFit and normalizes their output shape.
package dispatch

import (
	"errors"
	"time"

	"github.com/vk/modelspec/internal/data"
	"github.com/vk/modelspec/internal/spec"
)

// Execution and prediction errors.
var (
	ErrFitExecution      = errors.New("fit execution failed")
	ErrInterfaceMismatch = errors.New("data shape incompatible with fit interface")
	ErrNoSubmodelSupport = errors.New("engine supports no submodel prediction")
)

// Control governs dispatcher behavior. Verbosity controls whether caught
// execution errors are also emitted as warnings; it never affects whether an
// error is caught.
type Control struct {
	// Verbosity is an integer severity level; >= 1 logs caught failures.
	Verbosity int
	// Catch makes fit failures return a tagged failure ModelFit instead of
	// an error, so batch workflows can continue past individual failures.
	Catch bool
}

// DefaultControl is the dispatcher's standard configuration.
var DefaultControl = Control{Verbosity: 1}

// Preproc carries preprocessing metadata a later prediction needs.
type Preproc struct {
	OutcomeName   string
	OutcomeLevels []string
	TermNames     []string
}

// ModelFit is the immutable result of one successful (or, with catching
// enabled, failed) fit call.
type ModelFit struct {
	// ID uniquely identifies this fit for logging and bookkeeping.
	ID string
	// Spec is the originating specification.
	Spec *spec.Spec
	// Fit is the opaque handle returned by the engine's fitting function.
	// It is nil on a failure fit.
	Fit any
	// Preproc holds metadata derived from the training data.
	Preproc Preproc
	// Elapsed is the wall time of the engine call.
	Elapsed time.Duration
	// Err tags a caught fit failure.
	Err error
}

// Failed reports whether the fit is a caught-failure sentinel.
func (f *ModelFit) Failed() bool {
	return f.Err != nil
}

// fitData is the shaped, interface-ready form of the caller's inputs.
type fitData struct {
	formula data.Formula
	frame   *data.Frame
	x       *data.Matrix
	y       data.Column
	weights []float64
}
