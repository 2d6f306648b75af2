package registry

import "errors"

// Registration and lookup errors. All registration failures indicate a
// programming error in model-definition code and are never recovered.
var (
	ErrDuplicateModel         = errors.New("model already registered")
	ErrUnknownModel           = errors.New("unknown model")
	ErrUnknownMode            = errors.New("unknown mode")
	ErrUnknownEngine          = errors.New("unknown engine")
	ErrUnsupportedCombination = errors.New("unsupported model/mode/engine combination")

	// ErrUnsupportedPredictionType reports a predict-module lookup for a
	// prediction type nobody registered.
	ErrUnsupportedPredictionType = errors.New("unsupported prediction type")
)
