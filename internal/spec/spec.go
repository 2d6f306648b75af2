// Package spec implements the user-facing model specification and its
// translation into concrete, engine-native call descriptors.
//
// A specification is declarative: it names a model, a mode, and argument
// values, all deferred. Nothing touches an engine until Translate builds a
// call descriptor, and nothing is evaluated until the dispatcher resolves
// the descriptor against real data.
package spec

import (
	"errors"
	"fmt"

	"github.com/vk/modelspec/internal/deferred"
	"github.com/vk/modelspec/internal/registry"
)

// ModeUnknown is the placeholder mode of a multi-mode model whose caller
// has not committed to one yet. Translation requires a concrete mode.
const ModeUnknown = "unknown"

// Specification errors.
var (
	ErrInvalidMode = errors.New("invalid mode")
	ErrNoEngine    = errors.New("no engine set")
)

// Spec is a declarative model description. It is immutable after creation
// except for engine attachment and translation.
type Spec struct {
	Model string
	Mode  string
	// Args maps exposed argument names to deferred values.
	Args *registry.Arguments
	// EngineArgs maps engine-native argument names to deferred values for
	// engine-specific tuning not exposed as a standard argument.
	EngineArgs *registry.Arguments
	// Engine is the selected engine, or empty.
	Engine string
	// Method holds the resolved fit call descriptor once translated.
	Method *Method

	reg *registry.Registry
}

// New validates the mode against the registry and wraps each argument value
// as a deferred value. An empty mode defaults to the model's single mode, or
// to ModeUnknown when the model supports more than one.
func New(reg *registry.Registry, model, mode string, args map[string]any) (*Spec, error) {
	modes, err := reg.Modes(model)
	if err != nil {
		return nil, err
	}

	switch {
	case mode == "":
		if len(modes) == 1 {
			mode = modes[0]
		} else {
			mode = ModeUnknown
		}
	case mode == ModeUnknown:
		// Always acceptable at construction time.
	default:
		found := false
		for _, m := range modes {
			if m == mode {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("model %q does not support mode %q: %w", model, mode, ErrInvalidMode)
		}
	}

	s := &Spec{
		Model:      model,
		Mode:       mode,
		Args:       registry.NewArguments(),
		EngineArgs: registry.NewArguments(),
		reg:        reg,
	}
	for _, name := range sortedKeys(args) {
		dv, err := toDeferred(args[name])
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		s.Args.Set(name, dv)
	}
	return s, nil
}

// SetEngine selects an engine and stores engine-specific arguments as
// deferred values. The engine must be registered for the specification's
// model and mode (or for any mode while the mode is still unknown).
func (s *Spec) SetEngine(engine string, engineArgs map[string]any) error {
	if err := s.checkEngine(engine); err != nil {
		return err
	}
	for _, name := range sortedKeys(engineArgs) {
		dv, err := toDeferred(engineArgs[name])
		if err != nil {
			return fmt.Errorf("engine argument %q: %w", name, err)
		}
		s.EngineArgs.Set(name, dv)
	}
	s.Engine = engine
	return nil
}

// Registry returns the registry the specification was built against.
func (s *Spec) Registry() *registry.Registry {
	return s.reg
}

func (s *Spec) checkEngine(engine string) error {
	if s.Mode == ModeUnknown {
		if !s.reg.HasEngine(s.Model, engine) {
			return fmt.Errorf("model %q has no engine %q: %w", s.Model, engine, registry.ErrUnknownEngine)
		}
		return nil
	}
	engines, err := s.reg.Engines(s.Model, s.Mode)
	if err != nil {
		return err
	}
	for _, e := range engines {
		if e == engine {
			return nil
		}
	}
	return fmt.Errorf("model %q, mode %q has no engine %q: %w",
		s.Model, s.Mode, engine, registry.ErrUnknownEngine)
}

// toDeferred accepts either a ready deferred value or any Go literal.
func toDeferred(v any) (deferred.Value, error) {
	if dv, ok := v.(deferred.Value); ok {
		return dv, nil
	}
	return deferred.FromGo(v)
}
