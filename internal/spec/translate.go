package spec

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vk/modelspec/internal/ctxlog"
	"github.com/vk/modelspec/internal/deferred"
	"github.com/vk/modelspec/internal/registry"
)

// ErrProtectedArgument reports an attempt to set an argument the dispatcher
// reserves for data injected at fit time.
var ErrProtectedArgument = errors.New("protected argument")

// Method holds the resolved call descriptors of a translated specification.
type Method struct {
	Fit *CallDescriptor
}

// CallDescriptor is a frozen, ready-to-invoke call description: the function
// reference, the declared data interface, and the merged argument mapping
// under engine-native names. Names fixes the deterministic argument order.
type CallDescriptor struct {
	Func      registry.FuncRef
	Interface registry.InterfaceKind
	Names     []string
	Args      map[string]deferred.Value
}

// Arg returns the deferred value stored under an engine-native name.
func (d *CallDescriptor) Arg(name string) (deferred.Value, bool) {
	v, ok := d.Args[name]
	return v, ok
}

// Has reports whether the descriptor carries the named argument.
func (d *CallDescriptor) Has(name string) bool {
	_, ok := d.Args[name]
	return ok
}

// Translate produces the concrete call descriptor for the target engine and
// stores it on the specification. If engine is empty, the previously set
// engine is used. Identical inputs always produce the same descriptor; the
// registry is the only state consulted and is read-only here.
func (s *Spec) Translate(ctx context.Context, engine string) (*Method, error) {
	logger := ctxlog.FromContext(ctx).With("model", s.Model, "mode", s.Mode)

	if engine == "" {
		engine = s.Engine
	}
	if engine == "" {
		return nil, fmt.Errorf("model %q: translate needs an engine: %w", s.Model, ErrNoEngine)
	}
	if engine != s.Engine {
		if err := s.checkEngine(engine); err != nil {
			return nil, err
		}
	}
	if s.Mode == ModeUnknown {
		return nil, fmt.Errorf("model %q: translate requires a concrete mode: %w", s.Model, ErrInvalidMode)
	}

	fm, err := s.reg.Fit(s.Model, engine, s.Mode)
	if err != nil {
		return nil, err
	}

	// 1. Start from the fit module's defaults.
	merged := registry.NewArguments()
	for _, name := range fm.Defaults.Names() {
		v, _ := fm.Defaults.Get(name)
		merged.Set(name, v)
	}

	// 2. Overlay user arguments whose exposed names map to engine-native
	// names. User values take precedence over defaults; unset arguments
	// fall back; arguments with neither are simply absent.
	descs, err := s.reg.Arguments(s.Model, engine)
	if err != nil {
		return nil, err
	}
	mapped := make(map[string]struct{}, len(descs))
	for _, desc := range descs {
		mapped[desc.Exposed] = struct{}{}
		v, ok := s.Args.Get(desc.Exposed)
		if !ok || v.IsZero() {
			continue
		}
		merged.Set(desc.Original, v)
	}
	for _, exposed := range s.Args.Names() {
		if _, ok := mapped[exposed]; !ok {
			logger.Warn("Argument has no mapping for this engine and was ignored.",
				"argument", exposed, "engine", engine)
		}
	}

	// 3. Engine arguments merge last, verbatim, so they can override
	// anything above. Sorted for determinism; insertion order of a user
	// map is not meaningful.
	engineNames := s.EngineArgs.Names()
	sort.Strings(engineNames)
	for _, name := range engineNames {
		v, _ := s.EngineArgs.Get(name)
		merged.Set(name, v)
	}

	// 4. Protection is absolute regardless of argument source.
	for _, name := range fm.Protected {
		if merged.Has(name) {
			return nil, fmt.Errorf("argument %q is reserved for data injected at fit time: %w",
				name, ErrProtectedArgument)
		}
	}

	// 5. Model-specific extension hook.
	if hook, ok := s.reg.TranslationHook(s.Model); ok {
		info := registry.HookInfo{Model: s.Model, Mode: s.Mode, Engine: engine}
		if err := hook(info, merged); err != nil {
			return nil, fmt.Errorf("translating %q for engine %q: %w", s.Model, engine, err)
		}
	}

	// 6. Freeze.
	desc := &CallDescriptor{
		Func:      fm.Func,
		Interface: fm.Interface,
		Names:     merged.Names(),
		Args:      make(map[string]deferred.Value, merged.Len()),
	}
	for _, name := range desc.Names {
		v, _ := merged.Get(name)
		desc.Args[name] = v
	}

	s.Engine = engine
	s.Method = &Method{Fit: desc}
	logger.Debug("Specification translated.", "engine", engine, "args", desc.Names)
	return s.Method, nil
}
