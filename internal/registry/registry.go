package registry

import (
	"fmt"
	"log/slog"
	"sync"
)

// comboKey identifies one (engine, mode) pairing within a model entry.
type comboKey struct {
	engine string
	mode   string
}

// modelEntry is the full registration record for one model.
type modelEntry struct {
	name     string
	modes    []string
	engines  map[string][]string // mode -> engines, insertion order
	args     map[string][]ArgumentDescriptor
	fits     map[comboKey]*FitModule
	predicts map[comboKey]map[string]*PredictModule
	deps     map[string][]string
}

// Registry holds all registered models and functions for a single
// application instance. A test can construct an independent Registry to
// avoid cross-test pollution.
type Registry struct {
	mu         sync.RWMutex
	models     map[string]*modelEntry
	modelNames []string

	fitFuncs     map[string]FitFunc
	predictFuncs map[string]PredictFunc
	preHooks     map[string]PreHook
	postHooks    map[string]PostHook
	transHooks   map[string]TranslationHook
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		models:       make(map[string]*modelEntry),
		fitFuncs:     make(map[string]FitFunc),
		predictFuncs: make(map[string]PredictFunc),
		preHooks:     make(map[string]PreHook),
		postHooks:    make(map[string]PostHook),
		transHooks:   make(map[string]TranslationHook),
	}
}

// RegisterModel creates an empty entry for a new model name.
func (r *Registry) RegisterModel(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("model name must not be empty")
	}
	if _, exists := r.models[name]; exists {
		return fmt.Errorf("%q: %w", name, ErrDuplicateModel)
	}
	slog.Debug("Registering model.", "model", name)
	r.models[name] = &modelEntry{
		name:     name,
		engines:  make(map[string][]string),
		args:     make(map[string][]ArgumentDescriptor),
		fits:     make(map[comboKey]*FitModule),
		predicts: make(map[comboKey]map[string]*PredictModule),
		deps:     make(map[string][]string),
	}
	r.modelNames = append(r.modelNames, name)
	return nil
}

// RegisterMode adds a mode to a model's supported set. Re-adding an existing
// mode is a no-op, matching the append-only set semantics of registration.
func (r *Registry) RegisterMode(model, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.models[model]
	if !ok {
		return fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	if mode == "" {
		return fmt.Errorf("model %q: mode must not be empty", model)
	}
	for _, m := range entry.modes {
		if m == mode {
			return nil
		}
	}
	slog.Debug("Registering mode.", "model", model, "mode", mode)
	entry.modes = append(entry.modes, mode)
	return nil
}

// RegisterEngine adds an engine under a model's mode.
func (r *Registry) RegisterEngine(model, mode, engine string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.models[model]
	if !ok {
		return fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	if !entry.hasMode(mode) {
		return fmt.Errorf("model %q has no mode %q: %w", model, mode, ErrUnknownMode)
	}
	for _, e := range entry.engines[mode] {
		if e == engine {
			return nil
		}
	}
	slog.Debug("Registering engine.", "model", model, "mode", mode, "engine", engine)
	entry.engines[mode] = append(entry.engines[mode], engine)
	return nil
}

// RegisterArgument appends an argument descriptor for a model/engine pair.
// The engine must already be associated with the model via some mode.
func (r *Registry) RegisterArgument(model, engine string, desc ArgumentDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.models[model]
	if !ok {
		return fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	if !entry.hasEngine(engine) {
		return fmt.Errorf("model %q has no engine %q: %w", model, engine, ErrUnknownEngine)
	}
	if desc.Exposed == "" || desc.Original == "" {
		return fmt.Errorf("model %q, engine %q: argument needs both exposed and original names", model, engine)
	}
	for _, d := range entry.args[engine] {
		if d.Exposed == desc.Exposed {
			return fmt.Errorf("model %q, engine %q: argument %q already registered", model, engine, desc.Exposed)
		}
	}
	slog.Debug("Registering argument.",
		"model", model, "engine", engine, "exposed", desc.Exposed, "original", desc.Original)
	entry.args[engine] = append(entry.args[engine], desc)
	return nil
}

// RegisterFit installs the fit module for a (model, engine, mode)
// combination.
func (r *Registry) RegisterFit(model, engine, mode string, fm *FitModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.comboEntry(model, engine, mode)
	if err != nil {
		return err
	}
	key := comboKey{engine: engine, mode: mode}
	if _, exists := entry.fits[key]; exists {
		return fmt.Errorf("model %q: fit module for engine %q, mode %q already registered", model, engine, mode)
	}
	if fm.Defaults == nil {
		fm.Defaults = NewArguments()
	}
	for _, p := range fm.Protected {
		if fm.Defaults.Has(p) {
			return fmt.Errorf("model %q, engine %q: default for protected argument %q", model, engine, p)
		}
	}
	slog.Debug("Registering fit module.",
		"model", model, "engine", engine, "mode", mode, "func", fm.Func.Name, "interface", string(fm.Interface))
	entry.fits[key] = fm
	return nil
}

// RegisterPredict installs a predict module for a (model, engine, mode,
// type) combination. Multiple types may coexist per combination.
func (r *Registry) RegisterPredict(model, engine, mode, ptype string, pm *PredictModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.comboEntry(model, engine, mode)
	if err != nil {
		return err
	}
	if ptype == "" {
		return fmt.Errorf("model %q: prediction type must not be empty", model)
	}
	key := comboKey{engine: engine, mode: mode}
	if entry.predicts[key] == nil {
		entry.predicts[key] = make(map[string]*PredictModule)
	}
	if _, exists := entry.predicts[key][ptype]; exists {
		return fmt.Errorf("model %q: predict module %q for engine %q, mode %q already registered",
			model, ptype, engine, mode)
	}
	if pm.Args == nil {
		pm.Args = NewArguments()
	}
	slog.Debug("Registering predict module.",
		"model", model, "engine", engine, "mode", mode, "type", ptype, "func", pm.Func.Name)
	entry.predicts[key][ptype] = pm
	return nil
}

// RegisterDependency declares that an engine needs an external package.
func (r *Registry) RegisterDependency(model, engine, pkg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.models[model]
	if !ok {
		return fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	if !entry.hasEngine(engine) {
		return fmt.Errorf("model %q has no engine %q: %w", model, engine, ErrUnknownEngine)
	}
	for _, d := range entry.deps[engine] {
		if d == pkg {
			return nil
		}
	}
	entry.deps[engine] = append(entry.deps[engine], pkg)
	return nil
}

// comboEntry validates that engine is registered under mode for model.
// Callers must hold the write lock.
func (r *Registry) comboEntry(model, engine, mode string) (*modelEntry, error) {
	entry, ok := r.models[model]
	if !ok {
		return nil, fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	for _, e := range entry.engines[mode] {
		if e == engine {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("model %q, engine %q, mode %q: %w", model, engine, mode, ErrUnsupportedCombination)
}

func (e *modelEntry) hasMode(mode string) bool {
	for _, m := range e.modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (e *modelEntry) hasEngine(engine string) bool {
	for _, engines := range e.engines {
		for _, eng := range engines {
			if eng == engine {
				return true
			}
		}
	}
	return false
}
