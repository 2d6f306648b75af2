package registry

import (
	"fmt"
	"sort"
)

// Info is a read-only snapshot of one model's registration, used by
// introspection and help tooling. It round-trips exactly what was
// registered.
type Info struct {
	Name         string                          `yaml:"name" json:"name"`
	Modes        []string                        `yaml:"modes" json:"modes"`
	Engines      map[string][]string             `yaml:"engines" json:"engines"`
	Arguments    map[string][]ArgumentDescriptor `yaml:"arguments,omitempty" json:"arguments,omitempty"`
	Fits         []ComboInfo                     `yaml:"fit_modules,omitempty" json:"fit_modules,omitempty"`
	Predicts     []PredictInfo                   `yaml:"predict_modules,omitempty" json:"predict_modules,omitempty"`
	Dependencies map[string][]string             `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// ComboInfo summarizes one registered fit module.
type ComboInfo struct {
	Engine    string   `yaml:"engine" json:"engine"`
	Mode      string   `yaml:"mode" json:"mode"`
	Interface string   `yaml:"interface" json:"interface"`
	Func      FuncRef  `yaml:"function,inline" json:"function"`
	Protected []string `yaml:"protected,omitempty" json:"protected,omitempty"`
	Defaults  []string `yaml:"defaults,omitempty" json:"defaults,omitempty"`
}

// PredictInfo summarizes one registered predict module.
type PredictInfo struct {
	Engine string  `yaml:"engine" json:"engine"`
	Mode   string  `yaml:"mode" json:"mode"`
	Type   string  `yaml:"type" json:"type"`
	Func   FuncRef `yaml:"function,inline" json:"function"`
}

// LookupFilter narrows a Lookup to one mode and/or engine. Zero values mean
// no filtering.
type LookupFilter struct {
	Mode   string
	Engine string
}

// ModelNames returns every registered model name in registration order.
func (r *Registry) ModelNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.modelNames))
	copy(out, r.modelNames)
	return out
}

// Modes returns a model's supported modes in registration order.
func (r *Registry) Modes(model string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.models[model]
	if !ok {
		return nil, fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	out := make([]string, len(entry.modes))
	copy(out, entry.modes)
	return out, nil
}

// Engines returns the engines registered under a model's mode.
func (r *Registry) Engines(model, mode string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.models[model]
	if !ok {
		return nil, fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	out := make([]string, len(entry.engines[mode]))
	copy(out, entry.engines[mode])
	return out, nil
}

// HasEngine reports whether an engine is associated with the model via any
// mode.
func (r *Registry) HasEngine(model, engine string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.models[model]
	if !ok {
		return false
	}
	return entry.hasEngine(engine)
}

// Arguments returns the argument descriptors for a model/engine pair in
// registration order.
func (r *Registry) Arguments(model, engine string) ([]ArgumentDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.models[model]
	if !ok {
		return nil, fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	out := make([]ArgumentDescriptor, len(entry.args[engine]))
	copy(out, entry.args[engine])
	return out, nil
}

// Fit returns the fit module for a (model, engine, mode) combination.
func (r *Registry) Fit(model, engine, mode string) (*FitModule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.models[model]
	if !ok {
		return nil, fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	fm, ok := entry.fits[comboKey{engine: engine, mode: mode}]
	if !ok {
		return nil, fmt.Errorf("model %q, engine %q, mode %q has no fit module: %w",
			model, engine, mode, ErrUnsupportedCombination)
	}
	return fm, nil
}

// Predict returns the predict module for a (model, engine, mode, type)
// combination.
func (r *Registry) Predict(model, engine, mode, ptype string) (*PredictModule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.models[model]
	if !ok {
		return nil, fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}
	pm, ok := entry.predicts[comboKey{engine: engine, mode: mode}][ptype]
	if !ok {
		return nil, fmt.Errorf("model %q, engine %q, mode %q, type %q: %w",
			model, engine, mode, ptype, ErrUnsupportedPredictionType)
	}
	return pm, nil
}

// PredictTypes returns the prediction types registered for a combination, sorted.
func (r *Registry) PredictTypes(model, engine, mode string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.models[model]
	if !ok {
		return nil
	}
	types := make([]string, 0, len(entry.predicts[comboKey{engine: engine, mode: mode}]))
	for t := range entry.predicts[comboKey{engine: engine, mode: mode}] {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Dependencies returns the external packages declared for a model's engine.
func (r *Registry) Dependencies(model, engine string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.models[model]
	if !ok {
		return nil
	}
	out := make([]string, len(entry.deps[engine]))
	copy(out, entry.deps[engine])
	return out
}

// Lookup returns a filtered snapshot of a model's registration.
func (r *Registry) Lookup(model string, filter LookupFilter) (*Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.models[model]
	if !ok {
		return nil, fmt.Errorf("%q: %w", model, ErrUnknownModel)
	}

	modeMatch := func(mode string) bool { return filter.Mode == "" || filter.Mode == mode }
	engineMatch := func(engine string) bool { return filter.Engine == "" || filter.Engine == engine }

	info := &Info{
		Name:         model,
		Engines:      make(map[string][]string),
		Arguments:    make(map[string][]ArgumentDescriptor),
		Dependencies: make(map[string][]string),
	}
	for _, mode := range entry.modes {
		if modeMatch(mode) {
			info.Modes = append(info.Modes, mode)
		}
	}
	for mode, engines := range entry.engines {
		if !modeMatch(mode) {
			continue
		}
		for _, engine := range engines {
			if engineMatch(engine) {
				info.Engines[mode] = append(info.Engines[mode], engine)
			}
		}
	}
	for engine, descs := range entry.args {
		if !engineMatch(engine) {
			continue
		}
		info.Arguments[engine] = append([]ArgumentDescriptor(nil), descs...)
	}
	for engine, pkgs := range entry.deps {
		if !engineMatch(engine) {
			continue
		}
		info.Dependencies[engine] = append([]string(nil), pkgs...)
	}

	var keys []comboKey
	for key := range entry.fits {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].engine != keys[j].engine {
			return keys[i].engine < keys[j].engine
		}
		return keys[i].mode < keys[j].mode
	})
	for _, key := range keys {
		if !modeMatch(key.mode) || !engineMatch(key.engine) {
			continue
		}
		fm := entry.fits[key]
		info.Fits = append(info.Fits, ComboInfo{
			Engine:    key.engine,
			Mode:      key.mode,
			Interface: string(fm.Interface),
			Func:      fm.Func,
			Protected: append([]string(nil), fm.Protected...),
			Defaults:  fm.Defaults.Names(),
		})
	}

	keys = keys[:0]
	for key := range entry.predicts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].engine != keys[j].engine {
			return keys[i].engine < keys[j].engine
		}
		return keys[i].mode < keys[j].mode
	})
	for _, key := range keys {
		if !modeMatch(key.mode) || !engineMatch(key.engine) {
			continue
		}
		var types []string
		for t := range entry.predicts[key] {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			pm := entry.predicts[key][t]
			info.Predicts = append(info.Predicts, PredictInfo{
				Engine: key.engine,
				Mode:   key.mode,
				Type:   t,
				Func:   pm.Func,
			})
		}
	}
	return info, nil
}
