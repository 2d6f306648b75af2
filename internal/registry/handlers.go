package registry

import (
	"fmt"
	"log/slog"
)

// RegisterFitFunc registers a Go fitting function under the name manifests
// reference.
func (r *Registry) RegisterFitFunc(name string, fn FitFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fitFuncs[name]; exists {
		return fmt.Errorf("fit function %q already registered", name)
	}
	slog.Debug("Registering fit function.", "name", name)
	r.fitFuncs[name] = fn
	return nil
}

// RegisterPredictFunc registers a Go prediction function.
func (r *Registry) RegisterPredictFunc(name string, fn PredictFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.predictFuncs[name]; exists {
		return fmt.Errorf("predict function %q already registered", name)
	}
	slog.Debug("Registering predict function.", "name", name)
	r.predictFuncs[name] = fn
	return nil
}

// RegisterPreHook registers a prediction pre-processing hook.
func (r *Registry) RegisterPreHook(name string, fn PreHook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.preHooks[name]; exists {
		return fmt.Errorf("pre hook %q already registered", name)
	}
	slog.Debug("Registering pre hook.", "name", name)
	r.preHooks[name] = fn
	return nil
}

// RegisterPostHook registers a prediction post-processing hook.
func (r *Registry) RegisterPostHook(name string, fn PostHook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.postHooks[name]; exists {
		return fmt.Errorf("post hook %q already registered", name)
	}
	slog.Debug("Registering post hook.", "name", name)
	r.postHooks[name] = fn
	return nil
}

// RegisterTranslationHook registers the per-model translation extension
// point. At most one hook per model.
func (r *Registry) RegisterTranslationHook(model string, fn TranslationHook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transHooks[model]; exists {
		return fmt.Errorf("translation hook for model %q already registered", model)
	}
	slog.Debug("Registering translation hook.", "model", model)
	r.transHooks[model] = fn
	return nil
}

// FitFunc returns the registered fitting function with the given name.
func (r *Registry) FitFunc(name string) (FitFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fitFuncs[name]
	return fn, ok
}

// PredictFunc returns the registered prediction function with the given name.
func (r *Registry) PredictFunc(name string) (PredictFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.predictFuncs[name]
	return fn, ok
}

// PreHook returns the registered pre hook with the given name.
func (r *Registry) PreHook(name string) (PreHook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.preHooks[name]
	return fn, ok
}

// PostHook returns the registered post hook with the given name.
func (r *Registry) PostHook(name string) (PostHook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.postHooks[name]
	return fn, ok
}

// TranslationHook returns the hook registered for a model, if any.
func (r *Registry) TranslationHook(model string) (TranslationHook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transHooks[model]
	return fn, ok
}
