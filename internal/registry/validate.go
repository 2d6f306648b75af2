package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/modelspec/internal/ctxlog"
)

// Validate performs a strict parity check between registered model metadata
// and Go code: every function or hook a fit/predict module references by
// name must be backed by a registered Go function, and every engine must
// carry a fit module for each mode it is registered under. A failure here is
// a programming error in model-definition code.
func (r *Registry) Validate(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range r.modelNames {
		entry := r.models[name]

		for mode, engines := range entry.engines {
			for _, engine := range engines {
				if _, ok := entry.fits[comboKey{engine: engine, mode: mode}]; !ok {
					errs = append(errs, fmt.Sprintf(
						"model '%s': engine '%s' registered for mode '%s' but has no fit module",
						name, engine, mode))
				}
			}
		}

		for key, fm := range entry.fits {
			if _, ok := r.fitFuncs[fm.Func.Name]; !ok {
				errs = append(errs, fmt.Sprintf(
					"model '%s': fit module for engine '%s', mode '%s' references unregistered fit function '%s'",
					name, key.engine, key.mode, fm.Func.Name))
			}
		}

		for key, byType := range entry.predicts {
			for ptype, pm := range byType {
				if _, ok := r.predictFuncs[pm.Func.Name]; !ok {
					errs = append(errs, fmt.Sprintf(
						"model '%s': predict module '%s' for engine '%s', mode '%s' references unregistered predict function '%s'",
						name, ptype, key.engine, key.mode, pm.Func.Name))
				}
				if pm.Pre != "" {
					if _, ok := r.preHooks[pm.Pre]; !ok {
						errs = append(errs, fmt.Sprintf(
							"model '%s': predict module '%s' references unregistered pre hook '%s'",
							name, ptype, pm.Pre))
					}
				}
				if pm.Post != "" {
					if _, ok := r.postHooks[pm.Post]; !ok {
						errs = append(errs, fmt.Sprintf(
							"model '%s': predict module '%s' references unregistered post hook '%s'",
							name, ptype, pm.Post))
					}
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "models", len(r.modelNames))
	return nil
}
