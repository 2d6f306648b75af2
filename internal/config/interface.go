package config

import "context"

// Loader is the interface for a format-specific model-definition loader.
type Loader interface {
	// Load reads definitions from files or directories and translates them
	// into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// LoadSources translates in-memory definition sources (e.g. embedded
	// manifests), keyed by a display filename used in diagnostics.
	LoadSources(ctx context.Context, sources map[string][]byte) (*Model, error)
}

// Merge combines several models into one; later models append after earlier
// ones. Duplicate model names are allowed here and surface as duplicate
// registration errors when applied, which keeps conflict reporting in one
// place.
func Merge(models ...*Model) *Model {
	out := &Model{Models: make(map[string]*ModelDefinition)}
	for _, m := range models {
		if m == nil {
			continue
		}
		for _, name := range m.Order {
			if _, exists := out.Models[name]; !exists {
				out.Order = append(out.Order, name)
				out.Models[name] = m.Models[name]
				continue
			}
			// Same model defined across several sources: append its parts.
			dst := out.Models[name]
			src := m.Models[name]
			dst.Modes = append(dst.Modes, src.Modes...)
			dst.Arguments = append(dst.Arguments, src.Arguments...)
			dst.Fits = append(dst.Fits, src.Fits...)
			dst.Predicts = append(dst.Predicts, src.Predicts...)
			dst.Dependencies = append(dst.Dependencies, src.Dependencies...)
		}
	}
	return out
}
