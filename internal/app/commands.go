package app

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vk/modelspec/internal/registry"
)

// ListModels writes every registered model name, one per line.
func (a *App) ListModels(w io.Writer) error {
	for _, name := range a.registry.ModelNames() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

// Describe writes a model's registered modes, engines, arguments, and
// modules in the requested format ("yaml" or "json").
func (a *App) Describe(w io.Writer, model string, filter registry.LookupFilter, format string) error {
	info, err := a.registry.Lookup(model, filter)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	}
}
