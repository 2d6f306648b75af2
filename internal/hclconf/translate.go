package hclconf

import (
	"fmt"

	"github.com/vk/modelspec/internal/config"
	"github.com/vk/modelspec/internal/deferred"
	"github.com/vk/modelspec/internal/schema"
)

// translateFile converts one decoded manifest into the format-agnostic
// model.
func translateFile(file *schema.File) (*config.Model, error) {
	out := &config.Model{Models: make(map[string]*config.ModelDefinition)}
	for _, m := range file.Models {
		def, err := translateModel(m)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", m.Name, err)
		}
		if _, dup := out.Models[m.Name]; dup {
			return nil, fmt.Errorf("model %q defined twice in one manifest", m.Name)
		}
		out.Order = append(out.Order, m.Name)
		out.Models[m.Name] = def
	}
	return out, nil
}

func translateModel(m *schema.Model) (*config.ModelDefinition, error) {
	def := &config.ModelDefinition{Name: m.Name}

	for _, mode := range m.Modes {
		def.Modes = append(def.Modes, &config.ModeDefinition{
			Name:    mode.Name,
			Engines: append([]string(nil), mode.Engines...),
		})
	}

	for _, arg := range m.Arguments {
		def.Arguments = append(def.Arguments, &config.ArgumentDefinition{
			Engine:      arg.Engine,
			Exposed:     arg.Exposed,
			Original:    arg.Original,
			Constructor: arg.Constructor,
			Submodel:    arg.Submodel,
		})
	}

	for _, fit := range m.Fits {
		names, vals, err := translateArgsBlock(fit.Defaults)
		if err != nil {
			return nil, fmt.Errorf("fit %q %q defaults: %w", fit.Engine, fit.Mode, err)
		}
		def.Fits = append(def.Fits, &config.FitDefinition{
			Engine:       fit.Engine,
			Mode:         fit.Mode,
			Interface:    fit.Interface,
			Protected:    append([]string(nil), fit.Protected...),
			Func:         fit.Func,
			Pkg:          fit.Pkg,
			DefaultNames: names,
			Defaults:     vals,
		})
	}

	for _, pred := range m.Predicts {
		names, vals, err := translateArgsBlock(pred.Args)
		if err != nil {
			return nil, fmt.Errorf("predict %q %q %q args: %w", pred.Engine, pred.Mode, pred.Type, err)
		}
		def.Predicts = append(def.Predicts, &config.PredictDefinition{
			Engine:   pred.Engine,
			Mode:     pred.Mode,
			Type:     pred.Type,
			Func:     pred.Func,
			Pkg:      pred.Pkg,
			Pre:      pred.Pre,
			Post:     pred.Post,
			ArgNames: names,
			Args:     vals,
		})
	}

	for _, dep := range m.Dependencies {
		def.Dependencies = append(def.Dependencies, &config.DependencyDefinition{
			Engine:   dep.Engine,
			Packages: append([]string(nil), dep.Packages...),
		})
	}
	return def, nil
}

// translateArgsBlock wraps every attribute expression of a defaults/args
// block as a deferred value, preserving manifest order.
func translateArgsBlock(block *schema.ArgsBlock) ([]string, map[string]deferred.Value, error) {
	if block == nil {
		return nil, nil, nil
	}
	attrs, err := orderedAttributes(block.Body)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(attrs))
	vals := make(map[string]deferred.Value, len(attrs))
	for _, attr := range attrs {
		names = append(names, attr.Name)
		vals[attr.Name] = deferred.FromExpr(attr.Expr)
	}
	return names, vals, nil
}
