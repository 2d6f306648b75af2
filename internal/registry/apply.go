package registry

import (
	"context"
	"fmt"

	"github.com/vk/modelspec/internal/config"
	"github.com/vk/modelspec/internal/ctxlog"
)

// ApplyDefinitions registers everything a loaded definition model declares,
// in prerequisite order: model, then modes and engines, then arguments,
// fit modules, predict modules, and dependencies. It is the manifest-driven
// equivalent of calling the register operations by hand.
func (r *Registry) ApplyDefinitions(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	for _, name := range model.Order {
		def := model.Models[name]
		if err := r.applyModel(def); err != nil {
			return fmt.Errorf("applying definition for model %q: %w", name, err)
		}
		logger.Debug("Applied model definition.", "model", name)
	}
	return nil
}

func (r *Registry) applyModel(def *config.ModelDefinition) error {
	if err := r.RegisterModel(def.Name); err != nil {
		return err
	}

	for _, mode := range def.Modes {
		if err := r.RegisterMode(def.Name, mode.Name); err != nil {
			return err
		}
		for _, engine := range mode.Engines {
			if err := r.RegisterEngine(def.Name, mode.Name, engine); err != nil {
				return err
			}
		}
	}

	for _, arg := range def.Arguments {
		desc := ArgumentDescriptor{
			Exposed:     arg.Exposed,
			Original:    arg.Original,
			Constructor: arg.Constructor,
			Submodel:    arg.Submodel,
		}
		if err := r.RegisterArgument(def.Name, arg.Engine, desc); err != nil {
			return err
		}
	}

	for _, fit := range def.Fits {
		kind, ok := ParseInterfaceKind(fit.Interface)
		if !ok {
			return fmt.Errorf("fit module for engine %q: invalid interface %q", fit.Engine, fit.Interface)
		}
		defaults := NewArguments()
		for _, argName := range fit.DefaultNames {
			defaults.Set(argName, fit.Defaults[argName])
		}
		fm := &FitModule{
			Interface: kind,
			Protected: append([]string(nil), fit.Protected...),
			Func:      FuncRef{Pkg: fit.Pkg, Name: fit.Func},
			Defaults:  defaults,
		}
		if err := r.RegisterFit(def.Name, fit.Engine, fit.Mode, fm); err != nil {
			return err
		}
	}

	for _, pred := range def.Predicts {
		args := NewArguments()
		for _, argName := range pred.ArgNames {
			args.Set(argName, pred.Args[argName])
		}
		pm := &PredictModule{
			Pre:  pred.Pre,
			Post: pred.Post,
			Func: FuncRef{Pkg: pred.Pkg, Name: pred.Func},
			Args: args,
		}
		if err := r.RegisterPredict(def.Name, pred.Engine, pred.Mode, pred.Type, pm); err != nil {
			return err
		}
	}

	for _, dep := range def.Dependencies {
		for _, pkg := range dep.Packages {
			if err := r.RegisterDependency(def.Name, dep.Engine, pkg); err != nil {
				return err
			}
		}
	}
	return nil
}
