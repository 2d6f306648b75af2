package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/modelspec/internal/app"
	"github.com/vk/modelspec/internal/cli"
	"github.com/vk/modelspec/internal/hclconf"
	"github.com/vk/modelspec/internal/registry"
)

// main is the entrypoint for the modelspec introspection tool.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) error {
	cfg, cmd, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	application, err := app.New(os.Stderr, cfg, hclconf.NewLoader())
	if err != nil {
		return err
	}

	if cmd.List {
		if err := application.ListModels(outW); err != nil {
			return err
		}
	}
	if cmd.Describe != "" {
		filter := registry.LookupFilter{Mode: cmd.Mode, Engine: cmd.Engine}
		if err := application.Describe(outW, cmd.Describe, filter, cfg.Output); err != nil {
			return err
		}
	}
	return nil
}
