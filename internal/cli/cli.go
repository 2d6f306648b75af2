// Package cli parses command-line arguments for the modelspec tool.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/modelspec/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Command is what the caller asked the tool to do.
type Command struct {
	// List prints every registered model name.
	List bool
	// Describe names the model to describe; empty means no describe.
	Describe string
	// Mode and Engine optionally filter the describe output.
	Mode   string
	Engine string
}

// Parse processes command-line arguments. It returns a populated app config
// and command, a boolean indicating if the program should exit cleanly, or
// an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, *Command, bool, error) {
	flagSet := flag.NewFlagSet("modelspec", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
modelspec - declarative model specifications and engine registries.

Usage:
  modelspec [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	listFlag := flagSet.Bool("list", false, "List every registered model.")
	describeFlag := flagSet.String("describe", "", "Describe a registered model.")
	modeFlag := flagSet.String("mode", "", "Filter -describe output to one mode.")
	engineFlag := flagSet.String("engine", "", "Filter -describe output to one engine.")
	manifestsFlag := flagSet.String("manifests", "", "Extra manifest file or directory to load.")
	outputFlag := flagSet.String("output", "yaml", "Describe output format. Options: 'yaml' or 'json'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, nil, true, nil
		}
		return nil, nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if !*listFlag && *describeFlag == "" {
		flagSet.Usage()
		return nil, nil, true, nil
	}

	outFormat := strings.ToLower(*outputFlag)
	if outFormat != "yaml" && outFormat != "json" {
		return nil, nil, false, &ExitError{Code: 2, Message: "invalid output: must be 'yaml' or 'json'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg := &app.Config{
		LogFormat: logFormat,
		LogLevel:  logLevel,
		Output:    outFormat,
	}
	if *manifestsFlag != "" {
		cfg.ManifestPaths = []string{*manifestsFlag}
	}

	cmd := &Command{
		List:     *listFlag,
		Describe: *describeFlag,
		Mode:     *modeFlag,
		Engine:   *engineFlag,
	}
	return cfg, cmd, false, nil
}
