package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/flakego/internal/app"
	"github.com/vk/flakego/internal/pkgset"
	"github.com/vk/flakego/internal/resolver"
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

// Parse processes command-line arguments. It returns a populated app
// config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("flakego", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
FlakeGo - A fixed-point evaluator for HCL flake manifests.

Usage:
  flakego [options] TARGET

Arguments:
  TARGET
    Path to a flake.hcl file or a directory containing one, optionally
    followed by '#' and a dotted attribute path selecting a value from
    the evaluated flake (e.g. ./demo#pkgs.hello.version).

Options:
`)
		flagSet.PrintDefaults()
	}

	targetFlag := flagSet.String("target", "", "Path to the manifest file or directory.")
	tFlag := flagSet.String("t", "", "Path to the manifest file or directory (shorthand).")
	attrFlag := flagSet.String("attr", "", "Attribute path to select, overriding the '#' suffix of TARGET.")
	systemFlag := flagSet.String("system", pkgset.CurrentSystem().String(), "System identifier to evaluate for, as '<arch>-<os>'.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	inputTTLFlag := flagSet.Duration("input-ttl", resolver.DefaultCacheTTL, "How long resolved inputs are served from cache.")
	fetchTimeoutFlag := flagSet.Duration("fetch-timeout", resolver.DefaultFetchTimeout, "Timeout for downloading a remote input.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	target := ""
	if *targetFlag != "" {
		target = *targetFlag
	} else if *tFlag != "" {
		target = *tFlag
	} else if flagSet.NArg() > 0 {
		target = flagSet.Arg(0)
	}
	slog.Debug("Evaluation target determined.", "target", target)

	if target == "" {
		slog.Debug("No target provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	path, attr, _ := strings.Cut(target, "#")
	if path == "" {
		return nil, false, &ExitError{Code: 2, Message: "target names no manifest path"}
	}
	if *attrFlag != "" {
		attr = *attrFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	system, err := pkgset.ParseSystem(*systemFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Target:       path,
		Attr:         attr,
		System:       system,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		InputTTL:     *inputTTLFlag,
		FetchTimeout: *fetchTimeoutFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
