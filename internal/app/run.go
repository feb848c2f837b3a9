package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/flakego/internal/ctxlog"
	"github.com/vk/flakego/internal/evaluator"
	"github.com/vk/flakego/internal/resolver"
)

// Run executes one full evaluation: load the manifest, resolve its inputs,
// evaluate the flake for the configured system and print the selected
// result as JSON.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	m, err := a.loader.Load(ctx, a.config.Target)
	if err != nil {
		return err
	}
	a.logger.Debug("Manifest loaded.", "path", m.Path, "inputs", len(m.Inputs))

	res := a.resolver
	if res == nil {
		// Relative path: inputs resolve against the manifest's directory.
		registry := resolver.NewRegistry()
		registry.Register(resolver.SchemePath, resolver.NewPathFetcher(filepath.Dir(m.Path)))
		https := resolver.NewHTTPSFetcher(a.config.FetchTimeout)
		registry.Register(resolver.SchemeHTTPS, https)
		registry.Register(resolver.SchemeHTTP, https)
		defer registry.Close()
		res = resolver.Cached(registry, a.config.InputTTL)
	}

	a.logger.Info("🚀 Resolving inputs...", "count", len(m.Inputs))
	inputs, err := resolver.ResolveAll(ctx, res, m.Inputs)
	if err != nil {
		return err
	}

	a.logger.Debug("Evaluating flake.", "system", a.config.System)
	flake, err := evaluator.Evaluate(ctx, m, a.config.System, inputs)
	if err != nil {
		return fmt.Errorf("failed to evaluate %s: %w", m.Path, err)
	}
	a.logger.Info("🏁 Evaluation finished.", "system", a.config.System, "outputs", len(flake.Outputs()))

	return a.printResult(flake)
}

// printResult renders the selected attribute, or the whole outputs object
// when no selector was given, to the output writer as indented JSON.
func (a *App) printResult(flake *evaluator.Flake) error {
	val := flake.OutputsObject()
	if a.config.Attr != "" {
		selected, err := flake.Attr(a.config.Attr)
		if err != nil {
			return err
		}
		val = selected
	}

	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return fmt.Errorf("failed to render result as JSON: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to render result as JSON: %w", err)
	}
	_, err = fmt.Fprintln(a.outW, pretty.String())
	return err
}
