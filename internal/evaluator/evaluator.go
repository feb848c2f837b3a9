package evaluator

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"

	"github.com/vk/flakego/internal/ctxlog"
	"github.com/vk/flakego/internal/manifest"
	"github.com/vk/flakego/internal/overlay"
	"github.com/vk/flakego/internal/pkgset"
	"github.com/vk/flakego/internal/resolver"
)

// Evaluate runs the manifest's evaluation phases for one system and
// assembles the resulting flake.
//
// Phase order: configuration, overlay sequence, package collection,
// outputs, self-tie. Each phase settles its fields on the partial self
// view before the next phase runs, so manifest functions can read
// everything settled so far and nothing later.
func Evaluate(ctx context.Context, m *manifest.Manifest, system pkgset.SystemID, inputs resolver.ResolvedInputs) (*Flake, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Evaluating flake.", "path", m.Path, "system", system)

	if m.Outputs == nil {
		return nil, &MissingOutputsError{Path: m.Path}
	}

	view := newSelfView()
	view.set("description", cty.StringVal(m.Description))
	view.set("system", cty.StringVal(string(system)))
	view.set("inputs", inputsValue(m.Inputs, inputs))
	view.set("modules", objectOrEmpty(m.Modules))
	view.set("templates", templatesValue(m.Templates))
	view.set("configurations", objectOrEmpty(m.Configurations))
	view.set("overlays", stringList(sortedNames(m.Overlays)))
	view.declare("pkgs_config", "pkgs_overlays", "pkgs", "outputs")

	ectx := &manifest.EvalContext{Self: view, System: system, Inputs: inputs}

	config, err := evalConfig(m, ectx)
	if err != nil {
		return nil, err
	}
	view.set("pkgs_config", config.AsObject())

	overlayNames, composed, err := evalOverlays(m, ectx)
	if err != nil {
		return nil, err
	}
	view.set("pkgs_overlays", stringList(overlayNames))

	collection, err := evalCollection(ctx, m, ectx, system, inputs, config, composed)
	if err != nil {
		return nil, err
	}
	view.set("pkgs", collection.AsObject())

	outputsCtx := *ectx
	outputsCtx.Pkgs = &collection
	outputs, err := m.Outputs(&outputsCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate outputs: %w", err)
	}
	view.set("outputs", objectOrEmpty(outputs))

	flake := &Flake{
		description:    m.Description,
		system:         system,
		inputs:         m.Inputs,
		overlays:       m.Overlays,
		overlayNames:   overlayNames,
		modules:        m.Modules,
		templates:      m.Templates,
		configurations: m.Configurations,
		config:         config,
		pkgs:           collection,
		outputs:        outputs,
		sections:       view.settled,
	}
	flake.self = flake

	logger.Debug("Flake evaluated.", "system", system, "packages", collection.Len(), "outputs", len(outputs))
	return flake, nil
}

// evalConfig runs the optional pkgs_config function.
func evalConfig(m *manifest.Manifest, ectx *manifest.EvalContext) (pkgset.Config, error) {
	if m.PkgsConfig == nil {
		return pkgset.Config{}, nil
	}
	config, err := m.PkgsConfig(ectx)
	if err != nil {
		return nil, &ConfigEvaluationError{Section: "pkgs_config", Err: err}
	}
	return config, nil
}

// evalOverlays runs the optional overlay-sequence function and composes
// the result into a single overlay.
func evalOverlays(m *manifest.Manifest, ectx *manifest.EvalContext) ([]string, overlay.Func, error) {
	if m.PkgsOverlays == nil {
		return nil, overlay.Identity, nil
	}
	named, err := m.PkgsOverlays(ectx)
	if err != nil {
		return nil, nil, &ConfigEvaluationError{Section: "pkgs_overlay", Err: err}
	}

	names := make([]string, 0, len(named))
	fns := make([]overlay.Func, 0, len(named))
	for _, entry := range named {
		names = append(names, entry.Name)
		fns = append(fns, entry.Func)
	}
	return names, overlay.Compose(fns), nil
}

// evalCollection realizes the package collection, either directly through
// pkgs_for_system or by building the base input's definitions through the
// composed overlay.
func evalCollection(ctx context.Context, m *manifest.Manifest, ectx *manifest.EvalContext, system pkgset.SystemID, inputs resolver.ResolvedInputs, config pkgset.Config, composed overlay.Func) (pkgset.Collection, error) {
	if m.PkgsForSystem != nil {
		collection, err := m.PkgsForSystem(ectx)
		if err != nil {
			return pkgset.Collection{}, fmt.Errorf("failed to evaluate pkgs_for_system: %w", err)
		}
		// The collection is rescoped to the requested system id.
		return pkgset.NewCollection(system, collection.Values()), nil
	}

	baseName := m.BaseInputName()
	handle, ok := inputs.Get(baseName)
	if !ok {
		return pkgset.Collection{}, &UnresolvedInputError{Input: baseName}
	}

	factory := pkgset.NewDefsFactory(handle.Source)
	return pkgset.Build(ctx, factory, system, config, composed)
}

// EvaluateSystems evaluates the manifest for every system concurrently.
// Evaluations are independent; the first failure cancels the rest.
func EvaluateSystems(ctx context.Context, m *manifest.Manifest, systems []pkgset.SystemID, inputs resolver.ResolvedInputs) (map[pkgset.SystemID]*Flake, error) {
	flakes := make([]*Flake, len(systems))
	g, ctx := errgroup.WithContext(ctx)
	for i, system := range systems {
		i, system := i, system
		g.Go(func() error {
			flake, err := Evaluate(ctx, m, system, inputs)
			if err != nil {
				return fmt.Errorf("failed to evaluate system %s: %w", system, err)
			}
			flakes[i] = flake
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bySystem := make(map[pkgset.SystemID]*Flake, len(systems))
	for i, system := range systems {
		bySystem[system] = flakes[i]
	}
	return bySystem, nil
}
