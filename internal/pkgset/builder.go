package pkgset

import (
	"context"
	"fmt"

	"github.com/vk/flakego/internal/ctxlog"
	"github.com/vk/flakego/internal/overlay"
)

// Factory produces a base package collection for a system id and config
// record. Implementations may read from resolved input trees but must not
// retain references into the returned collection.
type Factory interface {
	Base(ctx context.Context, system SystemID, config Config) (Collection, error)
}

// Build is the default package-set strategy: it obtains the base
// collection from the factory and merges the composed overlay's overrides
// on top, overlay winning on collisions. fn must be non-nil; pass
// overlay.Identity when no overlays apply. Build performs no I/O of its
// own beyond what the factory does.
func Build(ctx context.Context, factory Factory, system SystemID, config Config, fn overlay.Func) (Collection, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building package collection.", "system", system)

	base, err := factory.Base(ctx, system, config)
	if err != nil {
		return Collection{}, fmt.Errorf("failed to build base collection for %s: %w", system, err)
	}
	logger.Debug("Base collection built.", "system", system, "packages", base.Len())

	merged, err := overlay.Apply(base.pkgs, fn)
	if err != nil {
		return Collection{}, err
	}
	logger.Debug("Overlay application finished.", "system", system, "packages", len(merged))

	return Collection{system: system, pkgs: merged}, nil
}
