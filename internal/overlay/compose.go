package overlay

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/flakego/internal/lazy"
)

// Func is a single overlay layer. It receives the composed end collection
// (final) and the collection as of the previous layer (prev) and returns
// the overrides it contributes. The returned key set must be computable
// without forcing any value; the thunks may capture both views and force
// keys on demand.
type Func func(final, prev *View) (Overrides, error)

// Overrides maps package names to their deferred override values.
type Overrides map[string]*lazy.Thunk[cty.Value]

// Identity is the empty overlay: it contributes no overrides, so applying
// it to any base collection yields the base collection unchanged.
func Identity(final, prev *View) (Overrides, error) {
	return Overrides{}, nil
}

// Static builds an overlay from literal values. Useful for overlays that
// do not consult final or prev.
func Static(vals map[string]cty.Value) Func {
	return func(final, prev *View) (Overrides, error) {
		o := make(Overrides, len(vals))
		for name, val := range vals {
			o[name] = lazy.FromValue(name, val)
		}
		return o, nil
	}
}

// Compose folds an ordered sequence of overlays into a single overlay.
// Layer i sees prev extended by the overrides of layers 0..i-1, and every
// layer shares the caller's final view. On key collisions the rightmost
// layer wins. Composition is associative: composing a composed overlay
// with further overlays behaves exactly like composing the flat sequence.
// An empty (or nil) sequence composes to Identity.
func Compose(overlays []Func) Func {
	if len(overlays) == 0 {
		return Identity
	}
	return func(final, prev *View) (Overrides, error) {
		merged := make(Overrides)
		cur := prev
		for _, ov := range overlays {
			contributed, err := ov(final, cur)
			if err != nil {
				return nil, err
			}
			for name, th := range contributed {
				merged[name] = th
			}
			cur = Extend(cur, contributed)
		}
		return merged, nil
	}
}
