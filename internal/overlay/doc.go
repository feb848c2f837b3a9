// Package overlay implements the overlay-composition mechanism used to
// transform package collections. An overlay is a pure function from a pair
// of collection views, `final` (the fully-composed end result) and `prev`
// (the collection as it stood before this overlay), to a set of named
// overrides. Overlays compose left to right: each layer's `prev` includes
// every earlier layer's overrides, while every layer's `final` resolves
// through the same composed end collection, so a layer may depend on keys
// introduced by any other layer.
//
// Override key sets are strict, override values are deferred thunks. This
// split is what makes the `final` fixed point well-defined: the composed
// key set is known before any value is demanded, and demanding a value
// that transitively demands itself is reported as a *CyclicError instead
// of recursing forever.
package overlay
