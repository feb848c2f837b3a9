// Package lazy provides memoized deferred computations (thunks).
//
// A Thunk wraps a computation that runs at most once; subsequent forces
// return the cached value or the cached error. While a thunk is being
// forced it is in the Forcing state, and a re-entrant force of the same
// thunk is reported as a *CycleError instead of recursing forever. This
// state machine is what makes demand-driven evaluation of self-referential
// structures safe: the force chain itself acts as the visited set.
//
// Thunks are owned by a single evaluation and are not safe for concurrent
// use. Independent evaluations hold independent thunks.
package lazy

import "fmt"

// State is the lifecycle state of a Thunk.
type State int32

const (
	// Unforced indicates the computation has not started.
	Unforced State = iota
	// Forcing indicates the computation is on the current force chain.
	Forcing
	// Done indicates the computation finished and its value is cached.
	Done
	// Failed indicates the computation finished with an error, also cached.
	Failed
)

// CycleError reports a re-entrant force: the named thunk was demanded
// while it was already being computed.
type CycleError struct {
	// Name identifies the thunk whose force re-entered itself.
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected while forcing %q", e.Name)
}

// Thunk is a named, memoized deferred computation.
type Thunk[T any] struct {
	name  string
	fn    func() (T, error)
	state State
	val   T
	err   error
}

// New returns an unforced thunk around fn. The name appears in cycle
// reports and should identify what is being computed (e.g. "final.go" or
// "self.outputs").
func New[T any](name string, fn func() (T, error)) *Thunk[T] {
	return &Thunk[T]{name: name, fn: fn}
}

// FromValue returns an already-forced thunk holding v.
func FromValue[T any](name string, v T) *Thunk[T] {
	return &Thunk[T]{name: name, state: Done, val: v}
}

// Name returns the thunk's identifying name.
func (t *Thunk[T]) Name() string {
	return t.name
}

// State returns the thunk's current lifecycle state.
func (t *Thunk[T]) State() State {
	return t.state
}

// Force runs the computation if it has not run yet and returns its result.
// Both values and errors are cached, so a thunk observed by several
// consumers yields referentially stable results. Forcing a thunk that is
// already Forcing returns a *CycleError.
func (t *Thunk[T]) Force() (T, error) {
	switch t.state {
	case Done:
		return t.val, nil
	case Failed:
		var zero T
		return zero, t.err
	case Forcing:
		// Re-entrant force. The in-progress outer force owns the final
		// state; report the cycle without touching the memo.
		var zero T
		return zero, &CycleError{Name: t.name}
	}

	t.state = Forcing
	val, err := t.fn()
	t.fn = nil
	if err != nil {
		t.state = Failed
		t.err = err
		var zero T
		return zero, err
	}
	t.state = Done
	t.val = val
	return val, nil
}
