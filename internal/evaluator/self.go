package evaluator

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// selfView is the partial flake handed to manifest functions while
// evaluation is in flight. Fields settle as phases complete; reading a
// declared field before it settles is a self-reference cycle.
type selfView struct {
	settled map[string]cty.Value
	pending map[string]bool
}

func newSelfView() *selfView {
	return &selfView{
		settled: make(map[string]cty.Value),
		pending: make(map[string]bool),
	}
}

// declare marks fields that will settle in a later phase.
func (v *selfView) declare(names ...string) {
	for _, name := range names {
		v.pending[name] = true
	}
}

// set settles a field, making it readable.
func (v *selfView) set(name string, val cty.Value) {
	delete(v.pending, name)
	v.settled[name] = val
}

// Field implements manifest.SelfReader.
func (v *selfView) Field(name string) (cty.Value, error) {
	if val, ok := v.settled[name]; ok {
		return val, nil
	}
	if v.pending[name] {
		return cty.NilVal, &SelfReferenceCycleError{Field: name}
	}
	return cty.NilVal, fmt.Errorf("flake has no attribute %q", name)
}
