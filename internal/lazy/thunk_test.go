package lazy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThunk_ForcesAtMostOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	th := New("answer", func() (int, error) {
		calls++
		return 42, nil
	})

	require.Equal(t, Unforced, th.State())

	v, err := th.Force()
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, Done, th.State())

	v, err = th.Force()
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 1, calls, "computation must run at most once")
}

func TestThunk_MemoizesFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	boom := errors.New("boom")
	th := New("broken", func() (int, error) {
		calls++
		return 0, boom
	})

	_, err := th.Force()
	require.ErrorIs(t, err, boom)
	require.Equal(t, Failed, th.State())

	_, err = th.Force()
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls, "failed computation must not re-run")
}

func TestThunk_FromValue(t *testing.T) {
	t.Parallel()

	th := FromValue("ready", "hello")
	require.Equal(t, Done, th.State())

	v, err := th.Force()
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestThunk_ReentrantForceIsACycle(t *testing.T) {
	t.Parallel()

	var th *Thunk[int]
	th = New("self", func() (int, error) {
		_, err := th.Force()
		return 0, err
	})

	_, err := th.Force()

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Equal(t, "self", cycleErr.Name)
	require.Equal(t, Failed, th.State(), "outer force memoizes the failure")
}

func TestThunk_ReentrantForceThroughChain(t *testing.T) {
	t.Parallel()

	// a -> b -> a: the cycle must be reported against the thunk whose
	// force re-entered, which is the root of the chain.
	var a, b *Thunk[int]
	a = New("a", func() (int, error) {
		return b.Force()
	})
	b = New("b", func() (int, error) {
		return a.Force()
	})

	_, err := a.Force()

	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Equal(t, "a", cycleErr.Name)
}
