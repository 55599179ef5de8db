package cache

import (
	"testing"

	"github.com/dolthub/nickelcfg/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndRawClosure(t *testing.T) {
	s := NewMemStore()
	idx := s.Add(Closure{Body: term.NewNum(term.NoPosition, 42)}, Normal, NormalBinding)

	c, ok := s.RawClosure(idx)
	require.True(t, ok)
	assert.Equal(t, term.NewNum(term.NoPosition, 42), c.Body)
}

func TestRevertNonRevertibleReturnsSameHandle(t *testing.T) {
	s := NewMemStore()
	idx := s.Add(Closure{Body: term.NewNum(term.NoPosition, 1)}, Normal, NormalBinding)

	reverted, err := s.Revert(idx)
	require.NoError(t, err)
	assert.Equal(t, idx, reverted)
}

func TestRevertRevertibleYieldsFreshHandleWithOriginalBody(t *testing.T) {
	s := NewMemStore()
	deps := FieldDeps{"y": struct{}{}}
	body := term.NewOp2(term.NoPosition, term.AddOp, term.NewVar(term.NoPosition, "y"), term.NewNum(term.NoPosition, 1))
	idx := s.Add(Closure{Body: body}, Recursive, RevertibleBinding(deps))

	// Simulate the handle having been forced and memoized before revert.
	s.Memoize(idx, term.NewNum(term.NoPosition, 11))
	_, cached := s.Cached(idx)
	require.True(t, cached)

	reverted, err := s.Revert(idx)
	require.NoError(t, err)
	assert.NotEqual(t, idx, reverted, "revert must allocate a fresh handle")

	c, ok := s.RawClosure(reverted)
	require.True(t, ok)
	assert.Equal(t, body, c.Body, "revert restores the pre-evaluation term")

	_, cached = s.Cached(reverted)
	assert.False(t, cached, "the fresh handle must not inherit the old memoized value")
}

func TestRevertUnknownHandle(t *testing.T) {
	s := NewMemStore()
	_, err := s.Revert(999)
	assert.ErrorAs(t, err, &ErrUnknownHandle{})
}

func TestRevertibleBindingDowngradesEmptyDeps(t *testing.T) {
	bt := RevertibleBinding(nil)
	assert.False(t, bt.Revertible)
	assert.Equal(t, NormalBinding, bt)
}

func TestDepsOnlyForRevertibleHandles(t *testing.T) {
	s := NewMemStore()
	normal := s.Add(Closure{Body: term.NewNum(term.NoPosition, 1)}, Normal, NormalBinding)
	deps := FieldDeps{"x": struct{}{}}
	revertible := s.Add(Closure{Body: term.NewNum(term.NoPosition, 1)}, Recursive, RevertibleBinding(deps))

	_, ok := s.Deps(normal)
	assert.False(t, ok)

	got, ok := s.Deps(revertible)
	require.True(t, ok)
	assert.Equal(t, deps, got)
}

func TestSaturateReturnsThunkRef(t *testing.T) {
	s := NewMemStore()
	idx := s.Add(Closure{Body: term.NewNum(term.NoPosition, 1)}, Normal, NormalBinding)

	var env term.Environment
	keys := []term.Ident{"a", "b"}
	ref, err := s.Saturate(idx, env, keys)
	require.NoError(t, err)

	thunkRef, ok := ref.(term.ThunkRef)
	require.True(t, ok)
	assert.Equal(t, idx, thunkRef.Idx)
	assert.Equal(t, keys, thunkRef.Keys)
}

func TestPatchRewritesEnvironmentBeforeForce(t *testing.T) {
	s := NewMemStore()
	idx := s.Add(Closure{Body: term.NewVar(term.NoPosition, "y")}, Recursive, RevertibleBinding(FieldDeps{"y": {}}))

	var newEnv term.Environment
	newEnv = newEnv.Extend("y", 123)
	s.Patch(idx, newEnv)

	c, ok := s.RawClosure(idx)
	require.True(t, ok)
	resolved, ok := c.Env.Lookup("y")
	require.True(t, ok)
	assert.EqualValues(t, 123, resolved)
}

func TestPatchIsNoopOnceForced(t *testing.T) {
	s := NewMemStore()
	idx := s.Add(Closure{Body: term.NewNum(term.NoPosition, 1)}, Normal, NormalBinding)
	s.Memoize(idx, term.NewNum(term.NoPosition, 1))

	var env term.Environment
	env = env.Extend("z", 7)
	s.Patch(idx, env)

	c, _ := s.RawClosure(idx)
	_, ok := c.Env.Lookup("z")
	assert.False(t, ok, "Patch must not touch an already-forced element")
}

func TestFieldDepsUnion(t *testing.T) {
	a := FieldDeps{"x": {}}
	b := FieldDeps{"y": {}}
	u := a.Union(b)
	assert.Len(t, u, 2)
	_, okX := u["x"]
	_, okY := u["y"]
	assert.True(t, okX)
	assert.True(t, okY)
}
