package merge

import (
	"testing"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/diag"
	"github.com/dolthub/nickelcfg/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevertClosurizeConstantIsIdentity(t *testing.T) {
	store := cache.NewMemStore()
	var envFinal term.Environment

	v, err := revertClosurize(store, term.Environment{}, &envFinal, term.NewNum(term.NoPosition, 9))
	require.NoError(t, err)
	assert.Equal(t, term.NewNum(term.NoPosition, 9), v)
}

func TestRevertClosurizeVarBindsFreshIdentInEnvFinal(t *testing.T) {
	store := cache.NewMemStore()
	var env term.Environment
	idx := store.Add(cache.Closure{Body: term.NewNum(term.NoPosition, 1)}, cache.Normal, cache.NormalBinding)
	env = env.Extend("a", idx)

	var envFinal term.Environment
	v, err := revertClosurize(store, env, &envFinal, term.NewVar(term.NoPosition, "a"))
	require.NoError(t, err)

	rv, ok := v.(term.Var)
	require.True(t, ok)
	assert.NotEqual(t, term.Ident("a"), rv.Ident, "the rebound identifier must be fresh")

	gotIdx, ok := envFinal.Lookup(rv.Ident)
	require.True(t, ok)
	c, ok := store.RawClosure(gotIdx)
	require.True(t, ok)
	assert.Equal(t, term.NewNum(term.NoPosition, 1), c.Body)
}

func TestRevertClosurizeUnboundVarErrors(t *testing.T) {
	store := cache.NewMemStore()
	var envFinal term.Environment
	_, err := revertClosurize(store, term.Environment{}, &envFinal, term.NewVar(term.NoPosition, "missing"))
	require.Error(t, err)
	var unbound *diag.UnboundIdentifier
	assert.ErrorAs(t, err, &unbound)
}

func TestFreshIdentIsUniqueAcrossCalls(t *testing.T) {
	a := freshIdent("x")
	b := freshIdent("x")
	assert.NotEqual(t, a, b)
}

func TestSaturateWrapsVarInThunkRef(t *testing.T) {
	store := cache.NewMemStore()
	var env term.Environment
	idx := store.Add(cache.Closure{Body: term.NewNum(term.NoPosition, 1)}, cache.Normal, cache.NormalBinding)
	env = env.Extend("a", idx)

	v, err := saturate(store, env, []term.Ident{"b", "c"}, term.NewVar(term.NoPosition, "a"))
	require.NoError(t, err)

	ref, ok := v.(term.ThunkRef)
	require.True(t, ok)
	assert.Equal(t, idx, ref.Idx)
	assert.Equal(t, []term.Ident{"b", "c"}, ref.Keys)
}

func TestSaturateConstantIsIdentity(t *testing.T) {
	store := cache.NewMemStore()
	v, err := saturate(store, term.Environment{}, nil, term.NewStr(term.NoPosition, "k"))
	require.NoError(t, err)
	assert.Equal(t, term.NewStr(term.NoPosition, "k"), v)
}
