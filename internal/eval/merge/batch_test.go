package merge

import (
	"context"
	"testing"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAllRunsIndependentPairsWithIsolatedStores(t *testing.T) {
	pairs := make([]Pair, 0, 8)
	for i := 0; i < 8; i++ {
		pairs = append(pairs, Pair{
			T1:    term.NewNum(term.NoPosition, float64(i)),
			T2:    term.NewNum(term.NoPosition, float64(i)),
			Store: cache.NewMemStore(),
			OpPos: term.NoPosition,
			Mode:  standardMode(),
		})
	}

	results, err := MergeAll(context.Background(), pairs)
	require.NoError(t, err)
	require.Len(t, results, 8)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, term.NewNum(term.NoPosition, float64(i)), r.Closure.Body)
	}
}

func TestMergeAllCapturesPerPairErrorsIndependently(t *testing.T) {
	pairs := []Pair{
		{T1: term.NewNum(term.NoPosition, 1), T2: term.NewNum(term.NoPosition, 1), Store: cache.NewMemStore(), Mode: standardMode()},
		{T1: term.NewNum(term.NoPosition, 1), T2: term.NewNum(term.NoPosition, 2), Store: cache.NewMemStore(), Mode: standardMode()},
	}

	results, err := MergeAll(context.Background(), pairs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err, "a failing pair must not cancel its siblings")
}

func TestMergeAllEmptyInput(t *testing.T) {
	results, err := MergeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
