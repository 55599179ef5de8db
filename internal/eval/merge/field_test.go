package merge

import (
	"testing"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDocLeftWinsIfNonEmpty(t *testing.T) {
	f1 := &term.Field{Metadata: term.Metadata{Doc: "left doc"}}
	f2 := &term.Field{Metadata: term.Metadata{Doc: "right doc"}}
	assert.Equal(t, "left doc", mergeDoc(f1, f2))

	f1.Metadata.Doc = ""
	assert.Equal(t, "right doc", mergeDoc(f1, f2))
}

func TestMergeAnnotationLeftTypeIsPrincipalRightDemotedToContract(t *testing.T) {
	leftType := term.NewStr(term.NoPosition, "LeftType")
	rightType := term.NewStr(term.NoPosition, "RightType")
	f1 := &term.Field{Metadata: term.Metadata{Annotation: term.Annotation{Types: leftType}}}
	f2 := &term.Field{Metadata: term.Metadata{Annotation: term.Annotation{Types: rightType}}}

	ann := mergeAnnotation(f1, f2)
	assert.Equal(t, leftType, ann.Types)
	assert.Contains(t, ann.Contracts, rightType)
}

func TestMergeAnnotationContractsConcatenate(t *testing.T) {
	c1 := term.NewStr(term.NoPosition, "c1")
	c2 := term.NewStr(term.NoPosition, "c2")
	f1 := &term.Field{Metadata: term.Metadata{Annotation: term.Annotation{Contracts: []term.Term{c1}}}}
	f2 := &term.Field{Metadata: term.Metadata{Annotation: term.Annotation{Contracts: []term.Term{c2}}}}

	ann := mergeAnnotation(f1, f2)
	assert.Equal(t, []term.Term{c1, c2}, ann.Contracts)
}

func TestMergeFieldOptAndNotExported(t *testing.T) {
	store := cache.NewMemStore()
	var envFinal term.Environment

	f1 := &term.Field{Metadata: term.Metadata{Opt: true, NotExported: false}, Value: term.NewNum(term.NoPosition, 1)}
	f2 := &term.Field{Metadata: term.Metadata{Opt: false, NotExported: true}, Value: term.NewNum(term.NoPosition, 1)}

	nf, err := mergeField(store, f1, term.Environment{}, f2, term.Environment{}, &envFinal, nil, term.NoPosition, standardMode())
	require.NoError(t, err)
	assert.False(t, nf.Metadata.Opt, "opt requires both sides to agree")
	assert.True(t, nf.Metadata.NotExported, "not_exported is sticky if either side sets it")
}

func TestMergeValueOnlyLeftHasValueKeepsLeftPriority(t *testing.T) {
	store := cache.NewMemStore()
	var env1 term.Environment
	idx := store.Add(cache.Closure{Body: term.NewNum(term.NoPosition, 5)}, cache.Normal, cache.NormalBinding)
	env1 = env1.Extend("a", idx)

	f1 := &term.Field{Metadata: term.Metadata{Priority: term.Priority{Kind: term.PriorityNumeric, Numeric: 3}}, Value: term.NewVar(term.NoPosition, "a")}
	f2 := &term.Field{}

	var envFinal term.Environment
	v, prio, err := mergeValue(store, f1, env1, f2, term.Environment{}, &envFinal, nil, term.NoPosition, standardMode())
	require.NoError(t, err)
	assert.Equal(t, term.Priority{Kind: term.PriorityNumeric, Numeric: 3}, prio)
	_, ok := v.(term.Var)
	assert.True(t, ok)
}

func TestMergeValueNeitherHasValueReturnsDefaultPriority(t *testing.T) {
	store := cache.NewMemStore()
	var envFinal term.Environment
	v, prio, err := mergeValue(store, &term.Field{}, term.Environment{}, &term.Field{}, term.Environment{}, &envFinal, nil, term.NoPosition, standardMode())
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, term.Priority{Kind: term.PriorityDefault}, prio)
}
