package diag

import (
	"testing"

	"github.com/dolthub/nickelcfg/internal/term"
	"github.com/stretchr/testify/assert"
)

func TestCallStackCloneIsIndependent(t *testing.T) {
	cs := CallStack{"a", "b"}
	clone := cs.Clone()
	clone[0] = "z"
	assert.Equal(t, CallStack{"a", "b"}, cs)
	assert.Equal(t, CallStack{"z", "b"}, clone)
}

func TestIncompatibleArgsError(t *testing.T) {
	e := &IncompatibleArgs{
		LeftPos:        term.Position{File: "a.ncl", Line: 1},
		RightPos:       term.Position{File: "b.ncl", Line: 2},
		MergeLabelSpan: term.Position{File: "m.ncl", Line: 3},
	}
	msg := e.Error()
	assert.Contains(t, msg, "a.ncl")
	assert.Contains(t, msg, "b.ncl")
	assert.Contains(t, msg, "m.ncl")
}

func TestBlameErrorExtraFieldsTakesPrecedenceOverMessage(t *testing.T) {
	e := &BlameError{
		Label:       &term.Label{Message: "should not appear"},
		ExtraFields: []term.Ident{"x", "y"},
	}
	msg := e.Error()
	assert.Contains(t, msg, `"x"`)
	assert.Contains(t, msg, `"y"`)
	assert.Contains(t, msg, "add `..`")
}

func TestBlameErrorFallsBackToDefaultMessage(t *testing.T) {
	e := &BlameError{Label: &term.Label{}}
	assert.Equal(t, "contract broken", e.Error())
}

func TestBlameErrorUsesLabelMessageWhenSet(t *testing.T) {
	e := &BlameError{Label: &term.Label{Message: "field must be positive"}}
	assert.Equal(t, "field must be positive", e.Error())
}

func TestIllegalPolymorphicTailAccessError(t *testing.T) {
	e := &IllegalPolymorphicTailAccess{Op: "Merge", Label: &term.Label{}}
	assert.Contains(t, e.Error(), "sealed")
	assert.Contains(t, e.Error(), "Merge")
}

func TestUnboundIdentifierError(t *testing.T) {
	e := &UnboundIdentifier{Ident: "x", Pos: term.Position{File: "f.ncl", Line: 4}}
	msg := e.Error()
	assert.Contains(t, msg, `"x"`)
	assert.Contains(t, msg, "f.ncl")
}
