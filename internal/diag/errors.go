// Package diag defines the tagged error variant merge returns (spec.md
// §7). Errors are value data, never panics: every merge entry point
// returns (Closure, error), and these are the error types its own rules
// produce; an error reported by the cache Store (such as
// cache.ErrUnknownHandle) is passed through unchanged.
package diag

import (
	"fmt"
	"strings"

	"github.com/dolthub/nickelcfg/internal/term"
)

// CallStack is the evaluator's call-stack snapshot, consumed (moved) into
// an IllegalPolymorphicTailAccess error and cloned for every other error
// kind (spec.md §9).
type CallStack []string

func (cs CallStack) Clone() CallStack {
	out := make(CallStack, len(cs))
	copy(out, cs)
	return out
}

// IncompatibleArgs is raised by a scalar-scalar mismatch or any
// unsupported shape pairing.
type IncompatibleArgs struct {
	Left, Right     term.Term
	LeftPos         term.Position
	RightPos        term.Position
	MergeLabelSpan  term.Position
}

func (e *IncompatibleArgs) Error() string {
	return fmt.Sprintf("cannot merge incompatible values at %s and %s (merge at %s)",
		e.LeftPos, e.RightPos, e.MergeLabelSpan)
}

// BlameError is raised in Contract mode: the value is not a record against
// a record contract, or it carries fields the contract (not open) does not
// permit.
type BlameError struct {
	Label     *term.Label
	Witness   term.Term
	CallStack CallStack
	ExtraFields []term.Ident // set when the cause is extra fields
}

func (e *BlameError) Error() string {
	if len(e.ExtraFields) > 0 {
		names := make([]string, len(e.ExtraFields))
		for i, id := range e.ExtraFields {
			names[i] = fmt.Sprintf("%q", id)
		}
		return fmt.Sprintf("contract broken by extra field(s): %s (hint: add `..` to the contract to accept extra fields)",
			strings.Join(names, ", "))
	}
	msg := e.Label.Message
	if msg == "" {
		msg = "contract broken"
	}
	return msg
}

// IllegalPolymorphicTailAccess is raised when either merge operand has a
// sealed tail (spec.md invariant 1).
type IllegalPolymorphicTailAccess struct {
	Op        string // always "Merge" in this subsystem
	Label     *term.Label
	Witness   term.Term
	CallStack CallStack
}

func (e *IllegalPolymorphicTailAccess) Error() string {
	return fmt.Sprintf("cannot access the polymorphic tail of a sealed record during %s", e.Op)
}

// UnboundIdentifier is raised when saturation or revert-closurize finds a
// variable not present in the local environment.
type UnboundIdentifier struct {
	Ident term.Ident
	Pos   term.Position
}

func (e *UnboundIdentifier) Error() string {
	return fmt.Sprintf("unbound identifier %q at %s", e.Ident, e.Pos)
}
