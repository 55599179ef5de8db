package merge

import (
	"github.com/dolthub/nickelcfg/internal/diag"
	"github.com/dolthub/nickelcfg/internal/term"
)

// incompatible builds the IncompatibleArgs error for a scalar mismatch or
// any unsupported shape pairing (spec.md §7).
func incompatible(t1, t2 term.Term, opPos term.Position) error {
	return &diag.IncompatibleArgs{
		Left:           t1,
		Right:          t2,
		LeftPos:        t1.Pos(),
		RightPos:       t2.Pos(),
		MergeLabelSpan: opPos,
	}
}

// blameNotARecord builds the BlameError raised when a Contract-mode value
// is matched against a record contract but is not itself a record.
func blameNotARecord(lbl *term.Label, witness term.Term, stack *diag.CallStack) error {
	return &diag.BlameError{
		Label:     lbl.WithDiagnosticMessage("expected a record"),
		Witness:   witness,
		CallStack: stack.Clone(),
	}
}

// blameExtraFields builds the BlameError raised when a closed (non-open)
// record contract's left operand carries fields the contract forbids
// (spec.md §4.2 step 3).
func blameExtraFields(lbl *term.Label, extra []term.Ident, stack *diag.CallStack) error {
	return &diag.BlameError{
		Label:       lbl.WithDiagnosticMessage("contract broken by extra field(s)"),
		ExtraFields: extra,
		CallStack:   stack.Clone(),
	}
}

// sealedTailError builds the IllegalPolymorphicTailAccess(Merge) error,
// moving the call stack into the returned value (spec.md §9: "the
// call_stack field ... is moved out of the evaluator").
func sealedTailError(st *term.SealedTail, stack *diag.CallStack) error {
	moved := *stack
	*stack = nil
	return &diag.IllegalPolymorphicTailAccess{
		Op:        "Merge",
		Label:     st.Label,
		Witness:   st.Witness,
		CallStack: moved,
	}
}
