package merge

import (
	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/term"
)

// stdlibContractEqualDisplay is the display-only name attached to the
// synthesized label as its evaluated argument; it exists purely so error
// messages print informatively and is never itself evaluated (spec.md
// §4.6 step 2).
const stdlibContractEqualDisplay = "contract.Equal"

// lowerArrayMerge implements spec.md §4.6: array merge is not defined
// structurally, so `a1 & a2` lowers to an assertion that a1 equals a2.
// Non-goals (spec.md §1) forbid anything richer; a future user-defined
// array-merge strategy would replace only this function (spec.md §9 open
// question 3: "keep the lowering pluggable").
func lowerArrayMerge(store cache.Store, a1 term.Array, env1 term.Environment, a2 term.Array, env2 term.Environment, opPos term.Position, mode term.Mode) (cache.Closure, error) {
	var envFinal term.Environment

	// 1. Closurize both arrays into a fresh shared environment so that
	// whichever of a1/a2 carries free variables still resolves them
	// against its own original scope once forced.
	left, err := closurizeInto(store, env1, &envFinal, a1)
	if err != nil {
		return cache.Closure{}, err
	}
	right, err := closurizeInto(store, env2, &envFinal, a2)
	if err != nil {
		return cache.Closure{}, err
	}

	// 2. Build a display-only term naming the equality contract; never
	// evaluated, used only for error messages.
	display := term.NewStr(term.NoPosition, stdlibContractEqualDisplay)

	// 3. Synthesize the diagnostic label.
	lbl := term.NewLabel(opPos).
		WithDiagnosticMessage("cannot merge unequal arrays").
		WithDiagnosticNotes([]string{"arrays only merge when structurally equal"}).
		WithEvaluatedArg(display)

	pos := opPos

	// 4. Emit Assume($stdlib_contract_equal a1, label) a2, inheriting the
	// merge-op position (spec.md §4.6 "the result inherits the merge-op
	// position").
	assume := term.NewArrayAssume(pos, left, right, lbl)

	return cache.Closure{Body: assume, Env: envFinal}, nil
}

// closurizeInto binds t to a fresh non-revertible thunk in src's
// environment and rebinds it under a fresh identifier in envFinal,
// returning a Var reference (spec Glossary: "closurize").
func closurizeInto(store cache.Store, src term.Environment, envFinal *term.Environment, t term.Term) (term.Term, error) {
	idx := store.Add(cache.Closure{Body: t, Env: src}, cache.Normal, cache.NormalBinding)
	fresh := freshIdent("$arr")
	*envFinal = envFinal.Extend(fresh, idx)
	return term.NewVar(t.Pos(), fresh), nil
}
