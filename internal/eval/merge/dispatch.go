// Package merge implements the runtime merge operator: the recursive
// operation that combines two values into one, enforcing priority,
// contract and sealed-tail semantics. This package is the 40%-by-budget
// "merge dispatcher" of spec.md §2 plus its four collaborators (split,
// field merger, saturation adapter, array-equality lowering), each in its
// own file.
package merge

import (
	"context"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/diag"
	"github.com/dolthub/nickelcfg/internal/term"
)

// Merge is the dispatcher entry point (spec.md §4.1). It pattern-matches
// the shapes of t1 and t2 and either produces a value directly or defers
// to one of the specialized rules below. store and stack are borrowed
// mutably; stack is moved into the error value on a sealed-tail rejection.
func Merge(
	ctx context.Context,
	store cache.Store,
	stack *diag.CallStack,
	t1 term.Term, env1 term.Environment,
	t2 term.Term, env2 term.Environment,
	opPos term.Position,
	mode term.Mode,
) (cache.Closure, error) {
	switch l := t1.(type) {
	case term.Null:
		if _, ok := t2.(term.Null); ok {
			return value(l.WithPos(resultPos(opPos, l.Pos(), mode)), env1), nil
		}
		return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)

	case term.Bool:
		if r, ok := t2.(term.Bool); ok {
			if l.Value != r.Value {
				return cache.Closure{}, incompatible(t1, t2, opPos)
			}
			return value(l.WithPos(resultPos(opPos, l.Pos(), mode)), env1), nil
		}
		return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)

	case term.Num:
		if r, ok := t2.(term.Num); ok {
			if l.Value != r.Value {
				return cache.Closure{}, incompatible(t1, t2, opPos)
			}
			return value(l.WithPos(resultPos(opPos, l.Pos(), mode)), env1), nil
		}
		return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)

	case term.Str:
		if r, ok := t2.(term.Str); ok {
			if l.Value != r.Value {
				return cache.Closure{}, incompatible(t1, t2, opPos)
			}
			return value(l.WithPos(resultPos(opPos, l.Pos(), mode)), env1), nil
		}
		return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)

	case term.EnumTag:
		if r, ok := t2.(term.EnumTag); ok {
			if l.Tag != r.Tag {
				return cache.Closure{}, incompatible(t1, t2, opPos)
			}
			return value(l.WithPos(resultPos(opPos, l.Pos(), mode)), env1), nil
		}
		return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)

	case term.LabelTerm:
		if r, ok := t2.(term.LabelTerm); ok {
			if l.Value != r.Value {
				return cache.Closure{}, incompatible(t1, t2, opPos)
			}
			return value(l.WithPos(resultPos(opPos, l.Pos(), mode)), env1), nil
		}
		return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)

	case term.Array:
		if r, ok := t2.(term.Array); ok {
			return lowerArrayMerge(store, l, env1, r, env2, opPos, mode)
		}
		return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)

	case term.Record:
		if r, ok := t2.(term.Record); ok {
			return mergeRecord(ctx, store, stack, l, env1, r, env2, opPos, mode)
		}
		return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)
	}

	return cache.Closure{}, dispatchNonScalar(ctx, store, stack, t1, env1, t2, env2, opPos, mode)
}

// dispatchNonScalar handles every pairing not resolved by a same-shape
// scalar/array/record match above: the non-record-vs-record Contract-mode
// case, and the catch-all IncompatibleArgs.
func dispatchNonScalar(
	ctx context.Context,
	store cache.Store,
	stack *diag.CallStack,
	t1 term.Term, env1 term.Environment,
	t2 term.Term, env2 term.Environment,
	opPos term.Position,
	mode term.Mode,
) error {
	_, leftIsRecord := t1.(term.Record)
	_, rightIsRecord := t2.(term.Record)

	if mode.Kind == term.Contract && rightIsRecord && !leftIsRecord {
		return blameNotARecord(mode.ContractLbl, t1, stack)
	}
	return incompatible(t1, t2, opPos)
}

func value(t term.Term, env term.Environment) cache.Closure {
	return cache.Closure{Body: t, Env: env}
}

// resultPos implements spec invariant 6: the merge result's position is
// the merge operator's position in Standard mode, and the value's own
// position in Contract mode (the value being t1, the left operand).
func resultPos(opPos, valuePos term.Position, mode term.Mode) term.Position {
	if mode.Kind == term.Contract {
		return valuePos
	}
	return opPos
}
