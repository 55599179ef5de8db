// Package eval is the minimal stand-in for "the larger evaluator driving
// reduction" that spec.md §1 treats as an external collaborator of the
// merge core: something above merge has to actually force a Var, a
// ThunkRef, a deferred Op2(Merge) or an ArrayAssume down to a value, and
// has to tie the recursive knot on a freshly merged record before any of
// its fields can be read. None of this package is exercised by merge
// itself — merge only ever produces the terms this package knows how to
// reduce.
package eval

import (
	"context"
	"fmt"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/diag"
	"github.com/dolthub/nickelcfg/internal/eval/merge"
	"github.com/dolthub/nickelcfg/internal/term"
)

// Force reduces t to a value in env: scalars and arrays are already values
// and are returned unchanged; a Var or ThunkRef is looked up and forced
// (with memoization); an Op2 is reduced (AddOp arithmetically, MergeOp by
// invoking the merge core and forcing its result); an ArrayAssume is
// resolved by structural comparison. Forcing a record returns its field map
// as-is — use ForceRecord to also obtain the environment later field
// access needs.
func Force(ctx context.Context, store *cache.MemStore, t term.Term, env term.Environment) (term.Term, error) {
	switch v := t.(type) {
	case term.Null, term.Bool, term.Num, term.Str, term.EnumTag, term.LabelTerm, term.Array:
		return t, nil

	case term.Var:
		return forceHandle(ctx, store, v.Ident, env)

	case term.ThunkRef:
		return forceThunkRef(ctx, store, v, env)

	case term.Op2:
		return forceOp2(ctx, store, v, env)

	case term.ArrayAssume:
		return forceArrayAssume(ctx, store, v, env)

	case term.Record:
		return v, nil

	case term.RecRecord:
		inst, err := ForceRecord(ctx, store, v, env)
		if err != nil {
			return nil, err
		}
		return inst.Record, nil
	}

	return nil, fmt.Errorf("eval: unreducible term %T", t)
}

// forceHandle resolves id in env to a cache handle and forces it, using
// the cache's memoization so repeated references to the same thunk are
// only reduced once.
func forceHandle(ctx context.Context, store *cache.MemStore, id term.Ident, env term.Environment) (term.Term, error) {
	idx, ok := env.Lookup(id)
	if !ok {
		return nil, &diag.UnboundIdentifier{Ident: id}
	}
	if v, ok := store.Cached(idx); ok {
		return v, nil
	}
	raw, ok := store.RawClosure(idx)
	if !ok {
		return nil, cache.ErrUnknownHandle{Idx: idx}
	}
	v, err := Force(ctx, store, raw.Body, raw.Env)
	if err != nil {
		return nil, err
	}
	store.Memoize(idx, v)
	return v, nil
}

// forceThunkRef forces a saturated reference (spec.md §4.5): before forcing
// the underlying handle, every name it lists as a dependency is re-resolved
// against the environment in scope at force time and shadowed into the
// handle's own closure environment. This is what lets a shared-priority
// merge recursively see sibling fields of the merged record rather than
// whichever operand the thunk originally came from.
func forceThunkRef(ctx context.Context, store *cache.MemStore, ref term.ThunkRef, env term.Environment) (term.Term, error) {
	if v, ok := store.Cached(ref.Idx); ok {
		return v, nil
	}
	raw, ok := store.RawClosure(ref.Idx)
	if !ok {
		return nil, cache.ErrUnknownHandle{Idx: ref.Idx}
	}
	resolved := raw.Env
	for _, key := range ref.Keys {
		if idx, ok := env.Lookup(key); ok {
			resolved = resolved.Extend(key, idx)
		}
	}
	v, err := Force(ctx, store, raw.Body, resolved)
	if err != nil {
		return nil, err
	}
	store.Memoize(ref.Idx, v)
	return v, nil
}

func forceOp2(ctx context.Context, store *cache.MemStore, op term.Op2, env term.Environment) (term.Term, error) {
	switch op.Kind {
	case term.AddOp:
		lv, err := Force(ctx, store, op.Left, env)
		if err != nil {
			return nil, err
		}
		rv, err := Force(ctx, store, op.Right, env)
		if err != nil {
			return nil, err
		}
		ln, ok := lv.(term.Num)
		if !ok {
			return nil, fmt.Errorf("eval: AddOp left operand is not a number: %T", lv)
		}
		rn, ok := rv.(term.Num)
		if !ok {
			return nil, fmt.Errorf("eval: AddOp right operand is not a number: %T", rv)
		}
		return term.NewNum(op.Pos(), ln.Value+rn.Value), nil

	case term.MergeOp:
		lv, err := Force(ctx, store, op.Left, env)
		if err != nil {
			return nil, err
		}
		rv, err := Force(ctx, store, op.Right, env)
		if err != nil {
			return nil, err
		}
		var stack diag.CallStack
		closure, err := merge.Merge(ctx, store, &stack, lv, term.Environment{}, rv, term.Environment{}, op.Pos(), op.Mode)
		if err != nil {
			return nil, err
		}
		return Force(ctx, store, closure.Body, closure.Env)
	}
	return nil, fmt.Errorf("eval: unhandled Op2 kind %d", op.Kind)
}

// forceArrayAssume resolves spec.md §4.6's lowering: force both arrays,
// compare them structurally, and either return the right array or blame
// the synthesized label.
func forceArrayAssume(ctx context.Context, store *cache.MemStore, a term.ArrayAssume, env term.Environment) (term.Term, error) {
	lv, err := Force(ctx, store, a.Left, env)
	if err != nil {
		return nil, err
	}
	rv, err := Force(ctx, store, a.Right, env)
	if err != nil {
		return nil, err
	}
	left, ok := lv.(term.Array)
	if !ok {
		return nil, fmt.Errorf("eval: ArrayAssume left operand is not an array: %T", lv)
	}
	right, ok := rv.(term.Array)
	if !ok {
		return nil, fmt.Errorf("eval: ArrayAssume right operand is not an array: %T", rv)
	}

	forcedLeft, err := forceElems(ctx, store, left.Elems, env)
	if err != nil {
		return nil, err
	}
	forcedRight, err := forceElems(ctx, store, right.Elems, env)
	if err != nil {
		return nil, err
	}

	if !arraysEqual(forcedLeft, forcedRight) {
		return nil, &diag.BlameError{Label: a.Label, Witness: right}
	}
	return term.NewArray(a.Pos(), forcedRight), nil
}

func forceElems(ctx context.Context, store *cache.MemStore, elems []term.Term, env term.Environment) ([]term.Term, error) {
	out := make([]term.Term, len(elems))
	for i, e := range elems {
		v, err := Force(ctx, store, e, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func arraysEqual(a, b []term.Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !scalarEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// scalarEqual compares two forced terms the same way the merge
// dispatcher's same-shape scalar rule does; arrays compare elementwise and
// anything else is considered unequal (spec.md §4.6 never needs to compare
// nested records).
func scalarEqual(a, b term.Term) bool {
	switch x := a.(type) {
	case term.Null:
		_, ok := b.(term.Null)
		return ok
	case term.Bool:
		y, ok := b.(term.Bool)
		return ok && x.Value == y.Value
	case term.Num:
		y, ok := b.(term.Num)
		return ok && x.Value == y.Value
	case term.Str:
		y, ok := b.(term.Str)
		return ok && x.Value == y.Value
	case term.EnumTag:
		y, ok := b.(term.EnumTag)
		return ok && x.Tag == y.Tag
	case term.Array:
		y, ok := b.(term.Array)
		return ok && arraysEqual(x.Elems, y.Elems)
	}
	return false
}
