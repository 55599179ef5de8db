package merge

import (
	"context"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/diag"
	"github.com/dolthub/nickelcfg/internal/term"
)

// mergeRecord implements spec.md §4.2.
func mergeRecord(
	ctx context.Context,
	store cache.Store,
	stack *diag.CallStack,
	r1 term.Record, env1 term.Environment,
	r2 term.Record, env2 term.Environment,
	opPos term.Position,
	mode term.Mode,
) (cache.Closure, error) {
	// 1. Sealed tails are opaque to merge (invariant 1).
	if r1.SealedTail != nil {
		return cache.Closure{}, sealedTailError(r1.SealedTail, stack)
	}
	if r2.SealedTail != nil {
		return cache.Closure{}, sealedTailError(r2.SealedTail, stack)
	}

	// 2. Split the two field maps.
	sp := split(r1.Fields, r2.Fields)

	// 3. A closed (non-open) record contract rejects unexpected fields.
	if mode.Kind == term.Contract && !r2.Attrs.Open && len(sp.left) > 0 {
		return cache.Closure{}, blameExtraFields(mode.ContractLbl, sp.left, stack)
	}

	// 4. Choose the result position.
	pos := resultPos(opPos, r1.Pos(), mode)

	// All keys of the merged record, needed by the field merger for
	// saturation.
	allKeys := make([]term.Ident, 0, len(sp.left)+len(sp.center)+len(sp.right))
	allKeys = append(allKeys, sp.left...)
	allKeys = append(allKeys, sp.center...)
	allKeys = append(allKeys, sp.right...)

	var envFinal term.Environment
	m := term.NewOrderedFields()

	// 5a. Left-only fields: revert and rebind against env1.
	for _, id := range sp.left {
		f, _ := sp.leftMap.Get(id)
		nf, err := revertOnlyField(store, f, env1, &envFinal)
		if err != nil {
			return cache.Closure{}, err
		}
		m.Set(id, nf)
	}

	// 5b. Right-only fields: revert and rebind against env2.
	for _, id := range sp.right {
		f, _ := sp.rightMap.Get(id)
		nf, err := revertOnlyField(store, f, env2, &envFinal)
		if err != nil {
			return cache.Closure{}, err
		}
		m.Set(id, nf)
	}

	// 5c. Shared keys: field-merge.
	for _, id := range sp.center {
		f1, _ := sp.leftMap.Get(id)
		f2, _ := sp.rightMap.Get(id)
		nf, err := mergeField(store, f1, env1, f2, env2, &envFinal, allKeys, opPos, mode)
		if err != nil {
			return cache.Closure{}, err
		}
		m.Set(id, nf)
	}

	rec := term.NewRecord(pos, m, term.MergeAttrs(r1.Attrs, r2.Attrs))
	recRec := term.NewRecRecord(pos, &rec)
	return cache.Closure{Body: recRec, Env: envFinal}, nil
}

// revertOnlyField rebinds a left-only or right-only field's value and
// pending contracts against envFinal without recursing into the field
// merger (spec.md §4.2 step 5: "reverted and rebound into a fresh
// environment via the adapter").
func revertOnlyField(store cache.Store, f *term.Field, env term.Environment, envFinal *term.Environment) (*term.Field, error) {
	var value term.Term
	var err error
	if f.HasValue() {
		value, err = revertClosurize(store, env, envFinal, f.Value)
		if err != nil {
			return nil, err
		}
	}

	pending := make([]term.Term, 0, len(f.PendingContracts))
	for _, c := range f.PendingContracts {
		v, err := revertClosurize(store, env, envFinal, c)
		if err != nil {
			return nil, err
		}
		pending = append(pending, v)
	}

	return &term.Field{
		Metadata:         f.Metadata,
		Value:            value,
		PendingContracts: pending,
	}, nil
}
