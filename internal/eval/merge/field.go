package merge

import (
	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/term"
)

// mergeField combines two fields of the same key (spec.md §4.4): value
// selection by priority, then metadata combination. envFinal accumulates
// any fresh bindings the merge needs (reverted thunks, the deferred
// shared-value merge); allKeys is the union of every field name across
// both records, required for saturation.
func mergeField(
	store cache.Store,
	f1 *term.Field, env1 term.Environment,
	f2 *term.Field, env2 term.Environment,
	envFinal *term.Environment,
	allKeys []term.Ident,
	opPos term.Position,
	mode term.Mode,
) (*term.Field, error) {
	value, priority, err := mergeValue(store, f1, env1, f2, env2, envFinal, allKeys, opPos, mode)
	if err != nil {
		return nil, err
	}

	pending, err := mergePendingContracts(store, f1, env1, f2, env2, envFinal)
	if err != nil {
		return nil, err
	}

	return &term.Field{
		Metadata: term.Metadata{
			Doc:         mergeDoc(f1, f2),
			Annotation:  mergeAnnotation(f1, f2),
			Opt:         f1.Metadata.Opt && f2.Metadata.Opt,
			NotExported: f1.Metadata.NotExported || f2.Metadata.NotExported,
			Priority:    priority,
		},
		Value:            value,
		PendingContracts: pending,
	}, nil
}

// mergeValue implements the value-selection table of spec.md §4.4.
func mergeValue(
	store cache.Store,
	f1 *term.Field, env1 term.Environment,
	f2 *term.Field, env2 term.Environment,
	envFinal *term.Environment,
	allKeys []term.Ident,
	opPos term.Position,
	mode term.Mode,
) (term.Term, term.Priority, error) {
	has1, has2 := f1.HasValue(), f2.HasValue()

	switch {
	case !has1 && !has2:
		return nil, term.Priority{Kind: term.PriorityDefault}, nil

	case has1 && !has2:
		v, err := revertClosurize(store, env1, envFinal, f1.Value)
		return v, f1.Metadata.Priority, err

	case !has1 && has2:
		v, err := revertClosurize(store, env2, envFinal, f2.Value)
		return v, f2.Metadata.Priority, err

	default:
		switch f1.Metadata.Priority.Compare(f2.Metadata.Priority) {
		case 1:
			v, err := revertClosurize(store, env1, envFinal, f1.Value)
			return v, f1.Metadata.Priority, err
		case -1:
			v, err := revertClosurize(store, env2, envFinal, f2.Value)
			return v, f2.Metadata.Priority, err
		default:
			v, err := fieldsMergeClosurize(store, env1, env2, envFinal, f1.Value, f2.Value, allKeys, opPos, mode)
			return v, f1.Metadata.Priority, err
		}
	}
}

// fieldsMergeClosurize defers a shared-priority value merge (spec.md
// §4.4): both operands are saturated over allKeys, wrapped in
// Op2(Merge(mode), ...), and installed as a fresh revertible thunk whose
// dependencies are the union of the two operands' own dependencies.
func fieldsMergeClosurize(
	store cache.Store,
	env1, env2 term.Environment,
	envFinal *term.Environment,
	t1, t2 term.Term,
	keys []term.Ident,
	opPos term.Position,
	mode term.Mode,
) (term.Term, error) {
	sat1, err := saturate(store, env1, keys, t1)
	if err != nil {
		return nil, err
	}
	sat2, err := saturate(store, env2, keys, t2)
	if err != nil {
		return nil, err
	}

	op2 := term.NewOp2(opPos, term.MergeOp, sat1, sat2)
	op2.Mode = mode

	deps := collectDeps(store, env1, t1).Union(collectDeps(store, env2, t2))
	idx := store.Add(cache.Closure{Body: op2, Env: *envFinal}, cache.Recursive, cache.RevertibleBinding(deps))

	fresh := freshIdent("$field")
	*envFinal = envFinal.Extend(fresh, idx)
	return term.NewVar(opPos, fresh), nil
}

func collectDeps(store cache.Store, env term.Environment, t term.Term) cache.FieldDeps {
	v, ok := t.(term.Var)
	if !ok {
		return nil
	}
	idx, ok := env.Lookup(v.Ident)
	if !ok {
		return nil
	}
	deps, ok := store.Deps(idx)
	if !ok {
		return nil
	}
	return deps
}

// mergeDoc implements spec.md §9 open question 1: left wins if non-empty,
// else right.
func mergeDoc(f1, f2 *term.Field) string {
	if f1.Metadata.Doc != "" {
		return f1.Metadata.Doc
	}
	return f2.Metadata.Doc
}

// mergeAnnotation implements spec.md §4.4: if both sides annotate a type,
// the left's is kept as principal and the right's is demoted to a
// contract; contracts always concatenate left ++ right (spec.md §9 open
// question 2 flags the left-wins rule as arbitrary but preserved here for
// reference compatibility).
func mergeAnnotation(f1, f2 *term.Field) term.Annotation {
	a1, a2 := f1.Metadata.Annotation, f2.Metadata.Annotation

	var types term.Term
	contracts := append(append([]term.Term(nil), a1.Contracts...), a2.Contracts...)

	switch {
	case a1.Types != nil && a2.Types != nil:
		types = a1.Types
		contracts = append(contracts, a2.Types)
	case a1.Types != nil:
		types = a1.Types
	case a2.Types != nil:
		types = a2.Types
	}

	return term.Annotation{Types: types, Contracts: contracts}
}

// mergePendingContracts revert-closurizes both lists into envFinal and
// concatenates them (spec.md §4.4).
func mergePendingContracts(
	store cache.Store,
	f1 *term.Field, env1 term.Environment,
	f2 *term.Field, env2 term.Environment,
	envFinal *term.Environment,
) ([]term.Term, error) {
	out := make([]term.Term, 0, len(f1.PendingContracts)+len(f2.PendingContracts))
	for _, c := range f1.PendingContracts {
		v, err := revertClosurize(store, env1, envFinal, c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	for _, c := range f2.PendingContracts {
		v, err := revertClosurize(store, env2, envFinal, c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
