package merge

import (
	"sync/atomic"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/diag"
	"github.com/dolthub/nickelcfg/internal/term"
)

// revertClosurize is the workhorse used whenever a value crosses from an
// operand environment into the merged environment (spec.md §4.5). If t is
// a bare variable, its cache handle is reverted and rebound to a fresh
// identifier in envFinal; any other term is a constant (share-normal-form
// guarantees this) and is returned unchanged.
func revertClosurize(store cache.Store, srcEnv term.Environment, envFinal *term.Environment, t term.Term) (term.Term, error) {
	v, ok := t.(term.Var)
	if !ok {
		return t, nil
	}
	idx, ok := srcEnv.Lookup(v.Ident)
	if !ok {
		return nil, &diag.UnboundIdentifier{Ident: v.Ident, Pos: v.Pos()}
	}
	reverted, err := store.Revert(idx)
	if err != nil {
		return nil, err
	}
	fresh := freshIdent(v.Ident)
	*envFinal = envFinal.Extend(fresh, reverted)
	return term.NewVar(v.Pos(), fresh), nil
}

// saturate implements spec.md §4.5's "saturate for a bare Var": it looks
// the variable up in env and asks the cache to saturate its handle over
// keys. Non-variable terms are the identity.
func saturate(store cache.Store, env term.Environment, keys []term.Ident, t term.Term) (term.Term, error) {
	v, ok := t.(term.Var)
	if !ok {
		return t, nil
	}
	idx, ok := env.Lookup(v.Ident)
	if !ok {
		return nil, &diag.UnboundIdentifier{Ident: v.Ident, Pos: v.Pos()}
	}
	return store.Saturate(idx, env, keys)
}

// freshCounter hands out unique suffixes for synthesized identifiers. It
// is process-wide and atomic because MergeAll runs independent merge
// calls concurrently, each minting fresh identifiers into its own
// environment — merge only needs names that do not collide within one
// merged record's environment, not a cryptographic or globally unique id.
var freshCounter uint64

func freshIdent(base term.Ident) term.Ident {
	n := atomic.AddUint64(&freshCounter, 1)
	return term.Ident(string(base) + "$" + itoa(n))
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
