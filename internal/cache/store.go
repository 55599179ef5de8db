// Package cache implements the thunk cache merge treats as an opaque
// collaborator (spec.md §6): add, revert, saturate and deps. The merge core
// never forces a thunk or inspects its contents; it only threads handles.
package cache

import (
	"fmt"

	"github.com/dolthub/nickelcfg/internal/handle"
	"github.com/dolthub/nickelcfg/internal/term"
)

// Closure is a suspended computation: a term paired with the environment it
// should be evaluated in.
type Closure struct {
	Body term.Term
	Env  term.Environment
}

// BindingKind records how a cache element came to be bound. Merge itself
// only ever adds Normal or Recursive bindings; Let exists for completeness
// with the surrounding evaluator's other binding forms.
type BindingKind int

const (
	Normal BindingKind = iota
	Let
	Recursive
)

// FieldDeps is the set of record fields a revertible thunk's body may
// recursively reference.
type FieldDeps map[term.Ident]struct{}

// Union returns a new FieldDeps containing every member of a and b.
func (a FieldDeps) Union(b FieldDeps) FieldDeps {
	out := make(FieldDeps, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

// BindingType is either Normal or Revertible(deps). The cache is free to
// downgrade a Revertible binding with an empty dependency set to Normal
// (spec.md §4.4): a thunk revertible over no fields never needs to be
// reverted for recursive rebinding.
type BindingType struct {
	Revertible bool
	Deps       FieldDeps
}

// NormalBinding is the non-revertible binding type.
var NormalBinding = BindingType{}

// RevertibleBinding builds a revertible binding type, downgrading to Normal
// when deps is empty.
func RevertibleBinding(deps FieldDeps) BindingType {
	if len(deps) == 0 {
		return NormalBinding
	}
	return BindingType{Revertible: true, Deps: deps}
}

// Store is the cache contract merge depends on (spec.md §6). Implementers
// must never mutate an existing handle's element in place; Revert always
// allocates a fresh handle.
type Store interface {
	// Add installs closure under the given kind and binding type,
	// returning a fresh handle.
	Add(closure Closure, kind BindingKind, bt BindingType) handle.Idx

	// Revert returns a handle pointing at a fresh copy of the original
	// (pre-evaluation) term of idx, sharing its environment, so that
	// recursive references can be rebound in a new enclosing record. If
	// idx is not revertible, Revert returns idx unchanged.
	Revert(idx handle.Idx) (handle.Idx, error)

	// Saturate returns a term.ThunkRef that, when evaluated in env,
	// resolves the given keys as dependencies before forcing idx's
	// thunk.
	Saturate(idx handle.Idx, env term.Environment, keys []term.Ident) (term.Term, error)

	// Deps returns the dependency set of a revertible handle, or
	// (nil, false) for a non-revertible one.
	Deps(idx handle.Idx) (FieldDeps, bool)
}

// ErrUnknownHandle is returned by a Store when asked about a handle it does
// not know about.
type ErrUnknownHandle struct {
	Idx handle.Idx
}

func (e ErrUnknownHandle) Error() string {
	return fmt.Sprintf("cache: unknown handle %d", e.Idx)
}
