package term

import "github.com/dolthub/nickelcfg/internal/handle"

// Ident is an identifier: a field name when used as a record key, a
// variable name when used in an Environment.
type Ident string

// Environment maps identifiers to cache handles. It is a persistent
// singly-linked structure so that "shared immutably at use sites; cloned
// cheaply" (spec.md §3) is true by construction: Extend never mutates its
// receiver, and sharing a tail across many environments costs one pointer.
type Environment struct {
	tail *binding
}

type binding struct {
	id     Ident
	idx    handle.Idx
	parent *binding
}

// Extend returns a new environment with id bound to idx, without modifying
// e.
func (e Environment) Extend(id Ident, idx handle.Idx) Environment {
	return Environment{tail: &binding{id: id, idx: idx, parent: e.tail}}
}

// Lookup resolves id against e, walking from the most recently extended
// binding outward (shadowing semantics).
func (e Environment) Lookup(id Ident) (handle.Idx, bool) {
	for b := e.tail; b != nil; b = b.parent {
		if b.id == id {
			return b.idx, true
		}
	}
	return handle.Nil, false
}
