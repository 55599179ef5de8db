package cache

import (
	"sync"

	"github.com/dolthub/nickelcfg/internal/handle"
	"github.com/dolthub/nickelcfg/internal/term"
)

type element struct {
	closure  Closure // current closure (identical to original until forced)
	original Closure // pre-evaluation closure, used by Revert
	kind     BindingKind
	bt       BindingType

	forced bool
	value  term.Term
}

// MemStore is an in-memory implementation of Store, plus the extra
// forcing/memoization surface the surrounding evaluator needs. Merge code
// is written against the Store interface only and never sees the extra
// methods below; they exist because the evaluator, not merge, owns and
// drives the cache (spec.md §5: "the cache ... is owned by the evaluator
// and passed in").
type MemStore struct {
	mu    sync.Mutex
	elems map[handle.Idx]*element
	next  handle.Idx
}

// NewMemStore builds an empty cache.
func NewMemStore() *MemStore {
	return &MemStore{elems: make(map[handle.Idx]*element), next: 1}
}

func (s *MemStore) Add(c Closure, kind BindingKind, bt BindingType) handle.Idx {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.next
	s.next++
	s.elems[idx] = &element{closure: c, original: c, kind: kind, bt: bt}
	return idx
}

func (s *MemStore) Revert(idx handle.Idx) (handle.Idx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elems[idx]
	if !ok {
		return handle.Nil, ErrUnknownHandle{Idx: idx}
	}
	if !el.bt.Revertible {
		return idx, nil
	}
	fresh := s.next
	s.next++
	s.elems[fresh] = &element{
		closure:  el.original,
		original: el.original,
		kind:     el.kind,
		bt:       el.bt,
	}
	return fresh, nil
}

func (s *MemStore) Saturate(idx handle.Idx, env term.Environment, keys []term.Ident) (term.Term, error) {
	s.mu.Lock()
	_, ok := s.elems[idx]
	s.mu.Unlock()
	if !ok {
		return nil, ErrUnknownHandle{Idx: idx}
	}
	_ = env // the concrete in-memory evaluator resolves keys lazily via env
	return term.NewThunkRef(idx, keys), nil
}

func (s *MemStore) Deps(idx handle.Idx) (FieldDeps, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elems[idx]
	if !ok || !el.bt.Revertible {
		return nil, false
	}
	return el.bt.Deps, true
}

// RawClosure returns the current closure stored at idx, for use by the
// surrounding evaluator when forcing a thunk. Not part of the Store
// contract merge relies on.
func (s *MemStore) RawClosure(idx handle.Idx) (Closure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elems[idx]
	if !ok {
		return Closure{}, false
	}
	return el.closure, true
}

// Cached returns the memoized value for idx, if any has been forced yet.
func (s *MemStore) Cached(idx handle.Idx) (term.Term, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elems[idx]
	if !ok || !el.forced {
		return nil, false
	}
	return el.value, true
}

// Memoize records the forced value of idx so later forces are O(1).
func (s *MemStore) Memoize(idx handle.Idx, v term.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.elems[idx]; ok {
		el.forced = true
		el.value = v
	}
}

// Len returns the number of handles ever allocated, including reverted
// copies; used only for cache-usage reporting (cmd/mergecfg), never by
// merge itself.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.elems)
}

// Patch rebinds the environment of an existing, not-yet-forced closure in
// place. Merge never calls this — it only ever adds fresh handles (spec.md
// §6: "never mutate an existing handle's element in place"). It exists for
// the surrounding evaluator, which owns the cache outright (spec.md §5) and
// needs it to tie the knot on a freshly merged record: every field's thunk
// is added with whatever environment its revert/saturate step had on hand,
// which may be missing sibling bindings that only exist once every field of
// the record has been processed. Forcing a RecRecord re-derives the
// complete recursive environment and patches each field thunk to it before
// forcing any of them, exactly once, before any dependent computation can
// have observed the stale environment.
func (s *MemStore) Patch(idx handle.Idx, env term.Environment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elems[idx]
	if !ok || el.forced {
		return
	}
	el.closure.Env = env
	el.original.Env = env
}
