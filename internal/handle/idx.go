// Package handle defines the opaque cache handle type shared by the term
// and cache packages without introducing an import cycle between them.
package handle

// Idx is an opaque handle into the thunk cache. Merge never interprets its
// value; it only threads handles between Environment, Store and back.
type Idx uint64

// Nil is the zero handle, never returned by Store.Add.
const Nil Idx = 0
