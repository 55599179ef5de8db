package term

import "github.com/dolthub/nickelcfg/internal/handle"

// Term is the tagged union of runtime values and deferred computations the
// merge core operates over. New shapes are added by adding a type that
// embeds base and implements term(); dispatch over Term is a type switch,
// never an interface method per shape (spec.md §9: "prefer a tagged-union
// representation ... rather than dynamic dispatch").
type Term interface {
	Pos() Position
	WithPos(Position) Term

	// term is unexported so that only this package can introduce new
	// variants — the closed-sum-type discipline spec.md §9 asks for.
	term()
}

type base struct {
	position Position
}

func (b base) Pos() Position { return b.position }

// Null is the unit value.
type Null struct{ base }

func NewNull(pos Position) Null { return Null{base{pos}} }
func (n Null) WithPos(p Position) Term {
	n.position = p
	return n
}
func (Null) term() {}

// Bool is a boolean scalar.
type Bool struct {
	base
	Value bool
}

func NewBool(pos Position, v bool) Bool { return Bool{base{pos}, v} }
func (b Bool) WithPos(p Position) Term {
	b.position = p
	return b
}
func (Bool) term() {}

// Num is a numeric scalar. Nickel numbers are arbitrary-precision rationals
// in the original; float64 is a faithful-enough stand-in for a Go rewrite
// of the merge core, which only ever compares numbers for equality.
type Num struct {
	base
	Value float64
}

func NewNum(pos Position, v float64) Num { return Num{base{pos}, v} }
func (n Num) WithPos(p Position) Term {
	n.position = p
	return n
}
func (Num) term() {}

// Str is a string scalar, compared byte-for-byte.
type Str struct {
	base
	Value string
}

func NewStr(pos Position, v string) Str { return Str{base{pos}, v} }
func (s Str) WithPos(p Position) Term {
	s.position = p
	return s
}
func (Str) term() {}

// EnumTag is an enum value; two enum tags merge only if their tags match.
type EnumTag struct {
	base
	Tag string
}

func NewEnumTag(pos Position, tag string) EnumTag { return EnumTag{base{pos}, tag} }
func (e EnumTag) WithPos(p Position) Term {
	e.position = p
	return e
}
func (EnumTag) term() {}

// LabelTerm wraps a *Label as a first-class term (distinct from the Label
// type itself, which is metadata attached to Mode/contracts; spec.md's data
// model lists Label as a term case in its own right, e.g. a sealed tail's
// evaluated witness is often a label value).
type LabelTerm struct {
	base
	Value *Label
}

func NewLabelTerm(pos Position, l *Label) LabelTerm { return LabelTerm{base{pos}, l} }
func (l LabelTerm) WithPos(p Position) Term {
	l.position = p
	return l
}
func (LabelTerm) term() {}

// Array is an ordered, fixed-length sequence of terms. Merge never inspects
// elements structurally — see the array-equality lowering in eval/merge.
type Array struct {
	base
	Elems []Term
}

func NewArray(pos Position, elems []Term) Array { return Array{base{pos}, elems} }
func (a Array) WithPos(p Position) Term {
	a.position = p
	return a
}
func (Array) term() {}

// Var is a bare variable reference, resolved against an Environment to a
// cache handle.
type Var struct {
	base
	Ident Ident
}

func NewVar(pos Position, id Ident) Var { return Var{base{pos}, id} }
func (v Var) WithPos(p Position) Term {
	v.position = p
	return v
}
func (Var) term() {}

// Op1Kind enumerates unary primitive operators. The merge core never
// constructs one itself; the case exists because spec.md's data model
// requires it and downstream evaluator stages pattern-match on it.
type Op1Kind int

const (
	Op1Unknown Op1Kind = iota
	Op1BoolNot
)

type Op1 struct {
	base
	Kind Op1Kind
	Arg  Term
}

func NewOp1(pos Position, kind Op1Kind, arg Term) Op1 { return Op1{base{pos}, kind, arg} }
func (o Op1) WithPos(p Position) Term {
	o.position = p
	return o
}
func (Op1) term() {}

// Op2Kind enumerates the binary primitive operators the merge core emits.
// MergeOp is the only case merge ever constructs itself: it carries the
// Mode a deferred shared-field merge must resolve with (§4.4).
type Op2Kind int

const (
	Op2Unknown Op2Kind = iota
	MergeOp
	// AddOp is numeric addition. The merge core never builds one; it exists
	// so the surrounding evaluator has at least one non-merge primitive to
	// reduce, exercising recursive field dependencies the way spec.md §9's
	// design notes describe ("x = y + 1, y = 1 ... forcing x yields 11").
	AddOp
)

type Op2 struct {
	base
	Kind  Op2Kind
	Mode  Mode // valid when Kind == MergeOp
	Left  Term
	Right Term
}

func NewOp2(pos Position, kind Op2Kind, left, right Term) Op2 {
	return Op2{base: base{pos}, Kind: kind, Left: left, Right: right}
}
func (o Op2) WithPos(p Position) Term {
	o.position = p
	return o
}
func (Op2) term() {}

// ArrayAssume is the term the array-equality lowering (§4.6) emits in
// place of a structural array merge: "assume arr1 equals arr2, blaming
// Label on failure, and if so the result is arr2". It models
// `Assume($stdlib_contract_equal arr1, label) arr2` from spec.md §4.6 as
// one dedicated node rather than contorting Op2 to carry three operands.
type ArrayAssume struct {
	base
	Left  Term // arr1
	Right Term // arr2
	Label *Label
}

func NewArrayAssume(pos Position, left, right Term, lbl *Label) ArrayAssume {
	return ArrayAssume{base: base{pos}, Left: left, Right: right, Label: lbl}
}
func (a ArrayAssume) WithPos(p Position) Term {
	a.position = p
	return a
}
func (ArrayAssume) term() {}

// ThunkRef is a resolved cache reference produced by the saturation
// adapter (§4.5): a term that, once forced by the surrounding evaluator,
// reads Keys out of the enclosing record before forcing the handle. Merge
// never inspects a ThunkRef's contents once built; only the evaluator
// forces it.
type ThunkRef struct {
	base
	Idx  handle.Idx
	Keys []Ident
}

func NewThunkRef(idx handle.Idx, keys []Ident) ThunkRef {
	return ThunkRef{Idx: idx, Keys: keys}
}
func (t ThunkRef) WithPos(p Position) Term {
	t.position = p
	return t
}
func (ThunkRef) term() {}

// RecRecord is a record closure: a field map plus the environment fields
// must be rebound against, produced whenever merge builds a new record so
// that recursive references resolve against the merged result rather than
// either operand (spec.md §4.2, §9).
type RecRecord struct {
	base
	Fields *Record
	Deps   map[Ident]handle.Idx // bookkeeping only, opaque to consumers
	Ty     Term                 // always nil in this subsystem (types=None)
}

func NewRecRecord(pos Position, fields *Record) RecRecord {
	return RecRecord{base: base{pos}, Fields: fields}
}
func (r RecRecord) WithPos(p Position) Term {
	r.position = p
	return r
}
func (RecRecord) term() {}
