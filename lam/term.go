package lam

import (
	"fmt"
)

// Term is a de-Bruijn-indexed term over atoms, existential atoms,
// interpreted constants, bound variables, abstraction and application.
// Application nodes carry a redundant annotation of their argument's
// sort so the checker never re-derives sorts through deep contexts.
type Term interface {
	isTerm()
	Equal(Term) bool
	String() string

	// Size is the node count, always > 0.
	Size() int
	// MaxLooseBVarSucc is the smallest n such that no loose bound
	// variable >= n occurs. A term is well-scoped under a context of
	// length L iff MaxLooseBVarSucc() <= L.
	MaxLooseBVarSucc() int
	// MaxEVarSucc is the smallest n such that no etom >= n occurs.
	MaxEVarSucc() int
}

// Atom is an opaque term variable, addressed by index into the
// session's term-atom table. Its value is owned by the reifier.
type Atom struct {
	Idx int
}

// Etom is an existentially introduced atom, allocated mid-derivation by
// skolemization or definition steps.
type Etom struct {
	Idx int
}

// Base wraps an interpreted constant as a term.
type Base struct {
	Const BaseTerm
}

// BVar references a binder by de Bruijn index (0 = innermost).
type BVar struct {
	Idx int
}

// Abs abstracts over one variable of the given sort.
type Abs struct {
	Sort Sort
	Body Term
}

// App applies Fn to Arg. ArgSort is an independent, redundant witness of
// Arg's sort; divergence from the inferred sort is always an error.
type App struct {
	ArgSort Sort
	Fn      Term
	Arg     Term
}

func (Atom) isTerm() {}
func (Etom) isTerm() {}
func (Base) isTerm() {}
func (BVar) isTerm() {}
func (Abs) isTerm()  {}
func (App) isTerm()  {}

func (t Atom) Equal(other Term) bool {
	o, ok := other.(Atom)
	return ok && t.Idx == o.Idx
}

func (t Etom) Equal(other Term) bool {
	o, ok := other.(Etom)
	return ok && t.Idx == o.Idx
}

func (t Base) Equal(other Term) bool {
	o, ok := other.(Base)
	return ok && t.Const.Equal(o.Const)
}

func (t BVar) Equal(other Term) bool {
	o, ok := other.(BVar)
	return ok && t.Idx == o.Idx
}

func (t Abs) Equal(other Term) bool {
	o, ok := other.(Abs)
	return ok && t.Sort.Equal(o.Sort) && t.Body.Equal(o.Body)
}

func (t App) Equal(other Term) bool {
	o, ok := other.(App)
	return ok && t.ArgSort.Equal(o.ArgSort) && t.Fn.Equal(o.Fn) && t.Arg.Equal(o.Arg)
}

func (Atom) Size() int  { return 1 }
func (Etom) Size() int  { return 1 }
func (Base) Size() int  { return 1 }
func (BVar) Size() int  { return 1 }
func (t Abs) Size() int { return 1 + t.Body.Size() }
func (t App) Size() int { return 1 + t.Fn.Size() + t.Arg.Size() }

func (Atom) MaxLooseBVarSucc() int   { return 0 }
func (Etom) MaxLooseBVarSucc() int   { return 0 }
func (Base) MaxLooseBVarSucc() int   { return 0 }
func (t BVar) MaxLooseBVarSucc() int { return t.Idx + 1 }

func (t Abs) MaxLooseBVarSucc() int {
	return max(t.Body.MaxLooseBVarSucc()-1, 0)
}

func (t App) MaxLooseBVarSucc() int {
	return max(t.Fn.MaxLooseBVarSucc(), t.Arg.MaxLooseBVarSucc())
}

func (Atom) MaxEVarSucc() int   { return 0 }
func (t Etom) MaxEVarSucc() int { return t.Idx + 1 }
func (Base) MaxEVarSucc() int   { return 0 }
func (BVar) MaxEVarSucc() int   { return 0 }
func (t Abs) MaxEVarSucc() int  { return t.Body.MaxEVarSucc() }

func (t App) MaxEVarSucc() int {
	return max(t.Fn.MaxEVarSucc(), t.Arg.MaxEVarSucc())
}

func (t Atom) String() string { return fmt.Sprintf("a%d", t.Idx) }
func (t Etom) String() string { return fmt.Sprintf("e%d", t.Idx) }
func (t Base) String() string { return t.Const.String() }
func (t BVar) String() string { return fmt.Sprintf("!%d", t.Idx) }

func (t Abs) String() string {
	return fmt.Sprintf("(λ:%s. %s)", t.Sort, t.Body)
}

func (t App) String() string {
	return fmt.Sprintf("(%s %s)", t.Fn, t.Arg)
}
