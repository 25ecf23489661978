package lam

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Sort is the closed universe of types the calculus ranges over: opaque
// indexed atoms (resolved externally by a valuation), a fixed set of
// interpreted base sorts, and curried function sorts.
type Sort interface {
	isSort()
	Equal(Sort) bool
	Contains(Sort) bool
	String() string
}

// SortAtom is an opaque type variable, addressed by index into the
// session's sort-atom table.
type SortAtom struct {
	Idx int
}

// BaseKind enumerates the interpreted base sorts.
type BaseKind int

const (
	KindProp BaseKind = iota
	KindBool
	KindNat
	KindInt
	KindStr
	KindReal
	KindBitVec
)

// SortBase is an interpreted base sort. Width is meaningful only for
// KindBitVec.
type SortBase struct {
	Kind  BaseKind
	Width int
}

var (
	SortProp = SortBase{Kind: KindProp}
	SortBool = SortBase{Kind: KindBool}
	SortNat  = SortBase{Kind: KindNat}
	SortInt  = SortBase{Kind: KindInt}
	SortStr  = SortBase{Kind: KindStr}
	SortReal = SortBase{Kind: KindReal}
)

func SortBV(width int) SortBase {
	return SortBase{Kind: KindBitVec, Width: width}
}

// SortFunc is the sort of functions from Dom to Cod.
type SortFunc struct {
	Dom Sort
	Cod Sort
}

func (SortAtom) isSort() {}
func (SortBase) isSort() {}
func (SortFunc) isSort() {}

func (s SortAtom) Equal(other Sort) bool {
	o, ok := other.(SortAtom)
	return ok && s.Idx == o.Idx
}

func (s SortBase) Equal(other Sort) bool {
	o, ok := other.(SortBase)
	if !ok || s.Kind != o.Kind {
		return false
	}
	return s.Kind != KindBitVec || s.Width == o.Width
}

func (s SortFunc) Equal(other Sort) bool {
	o, ok := other.(SortFunc)
	return ok && s.Dom.Equal(o.Dom) && s.Cod.Equal(o.Cod)
}

// Contains reports whether sub occurs anywhere inside s, including s
// itself and nested argument/result positions.
func (s SortAtom) Contains(sub Sort) bool { return s.Equal(sub) }
func (s SortBase) Contains(sub Sort) bool { return s.Equal(sub) }
func (s SortFunc) Contains(sub Sort) bool {
	return s.Equal(sub) || s.Dom.Contains(sub) || s.Cod.Contains(sub)
}

func (s SortAtom) String() string { return fmt.Sprintf("#%d", s.Idx) }

func (s SortBase) String() string {
	switch s.Kind {
	case KindProp:
		return "Prop"
	case KindBool:
		return "Bool"
	case KindNat:
		return "Nat"
	case KindInt:
		return "Int"
	case KindStr:
		return "String"
	case KindReal:
		return "Real"
	case KindBitVec:
		return fmt.Sprintf("BitVec %d", s.Width)
	default:
		panic("unknown base sort kind")
	}
}

func (s SortFunc) String() string {
	dom := s.Dom.String()
	if _, ok := s.Dom.(SortFunc); ok {
		dom = "(" + dom + ")"
	}
	return dom + " -> " + s.Cod.String()
}

// MkFuncs builds the curried function sort args[0] -> args[1] -> ... -> res.
func MkFuncs(res Sort, args []Sort) Sort {
	out := res
	for i := len(args) - 1; i >= 0; i-- {
		out = SortFunc{Dom: args[i], Cod: out}
	}
	return out
}

// MkFuncsRev is MkFuncs with the argument list supplied innermost-first.
func MkFuncsRev(res Sort, revArgs []Sort) Sort {
	out := res
	for _, a := range revArgs {
		out = SortFunc{Dom: a, Cod: out}
	}
	return out
}

// ArgTys returns every argument sort of a (possibly zero-length) curried
// function sort, outermost first.
func ArgTys(s Sort) []Sort {
	var args []Sort
	for {
		f, ok := s.(SortFunc)
		if !ok {
			return args
		}
		args = append(args, f.Dom)
		s = f.Cod
	}
}

// ResTy returns the sort left after stripping every leading arrow.
func ResTy(s Sort) Sort {
	for {
		f, ok := s.(SortFunc)
		if !ok {
			return s
		}
		s = f.Cod
	}
}

// ArgTysN decomposes exactly n leading arrows. ok is false when s has
// fewer than n arrows; ArgTysN and ResTyN are defined on exactly the
// same inputs.
func ArgTysN(n int, s Sort) (args []Sort, ok bool) {
	args = make([]Sort, 0, n)
	for i := 0; i < n; i++ {
		f, isFn := s.(SortFunc)
		if !isFn {
			return nil, false
		}
		args = append(args, f.Dom)
		s = f.Cod
	}
	return args, true
}

// ResTyN strips exactly n leading arrows.
func ResTyN(n int, s Sort) (res Sort, ok bool) {
	for i := 0; i < n; i++ {
		f, isFn := s.(SortFunc)
		if !isFn {
			return nil, false
		}
		s = f.Cod
	}
	return s, true
}

func sortStrings(sorts []Sort) []string {
	return gfn.Map(sorts, func(s Sort) string { return s.String() })
}

// CtxString renders a typing context for error reporting.
func CtxString(ctx []Sort) string {
	return "[" + strings.Join(sortStrings(ctx), ", ") + "]"
}
