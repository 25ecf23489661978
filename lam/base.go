package lam

import (
	"fmt"
	"math/big"
)

// BaseTerm is an interpreted constant. Every constant has exactly one
// sort; import-form equality/quantifier constants look theirs up in the
// import side table, all others ignore it.
type BaseTerm interface {
	isBase()
	Equal(BaseTerm) bool
	String() string
	SortOf(ilTable []Sort) (Sort, error)
}

// --- Propositional constants ---

type PropOp int

const (
	PropTrue PropOp = iota
	PropFalse
	PropNot
	PropAnd
	PropOr
	PropImp
	PropIff
)

type PropConst struct {
	Op PropOp
}

func (PropConst) isBase() {}

func (c PropConst) Equal(other BaseTerm) bool {
	o, ok := other.(PropConst)
	return ok && c.Op == o.Op
}

func (c PropConst) String() string {
	switch c.Op {
	case PropTrue:
		return "true"
	case PropFalse:
		return "false"
	case PropNot:
		return "not"
	case PropAnd:
		return "and"
	case PropOr:
		return "or"
	case PropImp:
		return "imp"
	case PropIff:
		return "iff"
	default:
		panic("unknown prop constant")
	}
}

func (c PropConst) SortOf([]Sort) (Sort, error) {
	switch c.Op {
	case PropTrue, PropFalse:
		return SortProp, nil
	case PropNot:
		return SortFunc{SortProp, SortProp}, nil
	default:
		return SortFunc{SortProp, SortFunc{SortProp, SortProp}}, nil
	}
}

// --- Boolean constants ---

type BoolOp int

const (
	BoolTrue BoolOp = iota
	BoolFalse
	BoolNot
	BoolAnd
	BoolOr
)

type BoolConst struct {
	Op BoolOp
}

func (BoolConst) isBase() {}

func (c BoolConst) Equal(other BaseTerm) bool {
	o, ok := other.(BoolConst)
	return ok && c.Op == o.Op
}

func (c BoolConst) String() string {
	switch c.Op {
	case BoolTrue:
		return "trueb"
	case BoolFalse:
		return "falseb"
	case BoolNot:
		return "notb"
	case BoolAnd:
		return "andb"
	case BoolOr:
		return "orb"
	default:
		panic("unknown bool constant")
	}
}

func (c BoolConst) SortOf([]Sort) (Sort, error) {
	switch c.Op {
	case BoolTrue, BoolFalse:
		return SortBool, nil
	case BoolNot:
		return SortFunc{SortBool, SortBool}, nil
	default:
		return SortFunc{SortBool, SortFunc{SortBool, SortBool}}, nil
	}
}

// --- Natural number constants ---

type NatOp int

const (
	NatLit NatOp = iota
	NatAdd
	NatSub
	NatMul
	NatDiv
	NatMod
	NatLe
	NatLt
	NatMax
	NatMin
)

// NatConst is an operator over naturals. V is the literal value and is
// set only when Op == NatLit.
type NatConst struct {
	Op NatOp
	V  *big.Int
}

func NatValOf(n int64) NatConst {
	if n < 0 {
		panic("natural literal cannot be negative")
	}
	return NatConst{Op: NatLit, V: big.NewInt(n)}
}

func (NatConst) isBase() {}

func (c NatConst) Equal(other BaseTerm) bool {
	o, ok := other.(NatConst)
	if !ok || c.Op != o.Op {
		return false
	}
	return c.Op != NatLit || c.V.Cmp(o.V) == 0
}

func (c NatConst) String() string {
	switch c.Op {
	case NatLit:
		return fmt.Sprintf("natVal %s", c.V)
	case NatAdd:
		return "nadd"
	case NatSub:
		return "nsub"
	case NatMul:
		return "nmul"
	case NatDiv:
		return "ndiv"
	case NatMod:
		return "nmod"
	case NatLe:
		return "nle"
	case NatLt:
		return "nlt"
	case NatMax:
		return "nmax"
	case NatMin:
		return "nmin"
	default:
		panic("unknown nat constant")
	}
}

func (c NatConst) SortOf([]Sort) (Sort, error) {
	switch c.Op {
	case NatLit:
		return SortNat, nil
	case NatLe, NatLt:
		return SortFunc{SortNat, SortFunc{SortNat, SortProp}}, nil
	default:
		return SortFunc{SortNat, SortFunc{SortNat, SortNat}}, nil
	}
}

// --- Integer constants ---

type IntOp int

const (
	IntLit IntOp = iota
	IntNeg
	IntAbs
	IntAdd
	IntSub
	IntMul
	IntDiv
	IntMod
	IntLe
	IntLt
	IntMax
	IntMin
)

// IntConst is an operator over integers. V is set only when Op == IntLit.
type IntConst struct {
	Op IntOp
	V  *big.Int
}

func IntValOf(n int64) IntConst {
	return IntConst{Op: IntLit, V: big.NewInt(n)}
}

func (IntConst) isBase() {}

func (c IntConst) Equal(other BaseTerm) bool {
	o, ok := other.(IntConst)
	if !ok || c.Op != o.Op {
		return false
	}
	return c.Op != IntLit || c.V.Cmp(o.V) == 0
}

func (c IntConst) String() string {
	switch c.Op {
	case IntLit:
		return fmt.Sprintf("intVal %s", c.V)
	case IntNeg:
		return "ineg"
	case IntAbs:
		return "iabs"
	case IntAdd:
		return "iadd"
	case IntSub:
		return "isub"
	case IntMul:
		return "imul"
	case IntDiv:
		return "idiv"
	case IntMod:
		return "imod"
	case IntLe:
		return "ile"
	case IntLt:
		return "ilt"
	case IntMax:
		return "imax"
	case IntMin:
		return "imin"
	default:
		panic("unknown int constant")
	}
}

func (c IntConst) SortOf([]Sort) (Sort, error) {
	switch c.Op {
	case IntLit:
		return SortInt, nil
	case IntNeg, IntAbs:
		return SortFunc{SortInt, SortInt}, nil
	case IntLe, IntLt:
		return SortFunc{SortInt, SortFunc{SortInt, SortProp}}, nil
	default:
		return SortFunc{SortInt, SortFunc{SortInt, SortInt}}, nil
	}
}

// --- String constants ---

type StrOp int

const (
	StrLit StrOp = iota
	StrApp
	StrLe
	StrLt
	StrPrefixOf
	StrLength
)

// StrConst is an operator over strings. V is set only when Op == StrLit.
type StrConst struct {
	Op StrOp
	V  string
}

func StrValOf(s string) StrConst {
	return StrConst{Op: StrLit, V: s}
}

func (StrConst) isBase() {}

func (c StrConst) Equal(other BaseTerm) bool {
	o, ok := other.(StrConst)
	if !ok || c.Op != o.Op {
		return false
	}
	return c.Op != StrLit || c.V == o.V
}

func (c StrConst) String() string {
	switch c.Op {
	case StrLit:
		return fmt.Sprintf("strVal %q", c.V)
	case StrApp:
		return "sapp"
	case StrLe:
		return "sle"
	case StrLt:
		return "slt"
	case StrPrefixOf:
		return "sprefixof"
	case StrLength:
		return "slength"
	default:
		panic("unknown string constant")
	}
}

func (c StrConst) SortOf([]Sort) (Sort, error) {
	switch c.Op {
	case StrLit:
		return SortStr, nil
	case StrApp:
		return SortFunc{SortStr, SortFunc{SortStr, SortStr}}, nil
	case StrLength:
		return SortFunc{SortStr, SortNat}, nil
	default:
		return SortFunc{SortStr, SortFunc{SortStr, SortProp}}, nil
	}
}

// --- Bit-vector constants ---

type BVOp int

const (
	BVLit BVOp = iota
	BVNeg
	BVAdd
	BVSub
	BVAnd
	BVOr
	BVXor
	BVUlt
	BVUle
)

// BVConst is an operator over bit-vectors of a fixed width. Bits is set
// only when Op == BVLit and is always reduced modulo 2^Width.
type BVConst struct {
	Op    BVOp
	Width int
	Bits  *big.Int
}

func BVValOf(width int, bits *big.Int) BVConst {
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return BVConst{Op: BVLit, Width: width, Bits: new(big.Int).Mod(bits, m)}
}

func (BVConst) isBase() {}

func (c BVConst) Equal(other BaseTerm) bool {
	o, ok := other.(BVConst)
	if !ok || c.Op != o.Op || c.Width != o.Width {
		return false
	}
	return c.Op != BVLit || c.Bits.Cmp(o.Bits) == 0
}

func (c BVConst) String() string {
	switch c.Op {
	case BVLit:
		return fmt.Sprintf("bvVal %d %s", c.Width, c.Bits)
	case BVNeg:
		return fmt.Sprintf("bvneg %d", c.Width)
	case BVAdd:
		return fmt.Sprintf("bvadd %d", c.Width)
	case BVSub:
		return fmt.Sprintf("bvsub %d", c.Width)
	case BVAnd:
		return fmt.Sprintf("bvand %d", c.Width)
	case BVOr:
		return fmt.Sprintf("bvor %d", c.Width)
	case BVXor:
		return fmt.Sprintf("bvxor %d", c.Width)
	case BVUlt:
		return fmt.Sprintf("bvult %d", c.Width)
	case BVUle:
		return fmt.Sprintf("bvule %d", c.Width)
	default:
		panic("unknown bitvec constant")
	}
}

func (c BVConst) SortOf([]Sort) (Sort, error) {
	bv := SortBV(c.Width)
	switch c.Op {
	case BVLit:
		return bv, nil
	case BVNeg:
		return SortFunc{bv, bv}, nil
	case BVUlt, BVUle:
		return SortFunc{bv, SortFunc{bv, SortProp}}, nil
	default:
		return SortFunc{bv, SortFunc{bv, bv}}, nil
	}
}

// --- Polymorphic equality and quantifiers ---
//
// Each exists in an import form (EqI/ForallI/ExistsI), whose sort is an
// index into the session's import side table, and a resolved form
// carrying the sort directly. Import forms appear while sort atoms are
// still being discovered; Resolve rewrites them before interpretation
// or export.

type EqConst struct{ Sort Sort }
type ForallConst struct{ Sort Sort }
type ExistsConst struct{ Sort Sort }

type EqIConst struct{ Idx int }
type ForallIConst struct{ Idx int }
type ExistsIConst struct{ Idx int }

func (EqConst) isBase()      {}
func (ForallConst) isBase()  {}
func (ExistsConst) isBase()  {}
func (EqIConst) isBase()     {}
func (ForallIConst) isBase() {}
func (ExistsIConst) isBase() {}

func (c EqConst) Equal(other BaseTerm) bool {
	o, ok := other.(EqConst)
	return ok && c.Sort.Equal(o.Sort)
}

func (c ForallConst) Equal(other BaseTerm) bool {
	o, ok := other.(ForallConst)
	return ok && c.Sort.Equal(o.Sort)
}

func (c ExistsConst) Equal(other BaseTerm) bool {
	o, ok := other.(ExistsConst)
	return ok && c.Sort.Equal(o.Sort)
}

func (c EqIConst) Equal(other BaseTerm) bool {
	o, ok := other.(EqIConst)
	return ok && c.Idx == o.Idx
}

func (c ForallIConst) Equal(other BaseTerm) bool {
	o, ok := other.(ForallIConst)
	return ok && c.Idx == o.Idx
}

func (c ExistsIConst) Equal(other BaseTerm) bool {
	o, ok := other.(ExistsIConst)
	return ok && c.Idx == o.Idx
}

func (c EqConst) String() string      { return fmt.Sprintf("eq[%s]", c.Sort) }
func (c ForallConst) String() string  { return fmt.Sprintf("forall[%s]", c.Sort) }
func (c ExistsConst) String() string  { return fmt.Sprintf("exists[%s]", c.Sort) }
func (c EqIConst) String() string     { return fmt.Sprintf("eqI %d", c.Idx) }
func (c ForallIConst) String() string { return fmt.Sprintf("forallI %d", c.Idx) }
func (c ExistsIConst) String() string { return fmt.Sprintf("existsI %d", c.Idx) }

func eqSortOf(s Sort) Sort {
	return SortFunc{s, SortFunc{s, SortProp}}
}

func quantSortOf(s Sort) Sort {
	return SortFunc{SortFunc{s, SortProp}, SortProp}
}

func importSort(il []Sort, idx int) (Sort, error) {
	if idx < 0 || idx >= len(il) {
		return nil, fmt.Errorf("%w: import index %d out of range (table size %d)", ErrUnresolvedImport, idx, len(il))
	}
	return il[idx], nil
}

func (c EqConst) SortOf([]Sort) (Sort, error)     { return eqSortOf(c.Sort), nil }
func (c ForallConst) SortOf([]Sort) (Sort, error) { return quantSortOf(c.Sort), nil }
func (c ExistsConst) SortOf([]Sort) (Sort, error) { return quantSortOf(c.Sort), nil }

func (c EqIConst) SortOf(il []Sort) (Sort, error) {
	s, err := importSort(il, c.Idx)
	if err != nil {
		return nil, err
	}
	return eqSortOf(s), nil
}

func (c ForallIConst) SortOf(il []Sort) (Sort, error) {
	s, err := importSort(il, c.Idx)
	if err != nil {
		return nil, err
	}
	return quantSortOf(s), nil
}

func (c ExistsIConst) SortOf(il []Sort) (Sort, error) {
	s, err := importSort(il, c.Idx)
	if err != nil {
		return nil, err
	}
	return quantSortOf(s), nil
}
