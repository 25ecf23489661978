// Package sem gives the calculus its denotational semantics: well-typed
// resolved terms are interpreted into host values, with function sorts
// mapping to genuine Go functions and quantification routed through
// per-sort capability bundles supplied by the reifier's valuation.
package sem

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrNoQuantCapability = errors.New("no quantification capability for sort")
	ErrNoAtomValue       = errors.New("valuation has no value for atom")
	ErrBadWidth          = errors.New("bit-vector value does not fit declared width")
)

// Value is a semantic value. Base sorts use their natural host
// representations: Prop/Bool -> bool, Nat/Int -> *big.Int (Nat always
// non-negative), String -> string, Real -> float64, BitVec -> BitVec,
// function sorts -> FuncValue.
type Value any

// FuncValue is the denotation of a function-sorted term.
type FuncValue func(Value) (Value, error)

// BitVec is a bit-vector value. Bits always satisfies
// 0 <= Bits < 2^Width; the invariant is established at construction and
// never re-checked.
type BitVec struct {
	Width int
	Bits  *big.Int
}

// NewBitVec builds a BitVec, rejecting values outside the width.
func NewBitVec(width int, bits *big.Int) (BitVec, error) {
	if width < 0 || bits.Sign() < 0 || bits.BitLen() > width {
		return BitVec{}, fmt.Errorf("%w: %s in %d bits", ErrBadWidth, bits, width)
	}
	return BitVec{Width: width, Bits: new(big.Int).Set(bits)}, nil
}

// bvWrap reduces an arithmetic result modulo 2^width. Construction via
// NewBitVec would re-check an invariant that holds here by arithmetic.
func bvWrap(width int, bits *big.Int) BitVec {
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return BitVec{Width: width, Bits: bits.Mod(bits, m)}
}

func (b BitVec) String() string {
	return fmt.Sprintf("0x%s:%d", b.Bits.Text(16), b.Width)
}
