package sem

import (
	"fmt"
	"math/big"

	"github.com/atomb/lean-auto/lam"
)

// Pred is a semantic predicate over one sort's representation.
type Pred func(Value) (bool, error)

// SortOps is the capability bundle for one sort's representation:
// a decidable equality test and the two quantifiers. A bundle is
// supplied once per distinct sort that is ever quantified over, not
// reconstructed per occurrence.
type SortOps struct {
	Eq     func(a, b Value) bool
	Forall func(pred Pred) (bool, error)
	Exists func(pred Pred) (bool, error)
}

// Domain describes one sort-atom's semantic domain: a non-emptiness
// witness plus its capability bundle.
type Domain struct {
	Default Value
	Ops     SortOps
}

// Valuation is the reifier-owned assignment of concrete values to sort
// atoms, term atoms and etoms. The checker never constructs one.
type Valuation struct {
	SortDomains map[int]Domain
	AtomValues  []Value
	EtomValues  []Value

	// BaseOps optionally overrides the built-in bundle of a base sort
	// (keyed by Sort.String()), e.g. to give Nat a bounded evaluator
	// for quantifiers.
	BaseOps map[string]SortOps
}

// enumOps builds a bundle for a finite domain by exhaustive enumeration.
func enumOps(eq func(a, b Value) bool, elems func(yield func(Value) error) error) SortOps {
	return SortOps{
		Eq: eq,
		Forall: func(pred Pred) (bool, error) {
			all := true
			err := elems(func(v Value) error {
				ok, err := pred(v)
				if err != nil {
					return err
				}
				all = all && ok
				return nil
			})
			return all, err
		},
		Exists: func(pred Pred) (bool, error) {
			any := false
			err := elems(func(v Value) error {
				ok, err := pred(v)
				if err != nil {
					return err
				}
				any = any || ok
				return nil
			})
			return any, err
		},
	}
}

func boolElems(yield func(Value) error) error {
	if err := yield(false); err != nil {
		return err
	}
	return yield(true)
}

// maxEnumWidth bounds exhaustive bit-vector quantification.
const maxEnumWidth = 16

func bvElems(width int) func(yield func(Value) error) error {
	return func(yield func(Value) error) error {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(width))
		for i := big.NewInt(0); i.Cmp(limit) < 0; i = new(big.Int).Add(i, big.NewInt(1)) {
			if err := yield(BitVec{Width: width, Bits: new(big.Int).Set(i)}); err != nil {
				return err
			}
		}
		return nil
	}
}

func eqOnly(eq func(a, b Value) bool, s lam.Sort) SortOps {
	noQuant := func(Pred) (bool, error) {
		return false, fmt.Errorf("%w: %s", ErrNoQuantCapability, s)
	}
	return SortOps{Eq: eq, Forall: noQuant, Exists: noQuant}
}

func bigEq(a, b Value) bool {
	x, ok := a.(*big.Int)
	y, ok2 := b.(*big.Int)
	return ok && ok2 && x.Cmp(y) == 0
}

// OpsFor resolves the capability bundle for a sort. Finite base sorts
// (Prop, Bool, narrow BitVec) get built-in enumerating bundles; infinite
// base sorts get equality only unless overridden; sort atoms must be
// covered by the valuation's domains; function sorts have no decidable
// bundle.
func (v *Valuation) OpsFor(s lam.Sort) (SortOps, error) {
	if v.BaseOps != nil {
		if ops, ok := v.BaseOps[s.String()]; ok {
			return ops, nil
		}
	}
	switch s := s.(type) {
	case lam.SortAtom:
		dom, ok := v.SortDomains[s.Idx]
		if !ok {
			return SortOps{}, fmt.Errorf("%w: sort atom #%d", ErrNoQuantCapability, s.Idx)
		}
		return dom.Ops, nil
	case lam.SortBase:
		switch s.Kind {
		case lam.KindProp, lam.KindBool:
			return enumOps(func(a, b Value) bool { return a == b }, boolElems), nil
		case lam.KindNat, lam.KindInt:
			return eqOnly(bigEq, s), nil
		case lam.KindStr, lam.KindReal:
			return eqOnly(func(a, b Value) bool { return a == b }, s), nil
		case lam.KindBitVec:
			eq := func(a, b Value) bool {
				x, ok := a.(BitVec)
				y, ok2 := b.(BitVec)
				return ok && ok2 && x.Width == y.Width && x.Bits.Cmp(y.Bits) == 0
			}
			if s.Width <= maxEnumWidth {
				return enumOps(eq, bvElems(s.Width)), nil
			}
			return eqOnly(eq, s), nil
		}
	}
	return SortOps{}, fmt.Errorf("%w: %s", ErrNoQuantCapability, s)
}
