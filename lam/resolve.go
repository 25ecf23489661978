package lam

import (
	"fmt"
)

// ResolveBase rewrites an import-form equality/quantifier constant to
// its resolved form using the import side table. Resolved constants and
// constants outside the two families pass through unchanged, which makes
// the pass idempotent.
func ResolveBase(ilTable []Sort, c BaseTerm) (BaseTerm, error) {
	switch c := c.(type) {
	case EqIConst:
		s, err := importSort(ilTable, c.Idx)
		if err != nil {
			return nil, err
		}
		return EqConst{s}, nil
	case ForallIConst:
		s, err := importSort(ilTable, c.Idx)
		if err != nil {
			return nil, err
		}
		return ForallConst{s}, nil
	case ExistsIConst:
		s, err := importSort(ilTable, c.Idx)
		if err != nil {
			return nil, err
		}
		return ExistsConst{s}, nil
	default:
		return c, nil
	}
}

// Resolve rewrites every import-form primitive in t to its resolved
// form. The pass is pure and idempotent, touches no binder structure,
// and therefore preserves Size, MaxLooseBVarSucc and MaxEVarSucc
// exactly. It is required before a term is interpreted or exported.
func Resolve(ilTable []Sort, t Term) (Term, error) {
	switch t := t.(type) {
	case Base:
		c, err := ResolveBase(ilTable, t.Const)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", t, err)
		}
		return Base{c}, nil
	case Abs:
		body, err := Resolve(ilTable, t.Body)
		if err != nil {
			return nil, err
		}
		return Abs{t.Sort, body}, nil
	case App:
		fn, err := Resolve(ilTable, t.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := Resolve(ilTable, t.Arg)
		if err != nil {
			return nil, err
		}
		return App{t.ArgSort, fn, arg}, nil
	default:
		return t, nil
	}
}

// IsResolved reports whether t contains no import-form primitives.
func IsResolved(t Term) bool {
	switch t := t.(type) {
	case Base:
		switch t.Const.(type) {
		case EqIConst, ForallIConst, ExistsIConst:
			return false
		}
		return true
	case Abs:
		return IsResolved(t.Body)
	case App:
		return IsResolved(t.Fn) && IsResolved(t.Arg)
	default:
		return true
	}
}
