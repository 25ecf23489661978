package lam

import (
	"fmt"
)

// TyEnv holds the session-wide sort tables the checker resolves atoms,
// import-form primitives and etoms through. All three grow append-only
// during a reification session.
type TyEnv struct {
	AtomSorts   []Sort
	ImportSorts []Sort
	EtomSorts   []Sort
}

// Check infers the unique sort of t under the typing context lctx
// (lctx[i] is the sort of bound variable i, innermost binder first).
// It is syntax-directed; every failure wraps ErrIllTyped.
func (env *TyEnv) Check(lctx []Sort, t Term) (Sort, error) {
	switch t := t.(type) {
	case Atom:
		if t.Idx < 0 || t.Idx >= len(env.AtomSorts) {
			return nil, fmt.Errorf("%w: atom %d outside table of size %d", ErrIllTyped, t.Idx, len(env.AtomSorts))
		}
		return env.AtomSorts[t.Idx], nil

	case Etom:
		if t.Idx < 0 || t.Idx >= len(env.EtomSorts) {
			return nil, fmt.Errorf("%w: etom %d outside table of size %d", ErrIllTyped, t.Idx, len(env.EtomSorts))
		}
		return env.EtomSorts[t.Idx], nil

	case Base:
		s, err := t.Const.SortOf(env.ImportSorts)
		if err != nil {
			return nil, fmt.Errorf("%w: constant %s: %w", ErrIllTyped, t.Const, err)
		}
		return s, nil

	case BVar:
		if t.Idx < 0 || t.Idx >= len(lctx) {
			return nil, fmt.Errorf("%w: bound variable !%d outside context %s", ErrIllTyped, t.Idx, CtxString(lctx))
		}
		return lctx[t.Idx], nil

	case Abs:
		inner := append([]Sort{t.Sort}, lctx...)
		body, err := env.Check(inner, t.Body)
		if err != nil {
			return nil, err
		}
		return SortFunc{t.Sort, body}, nil

	case App:
		fnSort, err := env.Check(lctx, t.Fn)
		if err != nil {
			return nil, err
		}
		argSort, err := env.Check(lctx, t.Arg)
		if err != nil {
			return nil, err
		}
		fn, ok := fnSort.(SortFunc)
		if !ok {
			return nil, fmt.Errorf("%w: applying non-function %s of sort %s", ErrIllTyped, t.Fn, fnSort)
		}
		// The annotation is a redundant witness; it must agree with the
		// inferred argument sort, and both with the domain.
		if !fn.Dom.Equal(argSort) {
			return nil, fmt.Errorf("%w: %s expects %s, argument %s has sort %s", ErrIllTyped, t.Fn, fn.Dom, t.Arg, argSort)
		}
		if !t.ArgSort.Equal(argSort) {
			return nil, fmt.Errorf("%w: application annotated %s but argument %s has sort %s", ErrIllTyped, t.ArgSort, t.Arg, argSort)
		}
		return fn.Cod, nil

	default:
		return nil, fmt.Errorf("%w: unknown term node %T", ErrIllTyped, t)
	}
}

// CheckClosed infers the sort of t under the empty context.
func (env *TyEnv) CheckClosed(t Term) (Sort, error) {
	return env.Check(nil, t)
}

// WellScoped reports whether t fits a context of length ctxLen and the
// env's etom table.
func (env *TyEnv) WellScoped(ctxLen int, t Term) bool {
	return t.MaxLooseBVarSucc() <= ctxLen && t.MaxEVarSucc() <= len(env.EtomSorts)
}
