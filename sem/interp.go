package sem

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/atomb/lean-auto/lam"
)

// Interp evaluates fully resolved, well-typed terms against a valuation.
type Interp struct {
	Env *lam.TyEnv
	Val *Valuation
}

func NewInterp(env *lam.TyEnv, val *Valuation) *Interp {
	return &Interp{Env: env, Val: val}
}

// Eval interprets t under a context assignment (ctx[i] is the value of
// bound variable i). The term must be resolved; import-form primitives
// fail with ErrUnresolvedImport.
func (ip *Interp) Eval(ctx []Value, t lam.Term) (Value, error) {
	switch t := t.(type) {
	case lam.Atom:
		if t.Idx < 0 || t.Idx >= len(ip.Val.AtomValues) {
			return nil, fmt.Errorf("%w: atom %d", ErrNoAtomValue, t.Idx)
		}
		return ip.Val.AtomValues[t.Idx], nil

	case lam.Etom:
		if t.Idx < 0 || t.Idx >= len(ip.Val.EtomValues) {
			return nil, fmt.Errorf("%w: etom %d", ErrNoAtomValue, t.Idx)
		}
		return ip.Val.EtomValues[t.Idx], nil

	case lam.BVar:
		if t.Idx < 0 || t.Idx >= len(ctx) {
			return nil, fmt.Errorf("loose bound variable !%d in context of length %d", t.Idx, len(ctx))
		}
		return ctx[t.Idx], nil

	case lam.Base:
		return ip.denote(t.Const)

	case lam.Abs:
		body := t.Body
		outer := ctx
		return FuncValue(func(v Value) (Value, error) {
			inner := append([]Value{v}, outer...)
			return ip.Eval(inner, body)
		}), nil

	case lam.App:
		fnVal, err := ip.Eval(ctx, t.Fn)
		if err != nil {
			return nil, err
		}
		argVal, err := ip.Eval(ctx, t.Arg)
		if err != nil {
			return nil, err
		}
		fn, ok := fnVal.(FuncValue)
		if !ok {
			return nil, fmt.Errorf("applying non-function value %v", fnVal)
		}
		return fn(argVal)

	default:
		return nil, fmt.Errorf("unknown term node %T", t)
	}
}

// EvalClosed interprets a closed term.
func (ip *Interp) EvalClosed(t lam.Term) (Value, error) {
	return ip.Eval(nil, t)
}

// Holds reports whether a closed proposition evaluates to true.
func (ip *Interp) Holds(t lam.Term) (bool, error) {
	v, err := ip.EvalClosed(t)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("proposition evaluated to non-boolean %T", v)
	}
	return b, nil
}

func curry2(f func(a, b Value) (Value, error)) Value {
	return FuncValue(func(a Value) (Value, error) {
		return FuncValue(func(b Value) (Value, error) {
			return f(a, b)
		}), nil
	})
}

func curry1(f func(a Value) (Value, error)) Value {
	return FuncValue(f)
}

func asBool(v Value) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool value, got %T", v)
	}
	return b, nil
}

func asBig(v Value) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected numeric value, got %T", v)
	}
	return n, nil
}

func asStr(v Value) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string value, got %T", v)
	}
	return s, nil
}

func asBV(v Value) (BitVec, error) {
	b, ok := v.(BitVec)
	if !ok {
		return BitVec{}, fmt.Errorf("expected bit-vector value, got %T", v)
	}
	return b, nil
}

func boolBin(f func(a, b bool) bool) Value {
	return curry2(func(a, b Value) (Value, error) {
		x, err := asBool(a)
		if err != nil {
			return nil, err
		}
		y, err := asBool(b)
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	})
}

func bigBin(f func(a, b *big.Int) Value) Value {
	return curry2(func(a, b Value) (Value, error) {
		x, err := asBig(a)
		if err != nil {
			return nil, err
		}
		y, err := asBig(b)
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	})
}

func strBin(f func(a, b string) Value) Value {
	return curry2(func(a, b Value) (Value, error) {
		x, err := asStr(a)
		if err != nil {
			return nil, err
		}
		y, err := asStr(b)
		if err != nil {
			return nil, err
		}
		return f(x, y), nil
	})
}

func bvBin(f func(a, b BitVec) Value) Value {
	return curry2(func(a, b Value) (Value, error) {
		x, err := asBV(a)
		if err != nil {
			return nil, err
		}
		y, err := asBV(b)
		if err != nil {
			return nil, err
		}
		if x.Width != y.Width {
			return nil, fmt.Errorf("bit-vector width mismatch: %d vs %d", x.Width, y.Width)
		}
		return f(x, y), nil
	})
}

// denote maps a constant to its fixed semantic operation.
func (ip *Interp) denote(c lam.BaseTerm) (Value, error) {
	switch c := c.(type) {
	case lam.PropConst:
		return denoteProp(c), nil
	case lam.BoolConst:
		return denoteBool(c), nil
	case lam.NatConst:
		return denoteNat(c), nil
	case lam.IntConst:
		return denoteInt(c), nil
	case lam.StrConst:
		return denoteStr(c), nil
	case lam.BVConst:
		return denoteBV(c), nil
	case lam.EqConst:
		ops, err := ip.Val.OpsFor(c.Sort)
		if err != nil {
			return nil, err
		}
		eq := ops.Eq
		return curry2(func(a, b Value) (Value, error) {
			return eq(a, b), nil
		}), nil
	case lam.ForallConst:
		ops, err := ip.Val.OpsFor(c.Sort)
		if err != nil {
			return nil, err
		}
		return quantValue(ops.Forall), nil
	case lam.ExistsConst:
		ops, err := ip.Val.OpsFor(c.Sort)
		if err != nil {
			return nil, err
		}
		return quantValue(ops.Exists), nil
	case lam.EqIConst, lam.ForallIConst, lam.ExistsIConst:
		return nil, fmt.Errorf("%w: %s reached interpretation", lam.ErrUnresolvedImport, c)
	default:
		return nil, fmt.Errorf("unknown constant %T", c)
	}
}

func quantValue(q func(Pred) (bool, error)) Value {
	return curry1(func(p Value) (Value, error) {
		fn, ok := p.(FuncValue)
		if !ok {
			return nil, fmt.Errorf("quantifier applied to non-function value %T", p)
		}
		return q(func(v Value) (bool, error) {
			out, err := fn(v)
			if err != nil {
				return false, err
			}
			return asBool(out)
		})
	})
}

func denoteProp(c lam.PropConst) Value {
	switch c.Op {
	case lam.PropTrue:
		return true
	case lam.PropFalse:
		return false
	case lam.PropNot:
		return curry1(func(a Value) (Value, error) {
			x, err := asBool(a)
			if err != nil {
				return nil, err
			}
			return !x, nil
		})
	case lam.PropAnd:
		return boolBin(func(a, b bool) bool { return a && b })
	case lam.PropOr:
		return boolBin(func(a, b bool) bool { return a || b })
	case lam.PropImp:
		return boolBin(func(a, b bool) bool { return !a || b })
	default:
		return boolBin(func(a, b bool) bool { return a == b })
	}
}

func denoteBool(c lam.BoolConst) Value {
	switch c.Op {
	case lam.BoolTrue:
		return true
	case lam.BoolFalse:
		return false
	case lam.BoolNot:
		return curry1(func(a Value) (Value, error) {
			x, err := asBool(a)
			if err != nil {
				return nil, err
			}
			return !x, nil
		})
	case lam.BoolAnd:
		return boolBin(func(a, b bool) bool { return a && b })
	default:
		return boolBin(func(a, b bool) bool { return a || b })
	}
}

func denoteNat(c lam.NatConst) Value {
	switch c.Op {
	case lam.NatLit:
		return new(big.Int).Set(c.V)
	case lam.NatAdd:
		return bigBin(func(a, b *big.Int) Value { return new(big.Int).Add(a, b) })
	case lam.NatSub:
		// Truncated subtraction: naturals never go below zero.
		return bigBin(func(a, b *big.Int) Value {
			if a.Cmp(b) <= 0 {
				return big.NewInt(0)
			}
			return new(big.Int).Sub(a, b)
		})
	case lam.NatMul:
		return bigBin(func(a, b *big.Int) Value { return new(big.Int).Mul(a, b) })
	case lam.NatDiv:
		return bigBin(func(a, b *big.Int) Value {
			if b.Sign() == 0 {
				return big.NewInt(0)
			}
			return new(big.Int).Quo(a, b)
		})
	case lam.NatMod:
		return bigBin(func(a, b *big.Int) Value {
			if b.Sign() == 0 {
				return new(big.Int).Set(a)
			}
			return new(big.Int).Rem(a, b)
		})
	case lam.NatLe:
		return bigBin(func(a, b *big.Int) Value { return a.Cmp(b) <= 0 })
	case lam.NatLt:
		return bigBin(func(a, b *big.Int) Value { return a.Cmp(b) < 0 })
	case lam.NatMax:
		return bigBin(func(a, b *big.Int) Value {
			if a.Cmp(b) >= 0 {
				return new(big.Int).Set(a)
			}
			return new(big.Int).Set(b)
		})
	default:
		return bigBin(func(a, b *big.Int) Value {
			if a.Cmp(b) <= 0 {
				return new(big.Int).Set(a)
			}
			return new(big.Int).Set(b)
		})
	}
}

func denoteInt(c lam.IntConst) Value {
	switch c.Op {
	case lam.IntLit:
		return new(big.Int).Set(c.V)
	case lam.IntNeg:
		return curry1(func(a Value) (Value, error) {
			x, err := asBig(a)
			if err != nil {
				return nil, err
			}
			return new(big.Int).Neg(x), nil
		})
	case lam.IntAbs:
		return curry1(func(a Value) (Value, error) {
			x, err := asBig(a)
			if err != nil {
				return nil, err
			}
			return new(big.Int).Abs(x), nil
		})
	case lam.IntAdd:
		return bigBin(func(a, b *big.Int) Value { return new(big.Int).Add(a, b) })
	case lam.IntSub:
		return bigBin(func(a, b *big.Int) Value { return new(big.Int).Sub(a, b) })
	case lam.IntMul:
		return bigBin(func(a, b *big.Int) Value { return new(big.Int).Mul(a, b) })
	case lam.IntDiv:
		// Division truncates toward zero; division by zero yields zero.
		return bigBin(func(a, b *big.Int) Value {
			if b.Sign() == 0 {
				return big.NewInt(0)
			}
			return new(big.Int).Quo(a, b)
		})
	case lam.IntMod:
		return bigBin(func(a, b *big.Int) Value {
			if b.Sign() == 0 {
				return new(big.Int).Set(a)
			}
			return new(big.Int).Rem(a, b)
		})
	case lam.IntLe:
		return bigBin(func(a, b *big.Int) Value { return a.Cmp(b) <= 0 })
	case lam.IntLt:
		return bigBin(func(a, b *big.Int) Value { return a.Cmp(b) < 0 })
	case lam.IntMax:
		return bigBin(func(a, b *big.Int) Value {
			if a.Cmp(b) >= 0 {
				return new(big.Int).Set(a)
			}
			return new(big.Int).Set(b)
		})
	default:
		return bigBin(func(a, b *big.Int) Value {
			if a.Cmp(b) <= 0 {
				return new(big.Int).Set(a)
			}
			return new(big.Int).Set(b)
		})
	}
}

func denoteStr(c lam.StrConst) Value {
	switch c.Op {
	case lam.StrLit:
		return c.V
	case lam.StrApp:
		return strBin(func(a, b string) Value { return a + b })
	case lam.StrLe:
		return strBin(func(a, b string) Value { return a <= b })
	case lam.StrLt:
		return strBin(func(a, b string) Value { return a < b })
	case lam.StrPrefixOf:
		return strBin(func(a, b string) Value { return strings.HasPrefix(b, a) })
	default:
		return curry1(func(a Value) (Value, error) {
			s, err := asStr(a)
			if err != nil {
				return nil, err
			}
			return big.NewInt(int64(len(s))), nil
		})
	}
}

func denoteBV(c lam.BVConst) Value {
	switch c.Op {
	case lam.BVLit:
		return BitVec{Width: c.Width, Bits: new(big.Int).Set(c.Bits)}
	case lam.BVNeg:
		return curry1(func(a Value) (Value, error) {
			x, err := asBV(a)
			if err != nil {
				return nil, err
			}
			return bvWrap(x.Width, new(big.Int).Neg(x.Bits)), nil
		})
	case lam.BVAdd:
		return bvBin(func(a, b BitVec) Value { return bvWrap(a.Width, new(big.Int).Add(a.Bits, b.Bits)) })
	case lam.BVSub:
		return bvBin(func(a, b BitVec) Value { return bvWrap(a.Width, new(big.Int).Sub(a.Bits, b.Bits)) })
	case lam.BVAnd:
		return bvBin(func(a, b BitVec) Value { return BitVec{a.Width, new(big.Int).And(a.Bits, b.Bits)} })
	case lam.BVOr:
		return bvBin(func(a, b BitVec) Value { return BitVec{a.Width, new(big.Int).Or(a.Bits, b.Bits)} })
	case lam.BVXor:
		return bvBin(func(a, b BitVec) Value { return BitVec{a.Width, new(big.Int).Xor(a.Bits, b.Bits)} })
	case lam.BVUlt:
		return bvBin(func(a, b BitVec) Value { return a.Bits.Cmp(b.Bits) < 0 })
	default:
		return bvBin(func(a, b BitVec) Value { return a.Bits.Cmp(b.Bits) <= 0 })
	}
}
