// Package trace serializes derivations (atom tables, external
// assertions, checking steps and goals) as dense-position-keyed JSON,
// and replays them into checker sessions. It is the wire format between
// the reifier, the checker core and the certificate compiler.
package trace

import (
	"fmt"
	"math/big"
	"slices"

	"github.com/atomb/lean-auto/checker"
	"github.com/atomb/lean-auto/lam"
)

// sortNode is the JSON form of a sort.
type sortNode struct {
	K     string    `json:"k"` // "atom" | "base" | "func"
	Idx   int       `json:"idx,omitempty"`
	Base  string    `json:"base,omitempty"`
	Width int       `json:"width,omitempty"`
	Dom   *sortNode `json:"dom,omitempty"`
	Cod   *sortNode `json:"cod,omitempty"`
}

var baseSortNames = map[lam.BaseKind]string{
	lam.KindProp:   "prop",
	lam.KindBool:   "bool",
	lam.KindNat:    "nat",
	lam.KindInt:    "int",
	lam.KindStr:    "str",
	lam.KindReal:   "real",
	lam.KindBitVec: "bv",
}

func encodeSort(s lam.Sort) *sortNode {
	switch s := s.(type) {
	case lam.SortAtom:
		return &sortNode{K: "atom", Idx: s.Idx}
	case lam.SortBase:
		return &sortNode{K: "base", Base: baseSortNames[s.Kind], Width: s.Width}
	case lam.SortFunc:
		return &sortNode{K: "func", Dom: encodeSort(s.Dom), Cod: encodeSort(s.Cod)}
	default:
		panic(fmt.Sprintf("unknown sort node %T", s))
	}
}

func decodeSort(n *sortNode) (lam.Sort, error) {
	if n == nil {
		return nil, fmt.Errorf("missing sort node")
	}
	switch n.K {
	case "atom":
		return lam.SortAtom{Idx: n.Idx}, nil
	case "base":
		for kind, name := range baseSortNames {
			if name == n.Base {
				return lam.SortBase{Kind: kind, Width: n.Width}, nil
			}
		}
		return nil, fmt.Errorf("unknown base sort %q", n.Base)
	case "func":
		dom, err := decodeSort(n.Dom)
		if err != nil {
			return nil, err
		}
		cod, err := decodeSort(n.Cod)
		if err != nil {
			return nil, err
		}
		return lam.SortFunc{Dom: dom, Cod: cod}, nil
	default:
		return nil, fmt.Errorf("unknown sort kind %q", n.K)
	}
}

func encodeSorts(sorts []lam.Sort) []*sortNode {
	out := make([]*sortNode, len(sorts))
	for i, s := range sorts {
		out[i] = encodeSort(s)
	}
	return out
}

func decodeSorts(nodes []*sortNode) ([]lam.Sort, error) {
	out := make([]lam.Sort, len(nodes))
	for i, n := range nodes {
		s, err := decodeSort(n)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// constNode is the JSON form of an interpreted constant. Fam selects
// the family, Op the operator within it.
type constNode struct {
	Fam   string    `json:"fam"`
	Op    string    `json:"op,omitempty"`
	Num   string    `json:"num,omitempty"` // decimal literal for nat/int/bv
	Str   string    `json:"str,omitempty"`
	Width int       `json:"width,omitempty"`
	Idx   int       `json:"idx,omitempty"`
	Sort  *sortNode `json:"sort,omitempty"`
}

var (
	propOpNames = []string{"true", "false", "not", "and", "or", "imp", "iff"}
	boolOpNames = []string{"trueb", "falseb", "notb", "andb", "orb"}
	natOpNames  = []string{"natVal", "nadd", "nsub", "nmul", "ndiv", "nmod", "nle", "nlt", "nmax", "nmin"}
	intOpNames  = []string{"intVal", "ineg", "iabs", "iadd", "isub", "imul", "idiv", "imod", "ile", "ilt", "imax", "imin"}
	strOpNames  = []string{"strVal", "sapp", "sle", "slt", "sprefixof", "slength"}
	bvOpNames   = []string{"bvVal", "bvneg", "bvadd", "bvsub", "bvand", "bvor", "bvxor", "bvult", "bvule"}
)

func opIndex(fam string, names []string, op string) (int, error) {
	idx := slices.Index(names, op)
	if idx < 0 {
		return 0, fmt.Errorf("unknown %s operator %q", fam, op)
	}
	return idx, nil
}

func encodeConst(c lam.BaseTerm) *constNode {
	switch c := c.(type) {
	case lam.PropConst:
		return &constNode{Fam: "prop", Op: propOpNames[c.Op]}
	case lam.BoolConst:
		return &constNode{Fam: "bool", Op: boolOpNames[c.Op]}
	case lam.NatConst:
		n := &constNode{Fam: "nat", Op: natOpNames[c.Op]}
		if c.Op == lam.NatLit {
			n.Num = c.V.String()
		}
		return n
	case lam.IntConst:
		n := &constNode{Fam: "int", Op: intOpNames[c.Op]}
		if c.Op == lam.IntLit {
			n.Num = c.V.String()
		}
		return n
	case lam.StrConst:
		n := &constNode{Fam: "str", Op: strOpNames[c.Op]}
		if c.Op == lam.StrLit {
			n.Str = c.V
		}
		return n
	case lam.BVConst:
		n := &constNode{Fam: "bv", Op: bvOpNames[c.Op], Width: c.Width}
		if c.Op == lam.BVLit {
			n.Num = c.Bits.String()
		}
		return n
	case lam.EqConst:
		return &constNode{Fam: "eq", Sort: encodeSort(c.Sort)}
	case lam.ForallConst:
		return &constNode{Fam: "forall", Sort: encodeSort(c.Sort)}
	case lam.ExistsConst:
		return &constNode{Fam: "exists", Sort: encodeSort(c.Sort)}
	case lam.EqIConst:
		return &constNode{Fam: "eqI", Idx: c.Idx}
	case lam.ForallIConst:
		return &constNode{Fam: "forallI", Idx: c.Idx}
	case lam.ExistsIConst:
		return &constNode{Fam: "existsI", Idx: c.Idx}
	default:
		panic(fmt.Sprintf("unknown constant %T", c))
	}
}

func parseNum(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed numeric literal %q", s)
	}
	return n, nil
}

func decodeConst(n *constNode) (lam.BaseTerm, error) {
	if n == nil {
		return nil, fmt.Errorf("missing constant node")
	}
	switch n.Fam {
	case "prop":
		op, err := opIndex("prop", propOpNames, n.Op)
		if err != nil {
			return nil, err
		}
		return lam.PropConst{Op: lam.PropOp(op)}, nil
	case "bool":
		op, err := opIndex("bool", boolOpNames, n.Op)
		if err != nil {
			return nil, err
		}
		return lam.BoolConst{Op: lam.BoolOp(op)}, nil
	case "nat":
		op, err := opIndex("nat", natOpNames, n.Op)
		if err != nil {
			return nil, err
		}
		c := lam.NatConst{Op: lam.NatOp(op)}
		if c.Op == lam.NatLit {
			if c.V, err = parseNum(n.Num); err != nil {
				return nil, err
			}
			if c.V.Sign() < 0 {
				return nil, fmt.Errorf("negative natural literal %s", c.V)
			}
		}
		return c, nil
	case "int":
		op, err := opIndex("int", intOpNames, n.Op)
		if err != nil {
			return nil, err
		}
		c := lam.IntConst{Op: lam.IntOp(op)}
		if c.Op == lam.IntLit {
			if c.V, err = parseNum(n.Num); err != nil {
				return nil, err
			}
		}
		return c, nil
	case "str":
		op, err := opIndex("str", strOpNames, n.Op)
		if err != nil {
			return nil, err
		}
		c := lam.StrConst{Op: lam.StrOp(op)}
		if c.Op == lam.StrLit {
			c.V = n.Str
		}
		return c, nil
	case "bv":
		op, err := opIndex("bv", bvOpNames, n.Op)
		if err != nil {
			return nil, err
		}
		c := lam.BVConst{Op: lam.BVOp(op), Width: n.Width}
		if c.Op == lam.BVLit {
			bits, err := parseNum(n.Num)
			if err != nil {
				return nil, err
			}
			c = lam.BVValOf(n.Width, bits)
		}
		return c, nil
	case "eq", "forall", "exists":
		sort, err := decodeSort(n.Sort)
		if err != nil {
			return nil, err
		}
		switch n.Fam {
		case "eq":
			return lam.EqConst{Sort: sort}, nil
		case "forall":
			return lam.ForallConst{Sort: sort}, nil
		default:
			return lam.ExistsConst{Sort: sort}, nil
		}
	case "eqI":
		return lam.EqIConst{Idx: n.Idx}, nil
	case "forallI":
		return lam.ForallIConst{Idx: n.Idx}, nil
	case "existsI":
		return lam.ExistsIConst{Idx: n.Idx}, nil
	default:
		return nil, fmt.Errorf("unknown constant family %q", n.Fam)
	}
}

// termNode is the JSON form of a term.
type termNode struct {
	K     string     `json:"k"` // "atom" | "etom" | "bvar" | "base" | "abs" | "app"
	Idx   int        `json:"idx,omitempty"`
	Const *constNode `json:"const,omitempty"`
	Sort  *sortNode  `json:"sort,omitempty"` // abs binder sort / app argument sort
	Body  *termNode  `json:"body,omitempty"`
	Fn    *termNode  `json:"fn,omitempty"`
	Arg   *termNode  `json:"arg,omitempty"`
}

func encodeTerm(t lam.Term) *termNode {
	switch t := t.(type) {
	case lam.Atom:
		return &termNode{K: "atom", Idx: t.Idx}
	case lam.Etom:
		return &termNode{K: "etom", Idx: t.Idx}
	case lam.BVar:
		return &termNode{K: "bvar", Idx: t.Idx}
	case lam.Base:
		return &termNode{K: "base", Const: encodeConst(t.Const)}
	case lam.Abs:
		return &termNode{K: "abs", Sort: encodeSort(t.Sort), Body: encodeTerm(t.Body)}
	case lam.App:
		return &termNode{K: "app", Sort: encodeSort(t.ArgSort), Fn: encodeTerm(t.Fn), Arg: encodeTerm(t.Arg)}
	default:
		panic(fmt.Sprintf("unknown term node %T", t))
	}
}

func decodeTerm(n *termNode) (lam.Term, error) {
	if n == nil {
		return nil, fmt.Errorf("missing term node")
	}
	switch n.K {
	case "atom":
		return lam.Atom{Idx: n.Idx}, nil
	case "etom":
		return lam.Etom{Idx: n.Idx}, nil
	case "bvar":
		return lam.BVar{Idx: n.Idx}, nil
	case "base":
		c, err := decodeConst(n.Const)
		if err != nil {
			return nil, err
		}
		return lam.Base{Const: c}, nil
	case "abs":
		sort, err := decodeSort(n.Sort)
		if err != nil {
			return nil, err
		}
		body, err := decodeTerm(n.Body)
		if err != nil {
			return nil, err
		}
		return lam.Abs{Sort: sort, Body: body}, nil
	case "app":
		sort, err := decodeSort(n.Sort)
		if err != nil {
			return nil, err
		}
		fn, err := decodeTerm(n.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := decodeTerm(n.Arg)
		if err != nil {
			return nil, err
		}
		return lam.App{ArgSort: sort, Fn: fn, Arg: arg}, nil
	default:
		return nil, fmt.Errorf("unknown term kind %q", n.K)
	}
}

func encodeTerms(ts []lam.Term) []*termNode {
	out := make([]*termNode, len(ts))
	for i, t := range ts {
		out[i] = encodeTerm(t)
	}
	return out
}

func decodeTerms(nodes []*termNode) ([]lam.Term, error) {
	out := make([]lam.Term, len(nodes))
	for i, n := range nodes {
		t, err := decodeTerm(n)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// stepNode is the JSON form of a checking step; K matches Step.Kind().
type stepNode struct {
	K         string      `json:"k"`
	Pos       int         `json:"pos,omitempty"`
	N         int         `json:"n,omitempty"`
	Bound     int         `json:"bound,omitempty"`
	Poss      []int       `json:"poss,omitempty"`
	Ctx       []*sortNode `json:"ctx,omitempty"`
	Term      *termNode   `json:"term,omitempty"`
	Terms     []*termNode `json:"terms,omitempty"`
	Sort      *sortNode   `json:"sort,omitempty"`
	SecondPos int         `json:"pos2,omitempty"`
}

func encodeStep(st checker.Step) (*stepNode, error) {
	switch st := st.(type) {
	case checker.StepWF:
		return &stepNode{K: st.Kind(), Ctx: encodeSorts(st.Ctx), Term: encodeTerm(st.Term)}, nil
	case checker.StepIntroN:
		return &stepNode{K: st.Kind(), Pos: st.Pos, N: st.N}, nil
	case checker.StepRevertN:
		return &stepNode{K: st.Kind(), Pos: st.Pos, N: st.N}, nil
	case checker.StepBetaBounded:
		return &stepNode{K: st.Kind(), Pos: st.Pos, Bound: st.Bound}, nil
	case checker.StepHeadBeta:
		return &stepNode{K: st.Kind(), Pos: st.Pos}, nil
	case checker.StepExtensionalize:
		return &stepNode{K: st.Kind(), Pos: st.Pos}, nil
	case checker.StepMP:
		return &stepNode{K: st.Kind(), Pos: st.ImpPos, SecondPos: st.HypPos}, nil
	case checker.StepMPN:
		return &stepNode{K: st.Kind(), Pos: st.ImpPos, Poss: st.HypPoss}, nil
	case checker.StepInstN:
		return &stepNode{K: st.Kind(), Pos: st.Pos, Terms: encodeTerms(st.Witnesses)}, nil
	case checker.StepInstRev:
		return &stepNode{K: st.Kind(), Pos: st.Pos, Terms: encodeTerms(st.Witnesses)}, nil
	case checker.StepCongrArg:
		return &stepNode{K: st.Kind(), Pos: st.EqPos, Term: encodeTerm(st.Fn)}, nil
	case checker.StepCongrFun:
		return &stepNode{K: st.Kind(), Pos: st.EqPos, Term: encodeTerm(st.Arg)}, nil
	case checker.StepCongr:
		return &stepNode{K: st.Kind(), Pos: st.FnEqPos, SecondPos: st.ArgEqPos}, nil
	case checker.StepCongrN:
		return &stepNode{K: st.Kind(), Pos: st.FnEqPos, Poss: st.ArgEqPoss}, nil
	case checker.StepSkolemize:
		return &stepNode{K: st.Kind(), Pos: st.Pos}, nil
	case checker.StepDefine:
		return &stepNode{K: st.Kind(), Term: encodeTerm(st.Term)}, nil
	case checker.StepNonEmpty:
		return &stepNode{K: st.Kind(), Sort: encodeSort(st.Sort), Term: encodeTerm(st.Witness)}, nil
	default:
		return nil, fmt.Errorf("unknown step kind %T", st)
	}
}

func decodeStep(n *stepNode) (checker.Step, error) {
	if n == nil {
		return nil, fmt.Errorf("missing step node")
	}
	switch n.K {
	case "wf":
		ctx, err := decodeSorts(n.Ctx)
		if err != nil {
			return nil, err
		}
		term, err := decodeTerm(n.Term)
		if err != nil {
			return nil, err
		}
		return checker.StepWF{Ctx: ctx, Term: term}, nil
	case "intro":
		return checker.StepIntroN{Pos: n.Pos, N: n.N}, nil
	case "revert":
		return checker.StepRevertN{Pos: n.Pos, N: n.N}, nil
	case "beta":
		return checker.StepBetaBounded{Pos: n.Pos, Bound: n.Bound}, nil
	case "headBeta":
		return checker.StepHeadBeta{Pos: n.Pos}, nil
	case "ext":
		return checker.StepExtensionalize{Pos: n.Pos}, nil
	case "mp":
		return checker.StepMP{ImpPos: n.Pos, HypPos: n.SecondPos}, nil
	case "mpn":
		return checker.StepMPN{ImpPos: n.Pos, HypPoss: n.Poss}, nil
	case "inst", "instRev":
		ws, err := decodeTerms(n.Terms)
		if err != nil {
			return nil, err
		}
		if n.K == "inst" {
			return checker.StepInstN{Pos: n.Pos, Witnesses: ws}, nil
		}
		return checker.StepInstRev{Pos: n.Pos, Witnesses: ws}, nil
	case "congrArg":
		fn, err := decodeTerm(n.Term)
		if err != nil {
			return nil, err
		}
		return checker.StepCongrArg{EqPos: n.Pos, Fn: fn}, nil
	case "congrFun":
		arg, err := decodeTerm(n.Term)
		if err != nil {
			return nil, err
		}
		return checker.StepCongrFun{EqPos: n.Pos, Arg: arg}, nil
	case "congr":
		return checker.StepCongr{FnEqPos: n.Pos, ArgEqPos: n.SecondPos}, nil
	case "congrN":
		return checker.StepCongrN{FnEqPos: n.Pos, ArgEqPoss: n.Poss}, nil
	case "skolem":
		return checker.StepSkolemize{Pos: n.Pos}, nil
	case "define":
		term, err := decodeTerm(n.Term)
		if err != nil {
			return nil, err
		}
		return checker.StepDefine{Term: term}, nil
	case "nonempty":
		sort, err := decodeSort(n.Sort)
		if err != nil {
			return nil, err
		}
		witness, err := decodeTerm(n.Term)
		if err != nil {
			return nil, err
		}
		return checker.StepNonEmpty{Sort: sort, Witness: witness}, nil
	default:
		return nil, fmt.Errorf("unknown step kind %q", n.K)
	}
}
