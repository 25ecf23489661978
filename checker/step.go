package checker

import (
	"fmt"

	"github.com/atomb/lean-auto/lam"
)

// Step is one instruction of the checker's fixed instruction set. A step
// evaluates against the current session state and yields exactly one
// outcome: a failure (error), an entry to append, or a fresh etom
// together with a validity entry about it. Steps reference prior entries
// by table position only.
type Step interface {
	Kind() string
	// Refs lists the table positions the step consumes, for backward
	// reachability.
	Refs() []int
	apply(s *Session) (stepEffect, error)
	remap(r *remapper) Step
}

// --- shape matching helpers ---

// matchForall decomposes `forall[s] pred`, accepting both resolved and
// import-form quantifier heads.
func (s *Session) matchForall(t lam.Term) (sort lam.Sort, pred lam.Term, ok bool) {
	app, isApp := t.(lam.App)
	if !isApp {
		return nil, nil, false
	}
	base, isBase := app.Fn.(lam.Base)
	if !isBase {
		return nil, nil, false
	}
	switch c := base.Const.(type) {
	case lam.ForallConst:
		return c.Sort, app.Arg, true
	case lam.ForallIConst:
		if c.Idx < 0 || c.Idx >= len(s.Env.ImportSorts) {
			return nil, nil, false
		}
		return s.Env.ImportSorts[c.Idx], app.Arg, true
	}
	return nil, nil, false
}

// matchExists decomposes `exists[s] pred`.
func (s *Session) matchExists(t lam.Term) (sort lam.Sort, pred lam.Term, ok bool) {
	app, isApp := t.(lam.App)
	if !isApp {
		return nil, nil, false
	}
	base, isBase := app.Fn.(lam.Base)
	if !isBase {
		return nil, nil, false
	}
	switch c := base.Const.(type) {
	case lam.ExistsConst:
		return c.Sort, app.Arg, true
	case lam.ExistsIConst:
		if c.Idx < 0 || c.Idx >= len(s.Env.ImportSorts) {
			return nil, nil, false
		}
		return s.Env.ImportSorts[c.Idx], app.Arg, true
	}
	return nil, nil, false
}

// matchEq decomposes `eq[s] lhs rhs`.
func (s *Session) matchEq(t lam.Term) (sort lam.Sort, lhs, rhs lam.Term, ok bool) {
	fn, args, hasArgs := lam.AppArgsN(2, t)
	if !hasArgs {
		return nil, nil, nil, false
	}
	base, isBase := fn.(lam.Base)
	if !isBase {
		return nil, nil, nil, false
	}
	switch c := base.Const.(type) {
	case lam.EqConst:
		return c.Sort, args[0].Term, args[1].Term, true
	case lam.EqIConst:
		if c.Idx < 0 || c.Idx >= len(s.Env.ImportSorts) {
			return nil, nil, nil, false
		}
		return s.Env.ImportSorts[c.Idx], args[0].Term, args[1].Term, true
	}
	return nil, nil, nil, false
}

// matchImp decomposes `imp hyp concl`.
func matchImp(t lam.Term) (hyp, concl lam.Term, ok bool) {
	fn, args, hasArgs := lam.AppArgsN(2, t)
	if !hasArgs {
		return nil, nil, false
	}
	base, isBase := fn.(lam.Base)
	if !isBase {
		return nil, nil, false
	}
	if c, isProp := base.Const.(lam.PropConst); !isProp || c.Op != lam.PropImp {
		return nil, nil, false
	}
	return args[0].Term, args[1].Term, true
}

// instQuant opens one quantifier application by substituting arg for the
// bound variable. Binder-closed predicates are opened directly; bare
// predicates are applied.
func instQuant(sort lam.Sort, pred, arg lam.Term) lam.Term {
	if abs, ok := pred.(lam.Abs); ok {
		return lam.Inst1(abs.Body, arg)
	}
	return lam.App{ArgSort: sort, Fn: pred, Arg: arg}
}

// --- recheck well-formedness ---

// StepWF typechecks a term under an explicit context and records the
// well-formedness judgment.
type StepWF struct {
	Ctx  []lam.Sort
	Term lam.Term
}

func (StepWF) Kind() string { return "wf" }
func (StepWF) Refs() []int  { return nil }

func (st StepWF) apply(s *Session) (stepEffect, error) {
	sort, err := s.Env.Check(st.Ctx, st.Term)
	if err != nil {
		return stepEffect{}, err
	}
	return stepEffect{entry: WF{Ctx: st.Ctx, Sort: sort, Term: st.Term}}, nil
}

// --- intro / revert ---

// StepIntroN moves n leading universal quantifiers of a validity entry
// into its context.
type StepIntroN struct {
	Pos int
	N   int
}

func (StepIntroN) Kind() string   { return "intro" }
func (st StepIntroN) Refs() []int { return []int{st.Pos} }

func (st StepIntroN) apply(s *Session) (stepEffect, error) {
	v, err := s.validAt(st.Pos)
	if err != nil {
		return stepEffect{}, err
	}
	ctx, t := v.Ctx, v.Term
	for i := 0; i < st.N; i++ {
		sort, pred, ok := s.matchForall(t)
		if !ok {
			return stepEffect{}, fmt.Errorf("%w: position %d: %s is not universally quantified %d deep", ErrWrongShape, st.Pos, v.Term, st.N)
		}
		ctx = append([]lam.Sort{sort}, ctx...)
		if abs, isAbs := pred.(lam.Abs); isAbs {
			// Binder-closed form: the body already lives under the new
			// context slot.
			t = abs.Body
		} else {
			t = lam.App{ArgSort: sort, Fn: lam.BVarLift(1, pred), Arg: lam.BVar{Idx: 0}}
		}
	}
	return stepEffect{entry: Valid{Ctx: ctx, Term: t}}, nil
}

// StepRevertN closes the first n context slots of a validity entry back
// into universal quantifiers: the inverse of StepIntroN.
type StepRevertN struct {
	Pos int
	N   int
}

func (StepRevertN) Kind() string   { return "revert" }
func (st StepRevertN) Refs() []int { return []int{st.Pos} }

func (st StepRevertN) apply(s *Session) (stepEffect, error) {
	v, err := s.validAt(st.Pos)
	if err != nil {
		return stepEffect{}, err
	}
	if st.N < 0 || st.N > len(v.Ctx) {
		return stepEffect{}, fmt.Errorf("%w: reverting %d slots of context %s", ErrArityMismatch, st.N, lam.CtxString(v.Ctx))
	}
	t := v.Term
	for i := 0; i < st.N; i++ {
		t = lam.MkForallEF(v.Ctx[i], t)
	}
	return stepEffect{entry: Valid{Ctx: v.Ctx[st.N:], Term: t}}, nil
}

// --- beta reduction ---

// reducible reports whether t contains any beta redex.
func reducible(t lam.Term) bool {
	switch t := t.(type) {
	case lam.App:
		if _, ok := t.Fn.(lam.Abs); ok {
			return true
		}
		return reducible(t.Fn) || reducible(t.Arg)
	case lam.Abs:
		return reducible(t.Body)
	default:
		return false
	}
}

// betaEntry rebuilds the referenced entry with its term replaced by a
// reduct. Beta reduction preserves sorts, so wf entries keep theirs.
func (s *Session) betaEntry(pos int, reduce func(lam.Term) (lam.Term, error)) (stepEffect, error) {
	e, err := s.Entry(pos)
	if err != nil {
		return stepEffect{}, err
	}
	switch e := e.(type) {
	case Valid:
		t, err := reduce(e.Term)
		if err != nil {
			return stepEffect{}, err
		}
		return stepEffect{entry: Valid{Ctx: e.Ctx, Term: t}}, nil
	case WF:
		t, err := reduce(e.Term)
		if err != nil {
			return stepEffect{}, err
		}
		return stepEffect{entry: WF{Ctx: e.Ctx, Sort: e.Sort, Term: t}}, nil
	default:
		return stepEffect{}, fmt.Errorf("%w: position %d holds %s, want validity or well-formedness", ErrWrongShape, pos, e)
	}
}

// StepBetaBounded reduces the referenced entry's term by at most Bound
// leftmost-outermost beta steps. The bound is always caller-supplied.
type StepBetaBounded struct {
	Pos   int
	Bound int
}

func (StepBetaBounded) Kind() string   { return "beta" }
func (st StepBetaBounded) Refs() []int { return []int{st.Pos} }

func (st StepBetaBounded) apply(s *Session) (stepEffect, error) {
	return s.betaEntry(st.Pos, func(t lam.Term) (lam.Term, error) {
		if !reducible(t) {
			return nil, fmt.Errorf("%w: position %d holds no beta redex", ErrWrongShape, st.Pos)
		}
		out, _ := lam.BetaBounded(t, st.Bound)
		return out, nil
	})
}

// StepHeadBeta reduces the head redex of the referenced entry's term.
type StepHeadBeta struct {
	Pos int
}

func (StepHeadBeta) Kind() string   { return "headBeta" }
func (st StepHeadBeta) Refs() []int { return []int{st.Pos} }

func (st StepHeadBeta) apply(s *Session) (stepEffect, error) {
	return s.betaEntry(st.Pos, func(t lam.Term) (lam.Term, error) {
		out, ok := lam.HeadBeta(t)
		if !ok {
			return nil, fmt.Errorf("%w: position %d does not start with a redex", ErrWrongShape, st.Pos)
		}
		return out, nil
	})
}

// --- extensionality ---

// StepExtensionalize turns a function-typed equality into the pointwise
// (eta-expanded) equality under one fresh binder.
type StepExtensionalize struct {
	Pos int
}

func (StepExtensionalize) Kind() string   { return "ext" }
func (st StepExtensionalize) Refs() []int { return []int{st.Pos} }

func (st StepExtensionalize) apply(s *Session) (stepEffect, error) {
	v, err := s.validAt(st.Pos)
	if err != nil {
		return stepEffect{}, err
	}
	sort, lhs, rhs, ok := s.matchEq(v.Term)
	if !ok {
		return stepEffect{}, fmt.Errorf("%w: position %d holds %s, want an equality", ErrWrongShape, st.Pos, v.Term)
	}
	fn, isFn := sort.(lam.SortFunc)
	if !isFn {
		return stepEffect{}, fmt.Errorf("%w: position %d equates non-functions at %s", ErrWrongShape, st.Pos, sort)
	}
	lhsApp := lam.App{ArgSort: fn.Dom, Fn: lam.BVarLift(1, lhs), Arg: lam.BVar{Idx: 0}}
	rhsApp := lam.App{ArgSort: fn.Dom, Fn: lam.BVarLift(1, rhs), Arg: lam.BVar{Idx: 0}}
	t := lam.MkForallEF(fn.Dom, lam.MkEq(fn.Cod, lhsApp, rhsApp))
	return stepEffect{entry: Valid{Ctx: v.Ctx, Term: t}}, nil
}

// --- implication elimination ---

// StepMP eliminates one implication: from `h -> c` and `h`, derive `c`.
type StepMP struct {
	ImpPos int
	HypPos int
}

func (StepMP) Kind() string   { return "mp" }
func (st StepMP) Refs() []int { return []int{st.ImpPos, st.HypPos} }

func (st StepMP) apply(s *Session) (stepEffect, error) {
	return applyMPN(s, st.ImpPos, []int{st.HypPos})
}

// StepMPN eliminates a chain of n hypotheses from a curried implication.
type StepMPN struct {
	ImpPos  int
	HypPoss []int
}

func (StepMPN) Kind() string   { return "mpn" }
func (st StepMPN) Refs() []int { return append([]int{st.ImpPos}, st.HypPoss...) }

func (st StepMPN) apply(s *Session) (stepEffect, error) {
	return applyMPN(s, st.ImpPos, st.HypPoss)
}

func applyMPN(s *Session, impPos int, hypPoss []int) (stepEffect, error) {
	imp, err := s.validAt(impPos)
	if err != nil {
		return stepEffect{}, err
	}
	t := imp.Term
	for i, hp := range hypPoss {
		hyp, err := s.validAt(hp)
		if err != nil {
			return stepEffect{}, err
		}
		if !ctxEqual(imp.Ctx, hyp.Ctx) {
			return stepEffect{}, fmt.Errorf("%w: hypothesis %d at position %d has context %s, implication has %s",
				ErrWrongShape, i, hp, lam.CtxString(hyp.Ctx), lam.CtxString(imp.Ctx))
		}
		h, c, ok := matchImp(t)
		if !ok {
			return stepEffect{}, fmt.Errorf("%w: %d hypotheses supplied but %s has only %d antecedents", ErrArityMismatch, len(hypPoss), imp.Term, i)
		}
		if !h.Equal(hyp.Term) {
			return stepEffect{}, fmt.Errorf("%w: antecedent %s does not match hypothesis %s at position %d", ErrWrongShape, h, hyp.Term, hp)
		}
		t = c
	}
	return stepEffect{entry: Valid{Ctx: imp.Ctx, Term: t}}, nil
}

// --- instantiation ---

// StepInstN instantiates the leading universal quantifiers of a validity
// entry with witness terms, outermost quantifier first.
type StepInstN struct {
	Pos       int
	Witnesses []lam.Term
}

func (StepInstN) Kind() string   { return "inst" }
func (st StepInstN) Refs() []int { return []int{st.Pos} }

func (st StepInstN) apply(s *Session) (stepEffect, error) {
	return applyInst(s, st.Pos, st.Witnesses)
}

// StepInstRev is StepInstN with the witness list supplied innermost
// quantifier first.
type StepInstRev struct {
	Pos       int
	Witnesses []lam.Term
}

func (StepInstRev) Kind() string   { return "instRev" }
func (st StepInstRev) Refs() []int { return []int{st.Pos} }

func (st StepInstRev) apply(s *Session) (stepEffect, error) {
	ws := make([]lam.Term, len(st.Witnesses))
	for i, w := range st.Witnesses {
		ws[len(ws)-1-i] = w
	}
	return applyInst(s, st.Pos, ws)
}

func applyInst(s *Session, pos int, witnesses []lam.Term) (stepEffect, error) {
	v, err := s.validAt(pos)
	if err != nil {
		return stepEffect{}, err
	}
	t := v.Term
	for i, w := range witnesses {
		sort, pred, ok := s.matchForall(t)
		if !ok {
			return stepEffect{}, fmt.Errorf("%w: %d witnesses supplied but %s has only %d quantifiers", ErrArityMismatch, len(witnesses), v.Term, i)
		}
		wSort, err := s.Env.Check(v.Ctx, w)
		if err != nil {
			return stepEffect{}, err
		}
		if !wSort.Equal(sort) {
			return stepEffect{}, fmt.Errorf("%w: witness %s has sort %s, bound sort is %s", lam.ErrIllTyped, w, wSort, sort)
		}
		t = instQuant(sort, pred, w)
	}
	return stepEffect{entry: Valid{Ctx: v.Ctx, Term: t}}, nil
}

// --- congruence ---

// StepCongrArg: from `x = y` derive `f x = f y` for a supplied function
// term f.
type StepCongrArg struct {
	EqPos int
	Fn    lam.Term
}

func (StepCongrArg) Kind() string   { return "congrArg" }
func (st StepCongrArg) Refs() []int { return []int{st.EqPos} }

func (st StepCongrArg) apply(s *Session) (stepEffect, error) {
	v, err := s.validAt(st.EqPos)
	if err != nil {
		return stepEffect{}, err
	}
	sort, x, y, ok := s.matchEq(v.Term)
	if !ok {
		return stepEffect{}, fmt.Errorf("%w: position %d holds %s, want an equality", ErrWrongShape, st.EqPos, v.Term)
	}
	fnSort, err := s.Env.Check(v.Ctx, st.Fn)
	if err != nil {
		return stepEffect{}, err
	}
	fn, isFn := fnSort.(lam.SortFunc)
	if !isFn || !fn.Dom.Equal(sort) {
		return stepEffect{}, fmt.Errorf("%w: congruence function %s has sort %s, want %s -> _", lam.ErrIllTyped, st.Fn, fnSort, sort)
	}
	t := lam.MkEq(fn.Cod,
		lam.App{ArgSort: sort, Fn: st.Fn, Arg: x},
		lam.App{ArgSort: sort, Fn: st.Fn, Arg: y})
	return stepEffect{entry: Valid{Ctx: v.Ctx, Term: t}}, nil
}

// StepCongrFun: from `f = g` at a function sort derive `f a = g a` for a
// supplied argument term a.
type StepCongrFun struct {
	EqPos int
	Arg   lam.Term
}

func (StepCongrFun) Kind() string   { return "congrFun" }
func (st StepCongrFun) Refs() []int { return []int{st.EqPos} }

func (st StepCongrFun) apply(s *Session) (stepEffect, error) {
	v, err := s.validAt(st.EqPos)
	if err != nil {
		return stepEffect{}, err
	}
	sort, f, g, ok := s.matchEq(v.Term)
	if !ok {
		return stepEffect{}, fmt.Errorf("%w: position %d holds %s, want an equality", ErrWrongShape, st.EqPos, v.Term)
	}
	fn, isFn := sort.(lam.SortFunc)
	if !isFn {
		return stepEffect{}, fmt.Errorf("%w: position %d equates non-functions at %s", ErrWrongShape, st.EqPos, sort)
	}
	argSort, err := s.Env.Check(v.Ctx, st.Arg)
	if err != nil {
		return stepEffect{}, err
	}
	if !argSort.Equal(fn.Dom) {
		return stepEffect{}, fmt.Errorf("%w: congruence argument %s has sort %s, want %s", lam.ErrIllTyped, st.Arg, argSort, fn.Dom)
	}
	t := lam.MkEq(fn.Cod,
		lam.App{ArgSort: fn.Dom, Fn: f, Arg: st.Arg},
		lam.App{ArgSort: fn.Dom, Fn: g, Arg: st.Arg})
	return stepEffect{entry: Valid{Ctx: v.Ctx, Term: t}}, nil
}

// StepCongr: from `f = g` and `x = y` derive `f x = g y`.
type StepCongr struct {
	FnEqPos  int
	ArgEqPos int
}

func (StepCongr) Kind() string   { return "congr" }
func (st StepCongr) Refs() []int { return []int{st.FnEqPos, st.ArgEqPos} }

func (st StepCongr) apply(s *Session) (stepEffect, error) {
	e, err := congrOne(s, st.FnEqPos, st.ArgEqPos, nil)
	if err != nil {
		return stepEffect{}, err
	}
	return stepEffect{entry: e}, nil
}

// StepCongrN folds StepCongr over a curried application: `f = g` plus
// argument equalities derives `f x1 .. xn = g y1 .. yn`.
type StepCongrN struct {
	FnEqPos   int
	ArgEqPoss []int
}

func (StepCongrN) Kind() string   { return "congrN" }
func (st StepCongrN) Refs() []int { return append([]int{st.FnEqPos}, st.ArgEqPoss...) }

func (st StepCongrN) apply(s *Session) (stepEffect, error) {
	if len(st.ArgEqPoss) == 0 {
		return stepEffect{}, fmt.Errorf("%w: n-ary congruence needs at least one argument equality", ErrArityMismatch)
	}
	var cur *Valid
	for _, argPos := range st.ArgEqPoss {
		e, err := congrOne(s, st.FnEqPos, argPos, cur)
		if err != nil {
			return stepEffect{}, err
		}
		v := e.(Valid)
		cur = &v
	}
	return stepEffect{entry: *cur}, nil
}

// congrOne derives `f x = g y` from a function equality (either the
// entry at fnEqPos or a previously derived one) and the argument
// equality at argEqPos.
func congrOne(s *Session, fnEqPos, argEqPos int, derived *Valid) (REntry, error) {
	var fnEq Valid
	if derived != nil {
		fnEq = *derived
	} else {
		v, err := s.validAt(fnEqPos)
		if err != nil {
			return nil, err
		}
		fnEq = v
	}
	argEq, err := s.validAt(argEqPos)
	if err != nil {
		return nil, err
	}
	if !ctxEqual(fnEq.Ctx, argEq.Ctx) {
		return nil, fmt.Errorf("%w: congruence contexts differ: %s vs %s", ErrWrongShape, lam.CtxString(fnEq.Ctx), lam.CtxString(argEq.Ctx))
	}
	fnSort, f, g, ok := s.matchEq(fnEq.Term)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an equality", ErrWrongShape, fnEq.Term)
	}
	fn, isFn := fnSort.(lam.SortFunc)
	if !isFn {
		return nil, fmt.Errorf("%w: %s equates non-functions at %s", ErrWrongShape, fnEq.Term, fnSort)
	}
	argSort, x, y, ok := s.matchEq(argEq.Term)
	if !ok {
		return nil, fmt.Errorf("%w: position %d holds %s, want an equality", ErrWrongShape, argEqPos, argEq.Term)
	}
	if !argSort.Equal(fn.Dom) {
		return nil, fmt.Errorf("%w: argument equality at %s, function domain is %s", ErrWrongShape, argSort, fn.Dom)
	}
	t := lam.MkEq(fn.Cod,
		lam.App{ArgSort: fn.Dom, Fn: f, Arg: x},
		lam.App{ArgSort: fn.Dom, Fn: g, Arg: y})
	return Valid{Ctx: fnEq.Ctx, Term: t}, nil
}

// --- skolemization and definition ---

// StepSkolemize replaces a closed existential with a fresh etom and a
// validity fact about it. The existential entry is not removed.
type StepSkolemize struct {
	Pos int
}

func (StepSkolemize) Kind() string   { return "skolem" }
func (st StepSkolemize) Refs() []int { return []int{st.Pos} }

func (st StepSkolemize) apply(s *Session) (stepEffect, error) {
	v, err := s.validAt(st.Pos)
	if err != nil {
		return stepEffect{}, err
	}
	if len(v.Ctx) != 0 {
		return stepEffect{}, fmt.Errorf("%w: skolemization needs a closed existential, context is %s", ErrWrongShape, lam.CtxString(v.Ctx))
	}
	sort, pred, ok := s.matchExists(v.Term)
	if !ok {
		return stepEffect{}, fmt.Errorf("%w: position %d holds %s, want an existential", ErrWrongShape, st.Pos, v.Term)
	}
	etom := lam.Etom{Idx: s.EtomCount()}
	body := instQuant(sort, pred, etom)
	return stepEffect{entry: Valid{Ctx: nil, Term: body}, newEtomSort: sort}, nil
}

// StepDefine allocates a fresh etom whose defining equality with a
// closed term becomes the validity entry. Defining the same term twice
// resolves to the original binding.
type StepDefine struct {
	Term lam.Term
}

func (StepDefine) Kind() string { return "define" }
func (StepDefine) Refs() []int  { return nil }

func (st StepDefine) apply(s *Session) (stepEffect, error) {
	if st.Term.MaxLooseBVarSucc() != 0 {
		return stepEffect{}, fmt.Errorf("%w: defined term %s has loose bound variables", ErrNotClosed, st.Term)
	}
	sort, err := s.Env.CheckClosed(st.Term)
	if err != nil {
		return stepEffect{}, err
	}
	key := fmt.Sprintf("%s|%s", st.Term, sort)
	if bound, ok := s.defs[key]; ok {
		expected := Valid{Ctx: nil, Term: lam.MkEq(sort, lam.Etom{Idx: bound.etom}, st.Term)}
		existing, err := s.Entry(bound.pos)
		if err != nil || !expected.Equal(existing) {
			return stepEffect{}, fmt.Errorf("%w: %s already bound to etom %d with a different defining equality", ErrDuplicateDefine, st.Term, bound.etom)
		}
		return stepEffect{entry: expected}, nil
	}
	etom := s.EtomCount()
	s.defs[key] = defBinding{etom: etom, pos: s.Len()}
	entry := Valid{Ctx: nil, Term: lam.MkEq(sort, lam.Etom{Idx: etom}, st.Term)}
	return stepEffect{entry: entry, newEtomSort: sort}, nil
}

// --- non-emptiness ---

// StepNonEmpty records that a sort is inhabited, justified by a closed
// well-typed witness term.
type StepNonEmpty struct {
	Sort    lam.Sort
	Witness lam.Term
}

func (StepNonEmpty) Kind() string { return "nonempty" }
func (StepNonEmpty) Refs() []int  { return nil }

func (st StepNonEmpty) apply(s *Session) (stepEffect, error) {
	if st.Witness.MaxLooseBVarSucc() != 0 {
		return stepEffect{}, fmt.Errorf("%w: witness %s has loose bound variables", ErrNotClosed, st.Witness)
	}
	sort, err := s.Env.CheckClosed(st.Witness)
	if err != nil {
		return stepEffect{}, err
	}
	if !sort.Equal(st.Sort) {
		return stepEffect{}, fmt.Errorf("%w: witness %s inhabits %s, not %s", lam.ErrIllTyped, st.Witness, sort, st.Sort)
	}
	return stepEffect{entry: NonEmpty{Sort: st.Sort}}, nil
}
