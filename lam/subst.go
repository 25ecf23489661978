package lam

// bvarShift adds d to every loose bound variable >= cutoff.
func bvarShift(d, cutoff int, t Term) Term {
	switch t := t.(type) {
	case BVar:
		if t.Idx < cutoff {
			return t
		}
		return BVar{t.Idx + d}
	case Abs:
		return Abs{t.Sort, bvarShift(d, cutoff+1, t.Body)}
	case App:
		return App{t.ArgSort, bvarShift(d, cutoff, t.Fn), bvarShift(d, cutoff, t.Arg)}
	default:
		return t
	}
}

// BVarLift shifts every loose bound variable of t up by n, preparing t
// for use under n additional binders.
func BVarLift(n int, t Term) Term {
	if n == 0 || t.MaxLooseBVarSucc() == 0 {
		return t
	}
	return bvarShift(n, 0, t)
}

// instRec substitutes args for the loose bound variables j .. j+len(args)-1
// (args[0] replaces j) and shifts the remaining loose variables down by
// len(args). Each substituted argument is lifted past the binders crossed.
func instRec(j int, args []Term, t Term) Term {
	n := len(args)
	switch t := t.(type) {
	case BVar:
		switch {
		case t.Idx < j:
			return t
		case t.Idx < j+n:
			return BVarLift(j, args[t.Idx-j])
		default:
			return BVar{t.Idx - n}
		}
	case Abs:
		return Abs{t.Sort, instRec(j+1, args, t.Body)}
	case App:
		return App{t.ArgSort, instRec(j, args, t.Fn), instRec(j, args, t.Arg)}
	default:
		return t
	}
}

// InstN simultaneously substitutes args for the outermost len(args)
// bound variables of body: args[0] replaces !0. The arguments must be
// well-scoped in the surrounding context; they are lifted as binders
// are crossed.
func InstN(body Term, args []Term) Term {
	if len(args) == 0 {
		return body
	}
	return instRec(0, args, body)
}

// Inst1 substitutes arg for !0 in body.
func Inst1(body, arg Term) Term {
	return InstN(body, []Term{arg})
}

// HeadBeta reduces the head redex of t, if any. Returns t unchanged and
// false when the head of t is not an abstraction applied to an argument.
func HeadBeta(t Term) (Term, bool) {
	app, ok := t.(App)
	if !ok {
		return t, false
	}
	if abs, ok := app.Fn.(Abs); ok {
		return Inst1(abs.Body, app.Arg), true
	}
	fn, reduced := HeadBeta(app.Fn)
	if !reduced {
		return t, false
	}
	return App{app.ArgSort, fn, app.Arg}, true
}

// BetaBounded performs at most bound leftmost-outermost beta reductions
// and reports how many were taken. The bound is always supplied by the
// caller.
func BetaBounded(t Term, bound int) (Term, int) {
	taken := 0
	for taken < bound {
		next, reduced := betaStep(t)
		if !reduced {
			break
		}
		t = next
		taken++
	}
	return t, taken
}

// betaStep reduces the leftmost-outermost redex of t.
func betaStep(t Term) (Term, bool) {
	switch t := t.(type) {
	case App:
		if abs, ok := t.Fn.(Abs); ok {
			return Inst1(abs.Body, t.Arg), true
		}
		if fn, ok := betaStep(t.Fn); ok {
			return App{t.ArgSort, fn, t.Arg}, true
		}
		if arg, ok := betaStep(t.Arg); ok {
			return App{t.ArgSort, t.Fn, arg}, true
		}
		return t, false
	case Abs:
		if body, ok := betaStep(t.Body); ok {
			return Abs{t.Sort, body}, true
		}
		return t, false
	default:
		return t, false
	}
}
