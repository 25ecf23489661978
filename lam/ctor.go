package lam

// Smart constructors. Each result's sort is a deterministic function of
// the argument sorts, so callers never re-derive annotations.

func MkNot(t Term) Term {
	return App{SortProp, Base{PropConst{PropNot}}, t}
}

func mkPropBin(op PropOp, a, b Term) Term {
	return App{SortProp, App{SortProp, Base{PropConst{op}}, a}, b}
}

func MkAnd(a, b Term) Term { return mkPropBin(PropAnd, a, b) }
func MkOr(a, b Term) Term  { return mkPropBin(PropOr, a, b) }
func MkImp(a, b Term) Term { return mkPropBin(PropImp, a, b) }
func MkIff(a, b Term) Term { return mkPropBin(PropIff, a, b) }

// MkEq builds equality of a and b at sort s.
func MkEq(s Sort, a, b Term) Term {
	return App{s, App{s, Base{EqConst{s}}, a}, b}
}

// MkForallE applies the forall quantifier at s to a predicate term of
// sort s -> Prop (the "bare" form).
func MkForallE(s Sort, pred Term) Term {
	return App{SortFunc{s, SortProp}, Base{ForallConst{s}}, pred}
}

// MkForallEF quantifies over a binder-closed body: forall x : s, body.
func MkForallEF(s Sort, body Term) Term {
	return MkForallE(s, Abs{s, body})
}

// MkForallEFN wraps body in binder-closed quantifiers, sorts listed
// outermost first.
func MkForallEFN(body Term, sorts []Sort) Term {
	for i := len(sorts) - 1; i >= 0; i-- {
		body = MkForallEF(sorts[i], body)
	}
	return body
}

// MkExistsE applies the exists quantifier at s to a predicate term of
// sort s -> Prop.
func MkExistsE(s Sort, pred Term) Term {
	return App{SortFunc{s, SortProp}, Base{ExistsConst{s}}, pred}
}

// MkExistsEF quantifies over a binder-closed body: exists x : s, body.
func MkExistsEF(s Sort, body Term) Term {
	return MkExistsE(s, Abs{s, body})
}

// SortedTerm pairs a term with its sort, used where applications must
// carry their argument-sort annotation.
type SortedTerm struct {
	Sort Sort
	Term Term
}

// MkAppN applies fn to args in order.
func MkAppN(fn Term, args []SortedTerm) Term {
	for _, a := range args {
		fn = App{a.Sort, fn, a.Term}
	}
	return fn
}

// MkLamFN wraps body in abstractions, sorts listed outermost first.
func MkLamFN(body Term, sorts []Sort) Term {
	for i := len(sorts) - 1; i >= 0; i-- {
		body = Abs{sorts[i], body}
	}
	return body
}

// BVarApps applies t to a run of fresh bound variables !{n-1} .. !0,
// where argSorts lists the binder sorts outermost first. Used to
// eta-expand a function-typed term under a context extended by argSorts.
func BVarApps(t Term, argSorts []Sort) Term {
	n := len(argSorts)
	for i, s := range argSorts {
		t = App{s, t, BVar{n - 1 - i}}
	}
	return t
}

// AppFn strips every application, returning the head.
func AppFn(t Term) Term {
	for {
		app, ok := t.(App)
		if !ok {
			return t
		}
		t = app.Fn
	}
}

// AppArgs returns the applied arguments with their sort annotations, in
// application order. Round trip: t = MkAppN(AppFn(t), AppArgs(t)).
func AppArgs(t Term) []SortedTerm {
	var rev []SortedTerm
	for {
		app, ok := t.(App)
		if !ok {
			break
		}
		rev = append(rev, SortedTerm{app.ArgSort, app.Arg})
		t = app.Fn
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// AppArgsN peels exactly n trailing arguments: t = MkAppN(fn, args) with
// len(args) == n. ok is false when t has fewer than n applications.
func AppArgsN(n int, t Term) (fn Term, args []SortedTerm, ok bool) {
	args = make([]SortedTerm, n)
	for i := n - 1; i >= 0; i-- {
		app, isApp := t.(App)
		if !isApp {
			return nil, nil, false
		}
		args[i] = SortedTerm{app.ArgSort, app.Arg}
		t = app.Fn
	}
	return t, args, true
}
