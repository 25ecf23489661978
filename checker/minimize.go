package checker

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/atomb/lean-auto/lam"
)

// remapper rewrites positions, sort atoms, term atoms, import indices
// and etom ids from a source session into the dense numbering of a
// destination session, assigning new indices in first-use order. With
// collectEtoms set it runs in a dry collection mode that only records
// which etoms a term mentions.
type remapper struct {
	src *Session
	dst *Session

	sortAtoms map[int]int
	atoms     map[int]int
	etoms     map[int]int
	positions map[int]int

	collectEtoms map[int]bool
}

func (r *remapper) collecting() bool { return r.collectEtoms != nil }

func (r *remapper) sortAtom(idx int) int {
	if n, ok := r.sortAtoms[idx]; ok {
		return n
	}
	n := len(r.sortAtoms)
	r.sortAtoms[idx] = n
	return n
}

func (r *remapper) atom(idx int) int {
	if n, ok := r.atoms[idx]; ok {
		return n
	}
	if idx < 0 || idx >= len(r.src.Env.AtomSorts) {
		panic(fmt.Sprintf("minimizer: atom %d outside source table", idx))
	}
	n := r.dst.DeclareAtom(r.Sort(r.src.Env.AtomSorts[idx]))
	r.atoms[idx] = n
	return n
}

func (r *remapper) etom(idx int) int {
	n, ok := r.etoms[idx]
	if !ok {
		panic(fmt.Sprintf("minimizer: etom %d used before its allocating entry was replayed", idx))
	}
	return n
}

func (r *remapper) pos(p int) int {
	if r.collecting() {
		return p
	}
	n, ok := r.positions[p]
	if !ok {
		panic(fmt.Sprintf("minimizer: position %d referenced outside the reachable closure", p))
	}
	return n
}

func (r *remapper) poss(ps []int) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = r.pos(p)
	}
	return out
}

func (r *remapper) Sort(s lam.Sort) lam.Sort {
	switch s := s.(type) {
	case lam.SortAtom:
		if r.collecting() {
			return s
		}
		return lam.SortAtom{Idx: r.sortAtom(s.Idx)}
	case lam.SortFunc:
		return lam.SortFunc{Dom: r.Sort(s.Dom), Cod: r.Sort(s.Cod)}
	default:
		return s
	}
}

func (r *remapper) Ctx(ctx []lam.Sort) []lam.Sort {
	if ctx == nil {
		return nil
	}
	out := make([]lam.Sort, len(ctx))
	for i, s := range ctx {
		out[i] = r.Sort(s)
	}
	return out
}

func (r *remapper) base(c lam.BaseTerm) lam.BaseTerm {
	switch c := c.(type) {
	case lam.EqConst:
		return lam.EqConst{Sort: r.Sort(c.Sort)}
	case lam.ForallConst:
		return lam.ForallConst{Sort: r.Sort(c.Sort)}
	case lam.ExistsConst:
		return lam.ExistsConst{Sort: r.Sort(c.Sort)}
	case lam.EqIConst:
		return lam.EqIConst{Idx: r.importIdx(c.Idx)}
	case lam.ForallIConst:
		return lam.ForallIConst{Idx: r.importIdx(c.Idx)}
	case lam.ExistsIConst:
		return lam.ExistsIConst{Idx: r.importIdx(c.Idx)}
	default:
		return c
	}
}

func (r *remapper) importIdx(idx int) int {
	if r.collecting() {
		return idx
	}
	if idx < 0 || idx >= len(r.src.Env.ImportSorts) {
		panic(fmt.Sprintf("minimizer: import index %d outside source table", idx))
	}
	return r.dst.ImportIdxFor(r.Sort(r.src.Env.ImportSorts[idx]))
}

func (r *remapper) Term(t lam.Term) lam.Term {
	switch t := t.(type) {
	case lam.Atom:
		if r.collecting() {
			return t
		}
		return lam.Atom{Idx: r.atom(t.Idx)}
	case lam.Etom:
		if r.collecting() {
			r.collectEtoms[t.Idx] = true
			return t
		}
		return lam.Etom{Idx: r.etom(t.Idx)}
	case lam.Base:
		return lam.Base{Const: r.base(t.Const)}
	case lam.Abs:
		return lam.Abs{Sort: r.Sort(t.Sort), Body: r.Term(t.Body)}
	case lam.App:
		return lam.App{ArgSort: r.Sort(t.ArgSort), Fn: r.Term(t.Fn), Arg: r.Term(t.Arg)}
	default:
		return t
	}
}

// --- step remapping ---

func (st StepWF) remap(r *remapper) Step {
	return StepWF{Ctx: r.Ctx(st.Ctx), Term: r.Term(st.Term)}
}

func (st StepIntroN) remap(r *remapper) Step {
	return StepIntroN{Pos: r.pos(st.Pos), N: st.N}
}

func (st StepRevertN) remap(r *remapper) Step {
	return StepRevertN{Pos: r.pos(st.Pos), N: st.N}
}

func (st StepBetaBounded) remap(r *remapper) Step {
	return StepBetaBounded{Pos: r.pos(st.Pos), Bound: st.Bound}
}

func (st StepHeadBeta) remap(r *remapper) Step {
	return StepHeadBeta{Pos: r.pos(st.Pos)}
}

func (st StepExtensionalize) remap(r *remapper) Step {
	return StepExtensionalize{Pos: r.pos(st.Pos)}
}

func (st StepMP) remap(r *remapper) Step {
	return StepMP{ImpPos: r.pos(st.ImpPos), HypPos: r.pos(st.HypPos)}
}

func (st StepMPN) remap(r *remapper) Step {
	return StepMPN{ImpPos: r.pos(st.ImpPos), HypPoss: r.poss(st.HypPoss)}
}

func remapTerms(r *remapper, ts []lam.Term) []lam.Term {
	out := make([]lam.Term, len(ts))
	for i, t := range ts {
		out[i] = r.Term(t)
	}
	return out
}

func (st StepInstN) remap(r *remapper) Step {
	return StepInstN{Pos: r.pos(st.Pos), Witnesses: remapTerms(r, st.Witnesses)}
}

func (st StepInstRev) remap(r *remapper) Step {
	return StepInstRev{Pos: r.pos(st.Pos), Witnesses: remapTerms(r, st.Witnesses)}
}

func (st StepCongrArg) remap(r *remapper) Step {
	return StepCongrArg{EqPos: r.pos(st.EqPos), Fn: r.Term(st.Fn)}
}

func (st StepCongrFun) remap(r *remapper) Step {
	return StepCongrFun{EqPos: r.pos(st.EqPos), Arg: r.Term(st.Arg)}
}

func (st StepCongr) remap(r *remapper) Step {
	return StepCongr{FnEqPos: r.pos(st.FnEqPos), ArgEqPos: r.pos(st.ArgEqPos)}
}

func (st StepCongrN) remap(r *remapper) Step {
	return StepCongrN{FnEqPos: r.pos(st.FnEqPos), ArgEqPoss: r.poss(st.ArgEqPoss)}
}

func (st StepSkolemize) remap(r *remapper) Step {
	return StepSkolemize{Pos: r.pos(st.Pos)}
}

func (st StepDefine) remap(r *remapper) Step {
	return StepDefine{Term: r.Term(st.Term)}
}

func (st StepNonEmpty) remap(r *remapper) Step {
	return StepNonEmpty{Sort: r.Sort(st.Sort), Witness: r.Term(st.Witness)}
}

// entryTerms lists the terms an entry carries, for etom dependency
// collection.
func entryTerms(e REntry) []lam.Term {
	switch e := e.(type) {
	case WF:
		return []lam.Term{e.Term}
	case Valid:
		return []lam.Term{e.Term}
	default:
		return nil
	}
}

// etomDeps finds the birth positions of every etom mentioned by the
// entry at pos or by its step's payload terms. A derivation may use an
// etom without referencing its allocating entry directly, so the
// closure must pull the allocation in explicitly.
func (s *Session) etomDeps(pos int) []int {
	te := s.entries[pos]
	collector := &remapper{src: s, collectEtoms: make(map[int]bool)}
	for _, t := range entryTerms(te.Entry) {
		collector.Term(t)
	}
	if te.Step != nil {
		te.Step.remap(collector)
	}
	var deps []int
	for etom := range collector.collectEtoms {
		deps = append(deps, s.etomBirth[etom])
	}
	return deps
}

// Minimize performs backward reachability from the goal positions and
// replays the reachable closure forward into a fresh session, remapping
// sort atoms, term atoms and etom ids to dense indices in first-use
// order. The source session is left untouched. It returns the new
// session and the mapping from requested goal positions to their
// positions in the minimized table.
func Minimize(src *Session, goals []int, opts ...Option) (*Session, map[int]int, error) {
	for _, g := range goals {
		if g < 0 || g >= src.Len() {
			return nil, nil, fmt.Errorf("%w: goal %d (table length %d)", ErrBadPosition, g, src.Len())
		}
	}

	// Backward closure over justification refs and etom allocations.
	seen := make(map[int]bool)
	work := lo.Uniq(goals)
	for len(work) > 0 {
		pos := work[len(work)-1]
		work = work[:len(work)-1]
		if seen[pos] {
			continue
		}
		seen[pos] = true
		work = append(work, src.entries[pos].Refs...)
		work = append(work, src.etomDeps(pos)...)
	}
	order := lo.Keys(seen)
	slices.Sort(order)

	dst := NewSession(nil, opts...)
	r := &remapper{
		src:       src,
		dst:       dst,
		sortAtoms: make(map[int]int),
		atoms:     make(map[int]int),
		etoms:     make(map[int]int),
		positions: make(map[int]int),
	}

	// Forward replay in original order, which respects every
	// justification dependency.
	for _, pos := range order {
		te := src.entries[pos]
		var newPos int
		var err error
		if te.Assertion >= 0 {
			a := src.assertions[te.Assertion]
			newPos, err = dst.Assert(a.Proof, r.Term(a.Term))
		} else {
			newPos, err = dst.Apply(te.Step.remap(r))
		}
		if err != nil {
			return nil, nil, fmt.Errorf("replaying position %d: %w", pos, err)
		}
		r.positions[pos] = newPos
		if te.Etom >= 0 {
			newEtom := dst.entries[newPos].Etom
			if newEtom < 0 {
				return nil, nil, fmt.Errorf("replaying position %d: etom allocation deduplicated away", pos)
			}
			r.etoms[te.Etom] = newEtom
		}
	}

	goalMap := make(map[int]int, len(goals))
	for _, g := range goals {
		goalMap[g] = r.positions[g]
	}
	return dst, goalMap, nil
}
