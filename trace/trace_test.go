package trace

import (
	"math/big"
	"testing"

	"github.com/atomb/lean-auto/checker"
	"github.com/atomb/lean-auto/lam"
	"gotest.tools/v3/assert"
)

var predNat = lam.SortFunc{Dom: lam.SortNat, Cod: lam.SortProp}

func pApp(idx int, arg lam.Term) lam.Term {
	return lam.App{ArgSort: lam.SortNat, Fn: lam.Atom{Idx: idx}, Arg: arg}
}

func natLit(n int64) lam.Term {
	return lam.Base{Const: lam.NatValOf(n)}
}

func fixtureTrace() *Trace {
	rule := lam.MkForallEF(lam.SortNat,
		lam.MkImp(pApp(0, lam.BVar{Idx: 0}), pApp(1, lam.BVar{Idx: 0})))
	return &Trace{
		AtomSorts: []lam.Sort{predNat, predNat},
		Instrs: []checker.Instr{
			{Assert: rule},
			{Assert: pApp(0, natLit(3))},
			{Step: checker.StepInstN{Pos: 0, Witnesses: []lam.Term{natLit(3)}}},
			{Step: checker.StepMP{ImpPos: 2, HypPos: 1}},
		},
		Goals: []int{3},
	}
}

func TestTraceRoundTrip(t *testing.T) {
	tr := fixtureTrace()
	data, err := Encode(tr)
	assert.NilError(t, err)

	got, err := Decode(data)
	assert.NilError(t, err)
	assert.Equal(t, len(tr.Instrs), len(got.Instrs))
	assert.DeepEqual(t, tr.Goals, got.Goals)
	for i := range tr.AtomSorts {
		assert.Assert(t, got.AtomSorts[i].Equal(tr.AtomSorts[i]), "atom sort %d", i)
	}
	assert.Assert(t, got.Instrs[0].Assert.Equal(tr.Instrs[0].Assert))
	assert.Equal(t, "inst", got.Instrs[2].Step.Kind())
	assert.Equal(t, "mp", got.Instrs[3].Step.Kind())

	// A decoded trace replays to the same table as the original.
	s1, err := Run(tr)
	assert.NilError(t, err)
	s2, err := Run(got)
	assert.NilError(t, err)
	assert.Equal(t, s1.Len(), s2.Len())
	for pos := 0; pos < s1.Len(); pos++ {
		a, err := s1.Entry(pos)
		assert.NilError(t, err)
		b, err := s2.Entry(pos)
		assert.NilError(t, err)
		assert.Assert(t, a.Equal(b), "entry %d", pos)
	}
}

func TestRunResolvesGoals(t *testing.T) {
	tr := fixtureTrace()
	s, err := Run(tr)
	assert.NilError(t, err)

	goals, err := GoalEntries(s, tr)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(goals))
	v, ok := goals[0].(checker.Valid)
	assert.Assert(t, ok)
	assert.Assert(t, v.Term.Equal(pApp(1, natLit(3))))
}

func TestRunRejectsBadTraces(t *testing.T) {
	tr := fixtureTrace()
	tr.Instrs[3] = checker.Instr{Step: checker.StepMP{ImpPos: 2, HypPos: 0}}
	_, err := Run(tr)
	assert.ErrorContains(t, err, "instr 3")

	tr = fixtureTrace()
	tr.Goals = []int{99}
	_, err = Run(tr)
	assert.ErrorContains(t, err, "goal 99")
}

func TestStepCodecCoversEveryKind(t *testing.T) {
	steps := []checker.Step{
		checker.StepWF{Ctx: []lam.Sort{lam.SortNat}, Term: lam.BVar{Idx: 0}},
		checker.StepIntroN{Pos: 1, N: 2},
		checker.StepRevertN{Pos: 1, N: 2},
		checker.StepBetaBounded{Pos: 3, Bound: 7},
		checker.StepHeadBeta{Pos: 3},
		checker.StepExtensionalize{Pos: 4},
		checker.StepMP{ImpPos: 1, HypPos: 2},
		checker.StepMPN{ImpPos: 1, HypPoss: []int{2, 3}},
		checker.StepInstN{Pos: 0, Witnesses: []lam.Term{natLit(3)}},
		checker.StepInstRev{Pos: 0, Witnesses: []lam.Term{natLit(3), natLit(4)}},
		checker.StepCongrArg{EqPos: 2, Fn: lam.Atom{Idx: 1}},
		checker.StepCongrFun{EqPos: 2, Arg: natLit(1)},
		checker.StepCongr{FnEqPos: 1, ArgEqPos: 2},
		checker.StepCongrN{FnEqPos: 1, ArgEqPoss: []int{2, 3}},
		checker.StepSkolemize{Pos: 5},
		checker.StepDefine{Term: natLit(8)},
		checker.StepNonEmpty{Sort: lam.SortNat, Witness: natLit(0)},
	}
	for _, st := range steps {
		n, err := encodeStep(st)
		assert.NilError(t, err, st.Kind())
		got, err := decodeStep(n)
		assert.NilError(t, err, st.Kind())
		assert.Equal(t, st.Kind(), got.Kind())
		assert.DeepEqual(t, st.Refs(), got.Refs())
	}
}

func TestTermCodecConstants(t *testing.T) {
	terms := []lam.Term{
		lam.Base{Const: lam.NatValOf(12345)},
		lam.Base{Const: lam.IntValOf(-7)},
		lam.Base{Const: lam.StrValOf("hello")},
		lam.Base{Const: lam.BVValOf(8, big.NewInt(200))},
		lam.Base{Const: lam.EqConst{Sort: lam.SortNat}},
		lam.Base{Const: lam.ForallIConst{Idx: 2}},
		lam.Abs{Sort: lam.SortAtom{Idx: 1}, Body: lam.BVar{Idx: 0}},
		lam.App{ArgSort: lam.SortBV(4), Fn: lam.Etom{Idx: 3}, Arg: lam.Base{Const: lam.BVValOf(4, big.NewInt(9))}},
	}
	for _, tm := range terms {
		got, err := decodeTerm(encodeTerm(tm))
		assert.NilError(t, err, tm.String())
		assert.Assert(t, got.Equal(tm), "round trip of %s", tm)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.ErrorContains(t, err, "parsing trace")

	_, err = Decode([]byte(`{"atomSorts":[{"k":"mystery"}],"instrs":[]}`))
	assert.ErrorContains(t, err, "unknown sort kind")

	_, err = Decode([]byte(`{"atomSorts":[],"instrs":[{}]}`))
	assert.ErrorContains(t, err, "empty instruction")

	_, err = decodeConst(&constNode{Fam: "nat", Op: "nadd2"})
	assert.ErrorContains(t, err, "unknown nat operator")

	_, err = decodeConst(&constNode{Fam: "nat", Op: "natVal", Num: "xyz"})
	assert.ErrorContains(t, err, "malformed numeric literal")
}

func TestTableRoundTrip(t *testing.T) {
	tr := fixtureTrace()
	tr.Instrs = append(tr.Instrs,
		checker.Instr{Assert: lam.MkExistsEF(lam.SortNat, pApp(0, lam.BVar{Idx: 0}))},
		checker.Instr{Step: checker.StepSkolemize{Pos: 4}},
	)
	s, err := Run(tr)
	assert.NilError(t, err)

	data, err := EncodeTable(s)
	assert.NilError(t, err)
	table, err := DecodeTable(data)
	assert.NilError(t, err)

	assert.Equal(t, s.Len(), len(table.Entries))
	assert.Equal(t, s.EtomCount(), len(table.EtomSorts))
	for pos := range table.Entries {
		e, err := s.Entry(pos)
		assert.NilError(t, err)
		assert.Assert(t, table.Entries[pos].Equal(e), "entry %d", pos)
	}
	for i, srt := range table.AtomSorts {
		assert.Assert(t, srt.Equal(s.Env.AtomSorts[i]))
	}
}

func TestRunSeedsImportSorts(t *testing.T) {
	sentence := lam.App{
		ArgSort: predNat,
		Fn:      lam.Base{Const: lam.ForallIConst{Idx: 0}},
		Arg:     lam.Abs{Sort: lam.SortNat, Body: pApp(0, lam.BVar{Idx: 0})},
	}
	tr := &Trace{
		AtomSorts:   []lam.Sort{predNat},
		ImportSorts: []lam.Sort{lam.SortNat},
		Instrs: []checker.Instr{
			{Assert: sentence},
			{Step: checker.StepInstN{Pos: 0, Witnesses: []lam.Term{natLit(7)}}},
		},
		Goals: []int{1},
	}

	data, err := Encode(tr)
	assert.NilError(t, err)
	got, err := Decode(data)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(got.ImportSorts))
	assert.Assert(t, got.ImportSorts[0].Equal(lam.SortNat))

	s, err := Run(got)
	assert.NilError(t, err)
	e, err := s.Entry(1)
	assert.NilError(t, err)
	assert.Assert(t, e.Equal(checker.Valid{Term: pApp(0, natLit(7))}))
}
