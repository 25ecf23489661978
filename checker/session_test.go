package checker

import (
	"testing"

	"github.com/atomb/lean-auto/lam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var predNat = lam.SortFunc{Dom: lam.SortNat, Cod: lam.SortProp}

// pApp applies atom idx to a term of sort Nat.
func pApp(idx int, arg lam.Term) lam.Term {
	return lam.App{ArgSort: lam.SortNat, Fn: lam.Atom{Idx: idx}, Arg: arg}
}

func natLit(n int64) lam.Term {
	return lam.Base{Const: lam.NatValOf(n)}
}

func mustAssert(t *testing.T, s *Session, tm lam.Term) int {
	t.Helper()
	pos, err := s.Assert("external", tm)
	require.NoError(t, err)
	return pos
}

func mustApply(t *testing.T, s *Session, st Step) int {
	t.Helper()
	pos, err := s.Apply(st)
	require.NoError(t, err)
	return pos
}

func TestAssertBasics(t *testing.T) {
	s := NewSession([]lam.Sort{predNat})

	fact := pApp(0, natLit(3))
	pos := mustAssert(t, s, fact)
	assert.Equal(t, 0, pos)
	assert.Equal(t, 1, s.Len())

	e, err := s.Entry(pos)
	require.NoError(t, err)
	v, ok := e.(Valid)
	require.True(t, ok)
	assert.Empty(t, v.Ctx)
	assert.True(t, v.Term.Equal(fact))

	got, found := s.Lookup(Valid{Ctx: nil, Term: fact})
	assert.True(t, found)
	assert.Equal(t, pos, got)
}

func TestAssertRejectsBadTerms(t *testing.T) {
	s := NewSession([]lam.Sort{predNat})

	// Loose bound variable.
	_, err := s.Assert(nil, pApp(0, lam.BVar{Idx: 0}))
	assert.ErrorIs(t, err, ErrNotClosed)

	// Etom dependency.
	_, err = s.Assert(nil, pApp(0, lam.Etom{Idx: 0}))
	assert.ErrorIs(t, err, ErrNotClosed)

	// Ill-typed.
	_, err = s.Assert(nil, pApp(0, lam.Base{Const: lam.StrValOf("x")}))
	assert.ErrorIs(t, err, lam.ErrIllTyped)

	// Well-typed but not a proposition.
	_, err = s.Assert(nil, natLit(3))
	assert.ErrorIs(t, err, lam.ErrIllTyped)

	// Failures leave the table untouched.
	assert.Equal(t, 0, s.Len())
}

func TestAssertDeduplicates(t *testing.T) {
	s := NewSession([]lam.Sort{predNat})
	fact := pApp(0, natLit(3))

	first := mustAssert(t, s, fact)
	second := mustAssert(t, s, fact)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.Len())
	// The duplicate assertion is not recorded twice either.
	assert.Len(t, s.Assertions(), 1)
}

func TestApplyDeduplicates(t *testing.T) {
	s := NewSession([]lam.Sort{predNat})
	all := lam.MkForallEF(lam.SortNat, pApp(0, lam.BVar{Idx: 0}))
	pos := mustAssert(t, s, all)

	inst := StepInstN{Pos: pos, Witnesses: []lam.Term{natLit(5)}}
	first := mustApply(t, s, inst)
	second := mustApply(t, s, inst)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, s.Len())
}

func TestApplyFailureLeavesTableUnchanged(t *testing.T) {
	s := NewSession([]lam.Sort{predNat})
	pos := mustAssert(t, s, pApp(0, natLit(1)))

	_, err := s.Apply(StepIntroN{Pos: pos, N: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongShape)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.EtomCount())

	_, err = s.Apply(StepMP{ImpPos: 99, HypPos: pos})
	assert.ErrorIs(t, err, ErrBadPosition)
}

func TestDeclareAtom(t *testing.T) {
	s := NewSession([]lam.Sort{lam.SortNat})
	idx := s.DeclareAtom(predNat)
	assert.Equal(t, 1, idx)

	sort, err := s.Env.CheckClosed(lam.Atom{Idx: idx})
	require.NoError(t, err)
	assert.True(t, sort.Equal(predNat))
}

func TestImportIdxForIsStable(t *testing.T) {
	s := NewSession(nil)
	a := s.ImportIdxFor(lam.SortNat)
	b := s.ImportIdxFor(lam.SortBool)
	c := s.ImportIdxFor(lam.SortNat)
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, a, c)
	require.Len(t, s.Env.ImportSorts, 2)
	assert.True(t, s.Env.ImportSorts[0].Equal(lam.SortNat))
}

func TestSessionsAreIndependent(t *testing.T) {
	s1 := NewSession([]lam.Sort{predNat})
	s2 := NewSession([]lam.Sort{predNat})
	assert.NotEqual(t, s1.ID, s2.ID)

	mustAssert(t, s1, pApp(0, natLit(1)))
	assert.Equal(t, 0, s2.Len())
}

func TestDeclareImports(t *testing.T) {
	s := NewSession(nil)
	err := s.DeclareImports([]lam.Sort{lam.SortNat, lam.SortBool})
	require.NoError(t, err)
	assert.Equal(t, 0, s.ImportIdxFor(lam.SortNat))
	assert.Equal(t, 1, s.ImportIdxFor(lam.SortBool))

	// A repeated sort cannot reproduce its recorded index.
	s2 := NewSession(nil)
	err = s2.DeclareImports([]lam.Sort{lam.SortNat, lam.SortNat})
	assert.ErrorIs(t, err, ErrBadImportTable)
}
