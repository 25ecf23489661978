package lam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkOK(t *testing.T, env *TyEnv, lctx []Sort, tm Term) Sort {
	t.Helper()
	s, err := env.Check(lctx, tm)
	require.NoError(t, err)
	return s
}

func checkFails(t *testing.T, env *TyEnv, lctx []Sort, tm Term) {
	t.Helper()
	_, err := env.Check(lctx, tm)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllTyped)
}

func TestCheckAtomsAndEtoms(t *testing.T) {
	env := &TyEnv{
		AtomSorts: []Sort{SortNat, SortFunc{SortNat, SortProp}},
		EtomSorts: []Sort{SortNat},
	}

	assert.True(t, checkOK(t, env, nil, Atom{Idx: 0}).Equal(SortNat))
	assert.True(t, checkOK(t, env, nil, Atom{Idx: 1}).Equal(SortFunc{SortNat, SortProp}))
	assert.True(t, checkOK(t, env, nil, Etom{Idx: 0}).Equal(SortNat))

	checkFails(t, env, nil, Atom{Idx: 2})
	checkFails(t, env, nil, Atom{Idx: -1})
	checkFails(t, env, nil, Etom{Idx: 1})
}

func TestCheckBVarsAndAbs(t *testing.T) {
	env := &TyEnv{}

	// lctx[i] is the sort of !i, innermost binder first.
	lctx := []Sort{SortNat, SortBool}
	assert.True(t, checkOK(t, env, lctx, BVar{0}).Equal(SortNat))
	assert.True(t, checkOK(t, env, lctx, BVar{1}).Equal(SortBool))
	checkFails(t, env, lctx, BVar{2})

	id := Abs{SortNat, BVar{0}}
	assert.True(t, checkOK(t, env, nil, id).Equal(SortFunc{SortNat, SortNat}))

	// The inner binder shadows positionally: !1 refers to the outer one.
	k := Abs{SortNat, Abs{SortBool, BVar{1}}}
	want := SortFunc{SortNat, SortFunc{SortBool, SortNat}}
	assert.True(t, checkOK(t, env, nil, k).Equal(want))
}

func TestCheckApp(t *testing.T) {
	env := &TyEnv{AtomSorts: []Sort{SortFunc{SortNat, SortProp}, SortNat}}

	good := App{SortNat, Atom{Idx: 0}, Atom{Idx: 1}}
	assert.True(t, checkOK(t, env, nil, good).Equal(SortProp))

	// Applying a non-function.
	checkFails(t, env, nil, App{SortNat, Atom{Idx: 1}, Atom{Idx: 1}})
	// Domain mismatch.
	checkFails(t, env, nil, App{SortProp, Atom{Idx: 0}, Atom{Idx: 0}})
	// Correct argument but wrong annotation: the redundant witness is
	// checked against the inferred sort too.
	checkFails(t, env, nil, App{SortProp, Atom{Idx: 0}, Atom{Idx: 1}})
}

func TestCheckConstants(t *testing.T) {
	env := &TyEnv{ImportSorts: []Sort{SortNat}}

	assert.True(t, checkOK(t, env, nil, Base{PropConst{PropTrue}}).Equal(SortProp))
	assert.True(t, checkOK(t, env, nil, Base{PropConst{PropAnd}}).
		Equal(SortFunc{SortProp, SortFunc{SortProp, SortProp}}))
	assert.True(t, checkOK(t, env, nil, Base{NatValOf(42)}).Equal(SortNat))
	assert.True(t, checkOK(t, env, nil, Base{NatConst{Op: NatAdd}}).
		Equal(SortFunc{SortNat, SortFunc{SortNat, SortNat}}))
	assert.True(t, checkOK(t, env, nil, Base{NatConst{Op: NatLe}}).
		Equal(SortFunc{SortNat, SortFunc{SortNat, SortProp}}))

	// Resolved primitives.
	assert.True(t, checkOK(t, env, nil, Base{EqConst{SortNat}}).
		Equal(SortFunc{SortNat, SortFunc{SortNat, SortProp}}))
	assert.True(t, checkOK(t, env, nil, Base{ForallConst{SortNat}}).
		Equal(SortFunc{SortFunc{SortNat, SortProp}, SortProp}))

	// Import forms type through the import table.
	assert.True(t, checkOK(t, env, nil, Base{EqIConst{Idx: 0}}).
		Equal(SortFunc{SortNat, SortFunc{SortNat, SortProp}}))
	checkFails(t, env, nil, Base{EqIConst{Idx: 1}})
	checkFails(t, env, nil, Base{ForallIConst{Idx: 5}})
}

func TestCheckScenarioForallImplication(t *testing.T) {
	// Given p, q : Nat -> Prop, the sentence
	//   forall x : Nat, p x -> q x
	// is a Prop.
	pred := SortFunc{SortNat, SortProp}
	env := &TyEnv{AtomSorts: []Sort{pred, pred}}

	body := MkImp(
		App{SortNat, Atom{Idx: 0}, BVar{0}},
		App{SortNat, Atom{Idx: 1}, BVar{0}},
	)
	sentence := MkForallEF(SortNat, body)
	assert.True(t, checkOK(t, env, nil, sentence).Equal(SortProp))
	assert.Equal(t, 0, sentence.MaxLooseBVarSucc())

	// Typing is deterministic: re-checking gives the same sort.
	again := checkOK(t, env, nil, sentence)
	assert.True(t, again.Equal(SortProp))
}

func TestCheckClosedRejectsLooseVariables(t *testing.T) {
	env := &TyEnv{}
	_, err := env.CheckClosed(BVar{0})
	assert.ErrorIs(t, err, ErrIllTyped)
}

func TestWellScoped(t *testing.T) {
	env := &TyEnv{EtomSorts: []Sort{SortNat}}
	assert.True(t, env.WellScoped(0, Atom{Idx: 0}))
	assert.True(t, env.WellScoped(1, BVar{0}))
	assert.False(t, env.WellScoped(0, BVar{0}))
	assert.True(t, env.WellScoped(0, Etom{Idx: 0}))
	assert.False(t, env.WellScoped(0, Etom{Idx: 1}))
}
