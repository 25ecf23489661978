package lam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermEqual(t *testing.T) {
	assert.True(t, Atom{Idx: 1}.Equal(Atom{Idx: 1}))
	assert.False(t, Atom{Idx: 1}.Equal(Atom{Idx: 2}))
	assert.False(t, Atom{Idx: 1}.Equal(Etom{Idx: 1}))
	assert.True(t, Etom{Idx: 0}.Equal(Etom{Idx: 0}))
	assert.True(t, BVar{Idx: 3}.Equal(BVar{Idx: 3}))
	assert.True(t, Base{PropConst{PropTrue}}.Equal(Base{PropConst{PropTrue}}))
	assert.False(t, Base{PropConst{PropTrue}}.Equal(Base{PropConst{PropFalse}}))

	id := Abs{SortNat, BVar{0}}
	assert.True(t, id.Equal(Abs{SortNat, BVar{0}}))
	assert.False(t, id.Equal(Abs{SortInt, BVar{0}}))
	assert.False(t, id.Equal(Abs{SortNat, BVar{1}}))

	app := App{SortNat, Atom{Idx: 0}, BVar{0}}
	assert.True(t, app.Equal(App{SortNat, Atom{Idx: 0}, BVar{0}}))
	assert.False(t, app.Equal(App{SortInt, Atom{Idx: 0}, BVar{0}}))
}

func TestTermSize(t *testing.T) {
	assert.Equal(t, 1, Atom{Idx: 0}.Size())
	assert.Equal(t, 2, Abs{SortNat, BVar{0}}.Size())
	assert.Equal(t, 3, App{SortNat, Atom{Idx: 0}, Atom{Idx: 1}}.Size())
	// not (a0 and a1): two app nodes for and, one for not, three leaves.
	n := MkNot(MkAnd(Atom{Idx: 0}, Atom{Idx: 1}))
	assert.Equal(t, 7, n.Size())
}

func TestMaxLooseBVarSucc(t *testing.T) {
	assert.Equal(t, 0, Atom{Idx: 0}.MaxLooseBVarSucc())
	assert.Equal(t, 1, BVar{0}.MaxLooseBVarSucc())
	assert.Equal(t, 4, BVar{3}.MaxLooseBVarSucc())

	// A binder absorbs one level.
	assert.Equal(t, 0, Abs{SortNat, BVar{0}}.MaxLooseBVarSucc())
	assert.Equal(t, 1, Abs{SortNat, BVar{1}}.MaxLooseBVarSucc())
	assert.Equal(t, 0, Abs{SortNat, Abs{SortNat, BVar{1}}}.MaxLooseBVarSucc())

	// Applications take the max of both sides.
	app := App{SortNat, BVar{2}, BVar{0}}
	assert.Equal(t, 3, app.MaxLooseBVarSucc())
}

func TestMaxEVarSucc(t *testing.T) {
	assert.Equal(t, 0, Atom{Idx: 5}.MaxEVarSucc())
	assert.Equal(t, 3, Etom{Idx: 2}.MaxEVarSucc())
	// Binders do not touch etom indices.
	assert.Equal(t, 3, Abs{SortNat, Etom{Idx: 2}}.MaxEVarSucc())
	assert.Equal(t, 3, App{SortNat, Etom{Idx: 2}, Etom{Idx: 0}}.MaxEVarSucc())
}

func TestAppRoundTrip(t *testing.T) {
	fn := Atom{Idx: 0}
	args := []SortedTerm{
		{SortNat, Atom{Idx: 1}},
		{SortBool, Base{BoolConst{BoolTrue}}},
		{SortNat, BVar{0}},
	}
	tm := MkAppN(fn, args)

	assert.True(t, AppFn(tm).Equal(fn))
	got := AppArgs(tm)
	require.Len(t, got, 3)
	for i := range args {
		assert.True(t, got[i].Sort.Equal(args[i].Sort))
		assert.True(t, got[i].Term.Equal(args[i].Term))
	}
	assert.True(t, MkAppN(AppFn(tm), AppArgs(tm)).Equal(tm))
}

func TestAppArgsN(t *testing.T) {
	fn := Atom{Idx: 0}
	tm := MkAppN(fn, []SortedTerm{{SortNat, Atom{Idx: 1}}, {SortNat, Atom{Idx: 2}}})

	head, args, ok := AppArgsN(2, tm)
	require.True(t, ok)
	assert.True(t, head.Equal(fn))
	assert.Len(t, args, 2)
	assert.True(t, args[0].Term.Equal(Atom{Idx: 1}))
	assert.True(t, args[1].Term.Equal(Atom{Idx: 2}))

	// Peeling one leaves the partial application as head.
	head, args, ok = AppArgsN(1, tm)
	require.True(t, ok)
	assert.Len(t, args, 1)
	assert.True(t, args[0].Term.Equal(Atom{Idx: 2}))
	assert.True(t, head.Equal(App{SortNat, fn, Atom{Idx: 1}}))

	_, _, ok = AppArgsN(3, tm)
	assert.False(t, ok)
}

func TestBVarApps(t *testing.T) {
	f := Atom{Idx: 0}
	tm := BVarApps(f, []Sort{SortNat, SortBool})
	want := App{SortBool, App{SortNat, f, BVar{1}}, BVar{0}}
	assert.True(t, tm.Equal(want))
}

func TestMkLamFNAndMkForallEFN(t *testing.T) {
	body := MkEq(SortNat, BVar{1}, BVar{0})
	lam := MkLamFN(body, []Sort{SortNat, SortNat})
	assert.Equal(t, 0, lam.MaxLooseBVarSucc())

	all := MkForallEFN(body, []Sort{SortNat, SortNat})
	assert.Equal(t, 0, all.MaxLooseBVarSucc())

	// Outermost binder comes first in the sort list.
	abs, ok := lam.(Abs)
	require.True(t, ok)
	assert.True(t, abs.Sort.Equal(SortNat))
	inner, ok := abs.Body.(Abs)
	require.True(t, ok)
	assert.True(t, inner.Body.Equal(body))
}
