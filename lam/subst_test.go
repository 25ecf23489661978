package lam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBVarLift(t *testing.T) {
	// Closed terms are untouched (and not reallocated).
	closed := Abs{SortNat, BVar{0}}
	assert.True(t, BVarLift(3, closed).Equal(closed))
	assert.True(t, BVarLift(0, BVar{2}).Equal(BVar{2}))

	// Loose variables shift; bound ones under the binder do not.
	tm := Abs{SortNat, App{SortNat, BVar{0}, BVar{1}}}
	want := Abs{SortNat, App{SortNat, BVar{0}, BVar{3}}}
	assert.True(t, BVarLift(2, tm).Equal(want))
}

func TestInstNReplacesOutermost(t *testing.T) {
	// !0 gets args[0], !1 gets args[1], higher variables shift down.
	body := MkAppN(BVar{3}, []SortedTerm{{SortNat, BVar{0}}, {SortNat, BVar{1}}})
	got := InstN(body, []Term{Atom{Idx: 7}, Atom{Idx: 8}})
	want := MkAppN(BVar{1}, []SortedTerm{{SortNat, Atom{Idx: 7}}, {SortNat, Atom{Idx: 8}}})
	assert.True(t, got.Equal(want))

	assert.True(t, InstN(body, nil).Equal(body))

	// Lifting past n binders then instantiating those n binders is the
	// identity: no lifted variable can be hit by the substitution.
	args := []Term{Atom{Idx: 7}, Atom{Idx: 8}}
	assert.True(t, InstN(BVarLift(len(args), body), args).Equal(body))
}

func TestInstNLiftsUnderBinders(t *testing.T) {
	// Substituting a term with a loose variable under a binder must lift
	// it past that binder.
	body := Abs{SortNat, App{SortNat, BVar{1}, BVar{0}}}
	got := Inst1(body, BVar{4})
	want := Abs{SortNat, App{SortNat, BVar{5}, BVar{0}}}
	assert.True(t, got.Equal(want))
}

func TestHeadBeta(t *testing.T) {
	id := Abs{SortNat, BVar{0}}
	redex := App{SortNat, id, Atom{Idx: 2}}
	got, ok := HeadBeta(redex)
	require.True(t, ok)
	assert.True(t, got.Equal(Atom{Idx: 2}))

	// The redex may sit under further applications.
	k := Abs{SortNat, Abs{SortNat, BVar{1}}}
	tm := App{SortNat, App{SortNat, k, Atom{Idx: 1}}, Atom{Idx: 2}}
	got, ok = HeadBeta(tm)
	require.True(t, ok)
	assert.True(t, got.Equal(App{SortNat, Abs{SortNat, Atom{Idx: 1}}, Atom{Idx: 2}}))

	// No redex at the head.
	_, ok = HeadBeta(Atom{Idx: 0})
	assert.False(t, ok)
	_, ok = HeadBeta(App{SortNat, Atom{Idx: 0}, redex})
	assert.False(t, ok)
}

func TestBetaBounded(t *testing.T) {
	k := Abs{SortNat, Abs{SortNat, BVar{1}}}
	tm := App{SortNat, App{SortNat, k, Atom{Idx: 1}}, Atom{Idx: 2}}

	// Full reduction takes two steps.
	got, taken := BetaBounded(tm, 10)
	assert.Equal(t, 2, taken)
	assert.True(t, got.Equal(Atom{Idx: 1}))

	// The bound is respected.
	got, taken = BetaBounded(tm, 1)
	assert.Equal(t, 1, taken)
	_, more := HeadBeta(got)
	assert.True(t, more)

	// Normal forms take zero steps.
	_, taken = BetaBounded(Atom{Idx: 0}, 5)
	assert.Equal(t, 0, taken)

	// Redexes inside arguments and under binders are found too.
	inner := App{SortNat, Atom{Idx: 0}, App{SortNat, Abs{SortNat, BVar{0}}, Atom{Idx: 1}}}
	got, taken = BetaBounded(inner, 10)
	assert.Equal(t, 1, taken)
	assert.True(t, got.Equal(App{SortNat, Atom{Idx: 0}, Atom{Idx: 1}}))

	under := Abs{SortNat, App{SortNat, Abs{SortNat, BVar{0}}, BVar{0}}}
	got, taken = BetaBounded(under, 10)
	assert.Equal(t, 1, taken)
	assert.True(t, got.Equal(Abs{SortNat, BVar{0}}))
}
