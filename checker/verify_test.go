package checker

import (
	"errors"
	"testing"

	"github.com/atomb/lean-auto/lam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// certFixture builds the instruction stream deriving `q 3` from
// `forall x, p x -> q x` and `p 3`.
func certFixture() *CertInput {
	rule := lam.MkForallEF(lam.SortNat,
		lam.MkImp(pApp(0, lam.BVar{Idx: 0}), pApp(1, lam.BVar{Idx: 0})))
	return &CertInput{
		AtomSorts: []lam.Sort{predNat, predNat},
		Instrs: []Instr{
			{Assert: rule},
			{Assert: pApp(0, natLit(3))},
			{Step: StepInstN{Pos: 0, Witnesses: []lam.Term{natLit(3)}}},
			{Step: StepMP{ImpPos: 2, HypPos: 1}},
		},
		Goal: Valid{Ctx: nil, Term: pApp(1, natLit(3))},
	}
}

func TestStrategiesCertifyDerivedGoal(t *testing.T) {
	in := certFixture()
	for _, st := range DefaultStrategies() {
		assert.NoError(t, st.Certify(in), st.Name())
	}
	assert.NoError(t, CertifyAll(in))
}

func TestStrategiesRejectUnderivedGoal(t *testing.T) {
	in := certFixture()
	in.Goal = Valid{Ctx: nil, Term: pApp(1, natLit(4))}

	for _, st := range DefaultStrategies() {
		assert.Error(t, st.Certify(in), st.Name())
	}
	// Unanimous rejection surfaces the shared failure, not a mismatch.
	err := CertifyAll(in)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCertMismatch)
}

func TestStrategiesRejectBrokenStream(t *testing.T) {
	in := certFixture()
	// Point the modus ponens at the wrong hypothesis.
	in.Instrs[3] = Instr{Step: StepMP{ImpPos: 2, HypPos: 0}}

	for _, st := range DefaultStrategies() {
		assert.Error(t, st.Certify(in), st.Name())
	}
	assert.Error(t, CertifyAll(in))
}

// alwaysPass certifies anything; used to force strategy disagreement.
type alwaysPass struct{}

func (alwaysPass) Name() string             { return "alwaysPass" }
func (alwaysPass) Certify(*CertInput) error { return nil }

func TestCertifyAllFlagsDisagreement(t *testing.T) {
	in := certFixture()
	in.Goal = Valid{Ctx: nil, Term: pApp(1, natLit(4))}

	err := CertifyAll(in, DirectStrategy{}, alwaysPass{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCertMismatch)
}

func TestCertifyAllDefaultsToBuiltins(t *testing.T) {
	in := certFixture()
	assert.NoError(t, CertifyAll(in))

	var nilStrategies []Strategy
	assert.NoError(t, CertifyAll(in, nilStrategies...))
}

func TestReplayStopsAtFirstFailure(t *testing.T) {
	in := certFixture()
	in.Instrs = append(in.Instrs, Instr{Step: StepIntroN{Pos: 3, N: 1}})

	_, err := in.replay()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrongShape))
}
