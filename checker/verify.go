package checker

import (
	"fmt"

	"github.com/atomb/lean-auto/lam"
)

// Instr is one element of a session's input stream: either an external
// assertion or a checking step. Order is significant; positions are
// assigned by the fold.
type Instr struct {
	// Assert, when non-nil, is an externally trusted fact.
	Assert lam.Term
	// Step is consumed when Assert is nil.
	Step Step
}

// CertInput is a complete, replayable description of a derivation
// together with the judgment to certify.
type CertInput struct {
	AtomSorts   []lam.Sort
	ImportSorts []lam.Sort
	Instrs      []Instr
	Goal        REntry
}

// replay folds the instruction stream into a fresh session.
func (in *CertInput) replay() (*Session, error) {
	s := NewSession(in.AtomSorts)
	if err := s.DeclareImports(in.ImportSorts); err != nil {
		return nil, err
	}
	for i, instr := range in.Instrs {
		var err error
		if instr.Assert != nil {
			_, err = s.Assert(nil, instr.Assert)
		} else {
			_, err = s.Apply(instr.Step)
		}
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return s, nil
}

// Strategy is one interchangeable way of checking that a derivation
// certifies a judgment. All strategies must certify the identical
// judgment for identical input; a consumer rejects the certificate if
// any strategy disagrees.
type Strategy interface {
	Name() string
	Certify(in *CertInput) error
}

// DirectStrategy re-evaluates every instruction and scans the resulting
// table for the goal.
type DirectStrategy struct{}

func (DirectStrategy) Name() string { return "direct" }

func (DirectStrategy) Certify(in *CertInput) error {
	s, err := in.replay()
	if err != nil {
		return err
	}
	for pos := range s.entries {
		if s.entries[pos].Entry.Equal(in.Goal) {
			return nil
		}
	}
	return fmt.Errorf("goal %s not derived", in.Goal)
}

// IndirectStrategy re-evaluates every instruction but resolves the goal
// through the table's precomputed lookup index instead of re-comparing
// entries.
type IndirectStrategy struct{}

func (IndirectStrategy) Name() string { return "indirect" }

func (IndirectStrategy) Certify(in *CertInput) error {
	s, err := in.replay()
	if err != nil {
		return err
	}
	if _, ok := s.Lookup(in.Goal); !ok {
		return fmt.Errorf("goal %s not derived", in.Goal)
	}
	return nil
}

// CompiledStrategy pre-compiles the instruction stream into closures,
// executes them, and collapses the whole check to a single boolean
// comparison on the goal key.
type CompiledStrategy struct{}

func (CompiledStrategy) Name() string { return "compiled" }

func (CompiledStrategy) Certify(in *CertInput) error {
	compiled := make([]func(*Session) error, len(in.Instrs))
	for i, instr := range in.Instrs {
		if instr.Assert != nil {
			term := instr.Assert
			compiled[i] = func(s *Session) error {
				_, err := s.Assert(nil, term)
				return err
			}
		} else {
			step := instr.Step
			compiled[i] = func(s *Session) error {
				_, err := s.Apply(step)
				return err
			}
		}
	}
	s := NewSession(in.AtomSorts)
	ok := s.DeclareImports(in.ImportSorts) == nil
	for i := 0; ok && i < len(compiled); i++ {
		ok = compiled[i](s) == nil
	}
	if ok {
		_, ok = s.Lookup(in.Goal)
	}
	if !ok {
		return fmt.Errorf("goal %s not certified", in.Goal)
	}
	return nil
}

// DefaultStrategies lists every built-in strategy.
func DefaultStrategies() []Strategy {
	return []Strategy{DirectStrategy{}, IndirectStrategy{}, CompiledStrategy{}}
}

// CertifyAll runs every strategy and requires unanimity: it returns nil
// only when all certify, the shared failure when all reject, and
// ErrCertMismatch when they disagree.
func CertifyAll(in *CertInput, strategies ...Strategy) error {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	var firstErr error
	failures := 0
	for _, st := range strategies {
		if err := st.Certify(in); err != nil {
			failures++
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", st.Name(), err)
			}
		}
	}
	switch failures {
	case 0:
		return nil
	case len(strategies):
		return firstErr
	default:
		return fmt.Errorf("%w: %d of %d strategies rejected (%v)", ErrCertMismatch, failures, len(strategies), firstErr)
	}
}
