// Package checker maintains the append-only derivation table: external
// assertions and checking steps are folded, strictly in input order,
// into a log of judgments whose every entry is justified by earlier
// positions. The table is monotonic; any step failure aborts the session
// with no partial append.
package checker

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atomb/lean-auto/lam"
)

// Assertion is an externally supplied (trusted) fact: an opaque proof
// value from the reifier paired with the asserted term.
type Assertion struct {
	Proof any
	Term  lam.Term
}

// tableEntry is one appended judgment together with its justification,
// which the minimizer traverses backward.
type tableEntry struct {
	Entry REntry
	// Step that produced the entry; nil for external assertions.
	Step Step
	// Refs are the table positions the step consumed.
	Refs []int
	// Assertion indexes the assertion list, -1 for derived entries.
	Assertion int
	// Etom allocated together with this entry, -1 if none.
	Etom int
}

type defBinding struct {
	etom int
	pos  int
}

// Session is the mutable builder for one reification session. It owns
// the entry table, the etom sort table and the lazily grown import side
// table. It is never shared across sessions and is not safe for
// concurrent use; the core is a single-threaded fold.
type Session struct {
	ID     string
	Env    *lam.TyEnv
	logger *slog.Logger

	entries    []tableEntry
	index      map[string]int
	assertions []Assertion
	defs       map[string]defBinding
	importIdx  map[string]int
	// etomBirth[i] is the table position whose step allocated etom i.
	etomBirth []int
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession creates an empty session over a fixed term-atom sort table.
// The table and etom array live exactly as long as the session.
func NewSession(atomSorts []lam.Sort, opts ...Option) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Env:       &lam.TyEnv{AtomSorts: atomSorts},
		index:     make(map[string]int),
		defs:      make(map[string]defBinding),
		importIdx: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session", s.ID)
	return s
}

// DeclareAtom appends a term atom of the given sort, returning its index.
func (s *Session) DeclareAtom(sort lam.Sort) int {
	s.Env.AtomSorts = append(s.Env.AtomSorts, sort)
	return len(s.Env.AtomSorts) - 1
}

// ImportIdxFor returns the import-table index for a quantified sort,
// appending the sort on first encounter.
func (s *Session) ImportIdxFor(sort lam.Sort) int {
	key := sort.String()
	if idx, ok := s.importIdx[key]; ok {
		return idx
	}
	idx := len(s.Env.ImportSorts)
	s.Env.ImportSorts = append(s.Env.ImportSorts, sort)
	s.importIdx[key] = idx
	return idx
}

// DeclareImports seeds the import side table with sorts recorded by an
// earlier session, in their original index order, so that import-form
// constants in a replayed stream resolve to the same indices.
func (s *Session) DeclareImports(sorts []lam.Sort) error {
	for i, sort := range sorts {
		if idx := s.ImportIdxFor(sort); idx != i {
			return fmt.Errorf("%w: %s at indices %d and %d", ErrBadImportTable, sort, idx, i)
		}
	}
	return nil
}

// Len is the number of table entries.
func (s *Session) Len() int { return len(s.entries) }

// EtomCount is the number of allocated etoms.
func (s *Session) EtomCount() int { return len(s.Env.EtomSorts) }

// Entry returns the judgment at a position.
func (s *Session) Entry(pos int) (REntry, error) {
	if pos < 0 || pos >= len(s.entries) {
		return nil, fmt.Errorf("%w: %d (table length %d)", ErrBadPosition, pos, len(s.entries))
	}
	return s.entries[pos].Entry, nil
}

// Lookup finds the position of an entry through the dedup index.
func (s *Session) Lookup(e REntry) (int, bool) {
	pos, ok := s.index[e.Key()]
	return pos, ok
}

// Assertions returns the external assertion list.
func (s *Session) Assertions() []Assertion { return s.assertions }

// validAt fetches a Valid entry, failing when the position is absent or
// holds a different entry kind.
func (s *Session) validAt(pos int) (Valid, error) {
	e, err := s.Entry(pos)
	if err != nil {
		return Valid{}, err
	}
	v, ok := e.(Valid)
	if !ok {
		return Valid{}, fmt.Errorf("%w: position %d holds %s, want validity", ErrWrongShape, pos, e)
	}
	return v, nil
}

// addEntry appends e unless an equal entry exists, in which case the
// existing position is returned. Deduplication is part of the contract,
// not an optimization: positions are stable identities for judgments.
func (s *Session) addEntry(e REntry, te tableEntry) int {
	key := e.Key()
	if pos, ok := s.index[key]; ok {
		return pos
	}
	te.Entry = e
	pos := len(s.entries)
	s.entries = append(s.entries, te)
	s.index[key] = pos
	return pos
}

// Assert records an external assertion as a trusted validity entry with
// empty context. The term must be closed, etom-free and of sort Prop.
// Re-asserting an already-seen term is a no-op returning the original
// position.
func (s *Session) Assert(proof any, t lam.Term) (int, error) {
	if t.MaxLooseBVarSucc() != 0 {
		return 0, fmt.Errorf("%w: asserted term %s has loose bound variables", ErrNotClosed, t)
	}
	if t.MaxEVarSucc() != 0 {
		return 0, fmt.Errorf("%w: asserted term %s depends on etoms", ErrNotClosed, t)
	}
	sort, err := s.Env.CheckClosed(t)
	if err != nil {
		return 0, err
	}
	if !sort.Equal(lam.SortProp) {
		return 0, fmt.Errorf("%w: asserted term %s has sort %s, want Prop", lam.ErrIllTyped, t, sort)
	}
	entry := Valid{Ctx: nil, Term: t}
	if pos, ok := s.Lookup(entry); ok {
		return pos, nil
	}
	aidx := len(s.assertions)
	s.assertions = append(s.assertions, Assertion{Proof: proof, Term: t})
	pos := s.addEntry(entry, tableEntry{Assertion: aidx, Etom: -1})
	s.logger.Debug("asserted external fact", "pos", pos, "term", t.String())
	return pos, nil
}

// Apply evaluates one checking step against the current state. On
// success it returns the position of the (possibly pre-existing) entry;
// on failure the session is unchanged and the error is fatal to the
// session by contract.
func (s *Session) Apply(step Step) (int, error) {
	eff, err := step.apply(s)
	if err != nil {
		s.logger.Error("step failed", "kind", step.Kind(), "err", err)
		return 0, fmt.Errorf("step %s: %w", step.Kind(), err)
	}
	te := tableEntry{Step: step, Refs: step.Refs(), Assertion: -1, Etom: -1}
	if eff.newEtomSort != nil {
		etom := len(s.Env.EtomSorts)
		s.Env.EtomSorts = append(s.Env.EtomSorts, eff.newEtomSort)
		s.etomBirth = append(s.etomBirth, len(s.entries))
		te.Etom = etom
	}
	pos := s.addEntry(eff.entry, te)
	s.logger.Debug("applied step", "kind", step.Kind(), "pos", pos, "entry", eff.entry.String())
	return pos, nil
}

// stepEffect is the single outcome of a successful step: either a plain
// entry, or an entry paired with a fresh etom allocation.
type stepEffect struct {
	entry       REntry
	newEtomSort lam.Sort
}
