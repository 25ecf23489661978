package checker

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"

	"github.com/atomb/lean-auto/lam"
)

// REntry is one judgment stored in the checker table. Entries are
// immutable once appended.
type REntry interface {
	isEntry()
	Equal(REntry) bool
	// Key is a canonical rendering used by the table's dedup index. The
	// rendering drops application annotations, so keys coincide exactly
	// for entries that are well typed in the same environment, which
	// holds for everything the table appends.
	Key() string
	String() string
}

// WF records that Term has Sort under Ctx.
type WF struct {
	Ctx  []lam.Sort
	Sort lam.Sort
	Term lam.Term
}

// Valid records that Term (of sort Prop under Ctx) holds under every
// extension of the valuation to the bound context. External axioms are
// Valid entries with an empty context.
type Valid struct {
	Ctx  []lam.Sort
	Term lam.Term
}

// NonEmpty records that Sort is inhabited.
type NonEmpty struct {
	Sort lam.Sort
}

func (WF) isEntry()       {}
func (Valid) isEntry()    {}
func (NonEmpty) isEntry() {}

func ctxEqual(a, b []lam.Sort) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (e WF) Equal(other REntry) bool {
	o, ok := other.(WF)
	return ok && ctxEqual(e.Ctx, o.Ctx) && e.Sort.Equal(o.Sort) && e.Term.Equal(o.Term)
}

func (e Valid) Equal(other REntry) bool {
	o, ok := other.(Valid)
	return ok && ctxEqual(e.Ctx, o.Ctx) && e.Term.Equal(o.Term)
}

func (e NonEmpty) Equal(other REntry) bool {
	o, ok := other.(NonEmpty)
	return ok && e.Sort.Equal(o.Sort)
}

func ctxKey(ctx []lam.Sort) string {
	return strings.Join(gfn.Map(ctx, func(s lam.Sort) string { return s.String() }), ",")
}

func (e WF) Key() string {
	return fmt.Sprintf("wf|%s|%s|%s", ctxKey(e.Ctx), e.Term, e.Sort)
}

func (e Valid) Key() string {
	return fmt.Sprintf("valid|%s|%s", ctxKey(e.Ctx), e.Term)
}

func (e NonEmpty) Key() string {
	return fmt.Sprintf("nonempty|%s", e.Sort)
}

func (e WF) String() string {
	return fmt.Sprintf("%s ⊢ %s : %s", lam.CtxString(e.Ctx), e.Term, e.Sort)
}

func (e Valid) String() string {
	return fmt.Sprintf("%s ⊨ %s", lam.CtxString(e.Ctx), e.Term)
}

func (e NonEmpty) String() string {
	return fmt.Sprintf("nonempty %s", e.Sort)
}
