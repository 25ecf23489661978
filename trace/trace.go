package trace

import (
	"encoding/json"
	"fmt"

	"github.com/atomb/lean-auto/checker"
	"github.com/atomb/lean-auto/lam"
)

// Trace is a complete serializable derivation: the atom and import sort
// tables the session starts from, the instruction stream that builds
// it, and the positions of the entries the producer cares about.
type Trace struct {
	AtomSorts   []lam.Sort
	ImportSorts []lam.Sort
	Instrs      []checker.Instr
	Goals       []int
}

type instrNode struct {
	Assert *termNode `json:"assert,omitempty"`
	Step   *stepNode `json:"step,omitempty"`
}

type traceFile struct {
	AtomSorts   []*sortNode `json:"atomSorts"`
	ImportSorts []*sortNode `json:"importSorts,omitempty"`
	Instrs      []instrNode `json:"instrs"`
	Goals       []int       `json:"goals,omitempty"`
}

// Encode renders a trace as JSON.
func Encode(t *Trace) ([]byte, error) {
	file := traceFile{
		AtomSorts:   encodeSorts(t.AtomSorts),
		ImportSorts: encodeSorts(t.ImportSorts),
		Instrs:      make([]instrNode, len(t.Instrs)),
		Goals:       t.Goals,
	}
	for i, ins := range t.Instrs {
		switch {
		case ins.Assert != nil:
			file.Instrs[i].Assert = encodeTerm(ins.Assert)
		case ins.Step != nil:
			n, err := encodeStep(ins.Step)
			if err != nil {
				return nil, fmt.Errorf("instr %d: %w", i, err)
			}
			file.Instrs[i].Step = n
		default:
			return nil, fmt.Errorf("instr %d: empty instruction", i)
		}
	}
	return json.MarshalIndent(file, "", "  ")
}

// Decode parses a JSON trace.
func Decode(data []byte) (*Trace, error) {
	var file traceFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	atomSorts, err := decodeSorts(file.AtomSorts)
	if err != nil {
		return nil, fmt.Errorf("atom sorts: %w", err)
	}
	importSorts, err := decodeSorts(file.ImportSorts)
	if err != nil {
		return nil, fmt.Errorf("import sorts: %w", err)
	}
	t := &Trace{AtomSorts: atomSorts, ImportSorts: importSorts, Goals: file.Goals}
	t.Instrs = make([]checker.Instr, len(file.Instrs))
	for i, n := range file.Instrs {
		switch {
		case n.Assert != nil:
			term, err := decodeTerm(n.Assert)
			if err != nil {
				return nil, fmt.Errorf("instr %d: %w", i, err)
			}
			t.Instrs[i].Assert = term
		case n.Step != nil:
			step, err := decodeStep(n.Step)
			if err != nil {
				return nil, fmt.Errorf("instr %d: %w", i, err)
			}
			t.Instrs[i].Step = step
		default:
			return nil, fmt.Errorf("instr %d: empty instruction", i)
		}
	}
	return t, nil
}

// Run folds a trace into a fresh session, applying every instruction in
// order. Assertions carry the trace itself as their proof payload.
func Run(t *Trace, opts ...checker.Option) (*checker.Session, error) {
	s := checker.NewSession(t.AtomSorts, opts...)
	if err := s.DeclareImports(t.ImportSorts); err != nil {
		return nil, err
	}
	for i, ins := range t.Instrs {
		var err error
		if ins.Assert != nil {
			_, err = s.Assert(t, ins.Assert)
		} else {
			_, err = s.Apply(ins.Step)
		}
		if err != nil {
			return nil, fmt.Errorf("instr %d: %w", i, err)
		}
	}
	for _, g := range t.Goals {
		if _, err := s.Entry(g); err != nil {
			return nil, fmt.Errorf("goal %d: %w", g, err)
		}
	}
	return s, nil
}

// GoalEntries resolves the trace's goal positions against a session
// built by Run, typically to assemble certificate inputs.
func GoalEntries(s *checker.Session, t *Trace) ([]checker.REntry, error) {
	out := make([]checker.REntry, len(t.Goals))
	for i, g := range t.Goals {
		e, err := s.Entry(g)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// entryNode is the JSON form of a table entry.
type entryNode struct {
	K    string      `json:"k"` // "wf" | "valid" | "nonempty"
	Ctx  []*sortNode `json:"ctx,omitempty"`
	Sort *sortNode   `json:"sort,omitempty"`
	Term *termNode   `json:"term,omitempty"`
}

func encodeEntry(e checker.REntry) (entryNode, error) {
	switch e := e.(type) {
	case checker.WF:
		return entryNode{K: "wf", Ctx: encodeSorts(e.Ctx), Sort: encodeSort(e.Sort), Term: encodeTerm(e.Term)}, nil
	case checker.Valid:
		return entryNode{K: "valid", Ctx: encodeSorts(e.Ctx), Term: encodeTerm(e.Term)}, nil
	case checker.NonEmpty:
		return entryNode{K: "nonempty", Sort: encodeSort(e.Sort)}, nil
	default:
		return entryNode{}, fmt.Errorf("unknown entry kind %T", e)
	}
}

func decodeEntry(n entryNode) (checker.REntry, error) {
	switch n.K {
	case "wf":
		ctx, err := decodeSorts(n.Ctx)
		if err != nil {
			return nil, err
		}
		sort, err := decodeSort(n.Sort)
		if err != nil {
			return nil, err
		}
		term, err := decodeTerm(n.Term)
		if err != nil {
			return nil, err
		}
		return checker.WF{Ctx: ctx, Sort: sort, Term: term}, nil
	case "valid":
		ctx, err := decodeSorts(n.Ctx)
		if err != nil {
			return nil, err
		}
		term, err := decodeTerm(n.Term)
		if err != nil {
			return nil, err
		}
		return checker.Valid{Ctx: ctx, Term: term}, nil
	case "nonempty":
		sort, err := decodeSort(n.Sort)
		if err != nil {
			return nil, err
		}
		return checker.NonEmpty{Sort: sort}, nil
	default:
		return nil, fmt.Errorf("unknown entry kind %q", n.K)
	}
}

// Table is a finished table snapshot, entries in dense position order.
// It is what downstream consumers read when they only need the facts,
// not the derivation.
type Table struct {
	AtomSorts   []lam.Sort
	ImportSorts []lam.Sort
	EtomSorts   []lam.Sort
	Entries     []checker.REntry
}

type tableFile struct {
	AtomSorts   []*sortNode `json:"atomSorts"`
	ImportSorts []*sortNode `json:"importSorts,omitempty"`
	EtomSorts   []*sortNode `json:"etomSorts,omitempty"`
	Entries     []entryNode `json:"entries"`
}

// EncodeTable snapshots a session's table as JSON.
func EncodeTable(s *checker.Session) ([]byte, error) {
	file := tableFile{
		AtomSorts:   encodeSorts(s.Env.AtomSorts),
		ImportSorts: encodeSorts(s.Env.ImportSorts),
		EtomSorts:   encodeSorts(s.Env.EtomSorts),
		Entries:     make([]entryNode, s.Len()),
	}
	for pos := 0; pos < s.Len(); pos++ {
		e, err := s.Entry(pos)
		if err != nil {
			return nil, err
		}
		if file.Entries[pos], err = encodeEntry(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", pos, err)
		}
	}
	return json.MarshalIndent(file, "", "  ")
}

// DecodeTable parses a table snapshot.
func DecodeTable(data []byte) (*Table, error) {
	var file tableFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing table: %w", err)
	}
	atomSorts, err := decodeSorts(file.AtomSorts)
	if err != nil {
		return nil, fmt.Errorf("atom sorts: %w", err)
	}
	importSorts, err := decodeSorts(file.ImportSorts)
	if err != nil {
		return nil, fmt.Errorf("import sorts: %w", err)
	}
	etomSorts, err := decodeSorts(file.EtomSorts)
	if err != nil {
		return nil, fmt.Errorf("etom sorts: %w", err)
	}
	t := &Table{AtomSorts: atomSorts, ImportSorts: importSorts, EtomSorts: etomSorts}
	t.Entries = make([]checker.REntry, len(file.Entries))
	for i, n := range file.Entries {
		if t.Entries[i], err = decodeEntry(n); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return t, nil
}
