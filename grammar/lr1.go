package grammar

import (
	"fmt"

	verr "github.com/nihei9/tarkan/error"
)

type StateNum int

func (n StateNum) Int() int {
	return int(n)
}

func (n StateNum) String() string {
	return fmt.Sprintf("%v", int(n))
}

type TokenTransition struct {
	Token Token
	State StateNum
}

type RuleTransition struct {
	Rule  RuleID
	State StateNum
}

type ReduceEntry struct {
	Token     Token
	Reductend ReductendPosition
}

// LRState is a canonical LR(1) state. Its transitions and reductions are kept in the order they were found.
type LRState struct {
	Num    StateNum
	Kernel *ItemSet
	Items  *ItemSet

	Shifts  []*TokenTransition
	GoTos   []*RuleTransition
	Reduces []*ReduceEntry

	shift  map[Token]StateNum
	reduce map[Token]ReductendPosition
}

func (s *LRState) ShiftTarget(tok Token) (StateNum, bool) {
	n, ok := s.shift[tok]
	return n, ok
}

func (s *LRState) ReduceOn(tok Token) (ReductendPosition, bool) {
	r, ok := s.reduce[tok]
	return r, ok
}

func (s *LRState) GoToTarget(rule RuleID) (StateNum, bool) {
	for _, t := range s.GoTos {
		if t.Rule == rule {
			return t.State, true
		}
	}
	return 0, false
}

type LRGraph struct {
	Grammar   *Grammar
	States    []*LRState
	Start     StateNum
	Conflicts []Conflict
}

type lr1Builder struct {
	g     *Grammar
	graph *LRGraph
	index map[string]StateNum
}

// BuildLR1 builds the canonical LR(1) automaton. When the grammar has conflicts, it returns the automaton
// together with a verr.SpecErrors holding every conflict so that callers can still describe the states.
func BuildLR1(g *Grammar) (*LRGraph, error) {
	b := &lr1Builder{
		g: g,
		graph: &LRGraph{
			Grammar: g,
		},
		index: map[string]StateNum{},
	}

	seed := NewItemSet()
	for _, p := range g.InitialPositions(g.StartRule()) {
		seed.Add(p, NewLookaheadSet(TokenEOF))
	}
	b.graph.Start, _ = b.addState(seed)

	// States are appended while they are expanded, so the slice doubles as the work list.
	for i := 0; i < len(b.graph.States); i++ {
		b.expand(b.graph.States[i])
	}

	tracer().Debugf("LR(1) automaton: %v states, %v conflicts", len(b.graph.States), len(b.graph.Conflicts))

	if len(b.graph.Conflicts) > 0 {
		var errs verr.SpecErrors
		for _, c := range b.graph.Conflicts {
			errs = append(errs, b.conflictError(c))
		}
		return b.graph, errs
	}
	return b.graph, nil
}

func (b *lr1Builder) addState(kernel *ItemSet) (StateNum, bool) {
	items := b.g.Closure(kernel)
	key := items.Key()
	if num, ok := b.index[key]; ok {
		return num, false
	}
	num := StateNum(len(b.graph.States))
	b.graph.States = append(b.graph.States, &LRState{
		Num:    num,
		Kernel: kernel,
		Items:  items,
		shift:  map[Token]StateNum{},
		reduce: map[Token]ReductendPosition{},
	})
	b.index[key] = num
	return num, true
}

func (b *lr1Builder) expand(state *LRState) {
	for _, sym := range b.g.nextSymbols(state.Items) {
		target, _ := b.addState(b.g.gotoKernel(state.Items, sym))
		if sym.IsRule {
			state.GoTos = append(state.GoTos, &RuleTransition{
				Rule:  sym.Rule,
				State: target,
			})
			continue
		}
		state.Shifts = append(state.Shifts, &TokenTransition{
			Token: sym.Token,
			State: target,
		})
		state.shift[sym.Token] = target
	}

	for _, p := range state.Items.Positions() {
		if b.g.NextEvent(p).Kind != EventReduce {
			continue
		}
		la, _ := state.Items.Lookahead(p)
		r := p.Reductend()
		for _, tok := range la.Tokens() {
			if target, ok := state.shift[tok]; ok {
				b.graph.Conflicts = append(b.graph.Conflicts, &ShiftReduceConflict{
					State:       state.Num,
					Token:       tok,
					ShiftTarget: target,
					Reduce:      r,
					shiftItems:  b.shiftItems(state, tok),
					reduceItem:  b.g.ItemView(p),
				})
				continue
			}
			if prev, ok := state.reduce[tok]; ok {
				if prev != r {
					b.graph.Conflicts = append(b.graph.Conflicts, &ReduceReduceConflict{
						State: state.Num,
						Token: tok,
						A:     prev,
						B:     r,
						items: [2]string{
							b.g.ItemView(finalPosition(b.g, prev)),
							b.g.ItemView(p),
						},
					})
				}
				continue
			}
			state.reduce[tok] = r
			state.Reduces = append(state.Reduces, &ReduceEntry{
				Token:     tok,
				Reductend: r,
			})
		}
	}
}

func (b *lr1Builder) shiftItems(state *LRState, tok Token) []string {
	var items []string
	for _, p := range state.Items.Positions() {
		if b.g.NextEvent(p).matches(TokenSymbol(tok)) {
			items = append(items, b.g.ItemView(p))
		}
	}
	return items
}

func (b *lr1Builder) conflictError(c Conflict) *verr.SpecError {
	var r ReductendPosition
	switch c := c.(type) {
	case *ShiftReduceConflict:
		r = c.Reduce
	case *ReduceReduceConflict:
		r = c.B
	}
	specErr := &verr.SpecError{
		Cause:  c,
		Detail: c.detail(),
	}
	if rule, ok := b.g.RuleByID(r.Rule); ok && r.Alternative < len(rule.Alternatives) {
		alt := rule.Alternatives[r.Alternative]
		specErr.Row = alt.Row
		specErr.Col = alt.Col
	}
	return specErr
}

func finalPosition(g *Grammar, r ReductendPosition) Position {
	rule, _ := g.RuleByID(r.Rule)
	return Position{
		Rule:        r.Rule,
		Alternative: r.Alternative,
		Dot:         len(rule.Alternatives[r.Alternative].Components),
	}
}
