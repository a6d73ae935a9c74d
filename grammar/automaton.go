package grammar

import "fmt"

type TokenID int

// TokenIDEOF is the ID of EOF in every automaton.
const TokenIDEOF = TokenID(0)

type ReductionID int

type StateID int

type ActionKind int

const (
	ActionHalt ActionKind = iota
	ActionShift
	ActionReduce
)

func (k ActionKind) String() string {
	switch k {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	}
	return "halt"
}

type Action struct {
	Kind      ActionKind
	State     StateID
	Reduction ReductionID
}

func Halt() Action {
	return Action{
		Kind: ActionHalt,
	}
}

func Shift(state StateID) Action {
	return Action{
		Kind:  ActionShift,
		State: state,
	}
}

func Reduce(r ReductionID) Action {
	return Action{
		Kind:      ActionReduce,
		Reduction: r,
	}
}

// Encode returns the ACTION table entry: 0 halts, n > 0 shifts to state n-1, and n < 0 reduces
// reduction -n-1.
func (a Action) Encode() int {
	switch a.Kind {
	case ActionShift:
		return int(a.State) + 1
	case ActionReduce:
		return -(int(a.Reduction) + 1)
	}
	return 0
}

func DecodeAction(n int) Action {
	switch {
	case n > 0:
		return Shift(StateID(n - 1))
	case n < 0:
		return Reduce(ReductionID(-n - 1))
	}
	return Halt()
}

func (a Action) String() string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("shift %v", a.State)
	case ActionReduce:
		return fmt.Sprintf("reduce %v", a.Reduction)
	}
	return "halt"
}

// Arg is a named argument of a reduction.
type Arg struct {
	Name string
	Type string
}

type Reduction struct {
	Position ReductendPosition
	RuleName string
	Arity    int
	Code     string

	// Args has an entry per component. The entry of an unbound component is nil.
	Args []*Arg

	ReturnType  string
	PassThrough bool
}

type State struct {
	ID        StateID
	LRState   StateNum
	Lookahead map[TokenID]Action
	GoTo      map[ReductionID]StateID
}

// Automaton is an LR(1) automaton with dense IDs. Tokens and reductions are numbered in order of first use
// along a depth-first walk from the start state, and states in order of first visit.
type Automaton struct {
	Tokens     []Token
	Reductions []*Reduction
	States     []*State
	Start      StateID
	StartRule  string
	RootType   string

	stateIDs map[StateNum]StateID
}

func (a *Automaton) StateOf(n StateNum) (StateID, bool) {
	id, ok := a.stateIDs[n]
	return id, ok
}

// ActionTable returns the ACTION table indexed by state and token.
func (a *Automaton) ActionTable() [][]int {
	tab := make([][]int, len(a.States))
	for i, s := range a.States {
		row := make([]int, len(a.Tokens))
		for tok, act := range s.Lookahead {
			row[tok] = act.Encode()
		}
		tab[i] = row
	}
	return tab
}

// GoToTable returns the GOTO table indexed by state and reduction. An entry is the target state, or 0 when
// absent. The start state is never the target of a goto.
func (a *Automaton) GoToTable() [][]int {
	tab := make([][]int, len(a.States))
	for i, s := range a.States {
		row := make([]int, len(a.Reductions))
		for r, target := range s.GoTo {
			row[r] = int(target)
		}
		tab[i] = row
	}
	return tab
}

type baker struct {
	graph        *LRGraph
	auto         *Automaton
	tokenIDs     map[Token]TokenID
	reductionIDs map[ReductendPosition]ReductionID
}

// Bake numbers a conflict-free LR(1) graph densely. It never fails.
func Bake(graph *LRGraph) *Automaton {
	g := graph.Grammar
	b := &baker{
		graph: graph,
		auto: &Automaton{
			StartRule: g.rules[g.StartRule()].Name,
			RootType:  g.RootType(),
			stateIDs:  map[StateNum]StateID{},
		},
		tokenIDs:     map[Token]TokenID{},
		reductionIDs: map[ReductendPosition]ReductionID{},
	}
	b.internToken(TokenEOF)

	order := b.visitOrder()
	for i, n := range order {
		b.auto.stateIDs[n] = StateID(i)
	}
	b.auto.Start = b.auto.stateIDs[graph.Start]
	for _, n := range order {
		b.bakeState(graph.States[n])
	}

	tracer().Debugf("baked automaton: %v states, %v tokens, %v reductions", len(b.auto.States), len(b.auto.Tokens), len(b.auto.Reductions))

	return b.auto
}

// visitOrder returns the states reachable from the start state in depth-first preorder. Shift transitions
// are followed before goto transitions.
func (b *baker) visitOrder() []StateNum {
	var order []StateNum
	visited := map[StateNum]struct{}{}
	stack := []StateNum{b.graph.Start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}
		order = append(order, n)

		s := b.graph.States[n]
		var succ []StateNum
		for _, t := range s.Shifts {
			succ = append(succ, t.State)
		}
		for _, t := range s.GoTos {
			succ = append(succ, t.State)
		}
		for i := len(succ) - 1; i >= 0; i-- {
			if _, ok := visited[succ[i]]; !ok {
				stack = append(stack, succ[i])
			}
		}
	}
	return order
}

func (b *baker) bakeState(s *LRState) {
	state := &State{
		ID:        b.auto.stateIDs[s.Num],
		LRState:   s.Num,
		Lookahead: map[TokenID]Action{},
		GoTo:      map[ReductionID]StateID{},
	}
	for _, t := range s.Shifts {
		state.Lookahead[b.internToken(t.Token)] = Shift(b.auto.stateIDs[t.State])
	}
	for _, r := range s.Reduces {
		state.Lookahead[b.internToken(r.Token)] = Reduce(b.internReduction(r.Reductend))
	}
	if _, ok := state.Lookahead[TokenIDEOF]; !ok {
		state.Lookahead[TokenIDEOF] = Halt()
	}

	g := b.graph.Grammar
	for _, t := range s.GoTos {
		target := b.auto.stateIDs[t.State]
		for _, p := range g.InitialPositions(t.Rule) {
			state.GoTo[b.internReduction(p.Reductend())] = target
		}
	}

	b.auto.States = append(b.auto.States, state)
}

func (b *baker) internToken(tok Token) TokenID {
	if id, ok := b.tokenIDs[tok]; ok {
		return id
	}
	id := TokenID(len(b.auto.Tokens))
	b.tokenIDs[tok] = id
	b.auto.Tokens = append(b.auto.Tokens, tok)
	return id
}

func (b *baker) internReduction(r ReductendPosition) ReductionID {
	if id, ok := b.reductionIDs[r]; ok {
		return id
	}
	id := ReductionID(len(b.auto.Reductions))
	b.reductionIDs[r] = id
	b.auto.Reductions = append(b.auto.Reductions, b.genReduction(r))
	return id
}

func (b *baker) genReduction(r ReductendPosition) *Reduction {
	g := b.graph.Grammar
	rule := g.rules[r.Rule]
	alt := rule.Alternatives[r.Alternative]
	red := &Reduction{
		Position:    r,
		RuleName:    rule.Name,
		Arity:       len(alt.Components),
		Code:        alt.Code,
		Args:        make([]*Arg, len(alt.Components)),
		ReturnType:  g.ExportType(r.Rule),
		PassThrough: alt.PassThrough(),
	}
	for i, c := range alt.Components {
		if c.Binding == "" {
			continue
		}
		typ, _ := g.ArgType(c)
		red.Args[i] = &Arg{
			Name: c.Binding,
			Type: typ,
		}
	}
	if red.ReturnType == "" && red.PassThrough {
		red.ReturnType, _ = g.ArgType(alt.Components[0])
	}
	return red
}
