package grammar

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
)

// LookaheadSet is an ordered set of tokens.
type LookaheadSet struct {
	set *treeset.Set
}

func NewLookaheadSet(toks ...Token) *LookaheadSet {
	s := &LookaheadSet{
		set: treeset.NewWith(tokenComparator),
	}
	for _, tok := range toks {
		s.set.Add(tok)
	}
	return s
}

// Add reports whether tok was not in the set yet.
func (s *LookaheadSet) Add(tok Token) bool {
	if s.set.Contains(tok) {
		return false
	}
	s.set.Add(tok)
	return true
}

// Union adds every token of o and reports whether the set grew.
func (s *LookaheadSet) Union(o *LookaheadSet) bool {
	if o == nil {
		return false
	}
	grew := false
	for _, v := range o.set.Values() {
		if s.Add(v.(Token)) {
			grew = true
		}
	}
	return grew
}

func (s *LookaheadSet) Contains(tok Token) bool {
	return s.set.Contains(tok)
}

func (s *LookaheadSet) Len() int {
	return s.set.Size()
}

func (s *LookaheadSet) Tokens() []Token {
	vs := s.set.Values()
	toks := make([]Token, len(vs))
	for i, v := range vs {
		toks[i] = v.(Token)
	}
	return toks
}

func (s *LookaheadSet) clone() *LookaheadSet {
	c := NewLookaheadSet()
	c.Union(s)
	return c
}

func sortedTokens(m map[Token]struct{}) []Token {
	s := NewLookaheadSet()
	for tok := range m {
		s.Add(tok)
	}
	return s.Tokens()
}

// ItemSet maps positions to their lookahead sets. Two item sets are the same state exactly when they hold
// the same positions with the same lookaheads.
type ItemSet struct {
	items *treemap.Map
}

func NewItemSet() *ItemSet {
	return &ItemSet{
		items: treemap.NewWith(positionComparator),
	}
}

// Add merges la into the lookahead of p. It reports whether p is new or its lookahead grew.
func (s *ItemSet) Add(p Position, la *LookaheadSet) bool {
	if v, ok := s.items.Get(p); ok {
		return v.(*LookaheadSet).Union(la)
	}
	if la == nil {
		la = NewLookaheadSet()
	}
	s.items.Put(p, la.clone())
	return true
}

func (s *ItemSet) Lookahead(p Position) (*LookaheadSet, bool) {
	v, ok := s.items.Get(p)
	if !ok {
		return nil, false
	}
	return v.(*LookaheadSet), true
}

// Positions returns the positions in ascending order.
func (s *ItemSet) Positions() []Position {
	ks := s.items.Keys()
	ps := make([]Position, len(ks))
	for i, k := range ks {
		ps[i] = k.(Position)
	}
	return ps
}

func (s *ItemSet) Len() int {
	return s.items.Size()
}

func (s *ItemSet) clone() *ItemSet {
	c := NewItemSet()
	for _, p := range s.Positions() {
		la, _ := s.Lookahead(p)
		c.Add(p, la)
	}
	return c
}

type itemSetKey struct {
	Items []itemKey
}

type itemKey struct {
	Rule        int
	Alternative int
	Dot         int
	Lookahead   []string
}

// Key returns a canonical serialization of the item set. Equal item sets have equal keys.
func (s *ItemSet) Key() string {
	k := itemSetKey{}
	for _, p := range s.Positions() {
		la, _ := s.Lookahead(p)
		toks := la.Tokens()
		ik := itemKey{
			Rule:        int(p.Rule),
			Alternative: p.Alternative,
			Dot:         p.Dot,
			Lookahead:   make([]string, len(toks)),
		}
		for i, tok := range toks {
			ik.Lookahead[i] = fmt.Sprintf("%d:%s", tok.Kind, tok.Text)
		}
		k.Items = append(k.Items, ik)
	}
	return string(structhash.Dump(k, 1))
}

type EventKind int

const (
	EventShift EventKind = iota
	EventGoto
	EventReduce
)

func (k EventKind) String() string {
	switch k {
	case EventShift:
		return "shift"
	case EventGoto:
		return "goto"
	}
	return "reduce"
}

// Event is what a position expects next. A shift event carries a token, or matches any token other than EOF
// when Wildcard is set. A goto event carries a rule. A reduce event comes from a final position.
type Event struct {
	Kind     EventKind
	Token    Token
	Wildcard bool
	Rule     RuleID
}

func (e Event) matches(sym Symbol) bool {
	switch e.Kind {
	case EventShift:
		if sym.IsRule {
			return false
		}
		if e.Wildcard {
			return sym.Token.Kind != TokenKindEOF
		}
		return e.Token == sym.Token
	case EventGoto:
		return sym.IsRule && sym.Rule == e.Rule
	}
	return false
}

func (g *Grammar) NextEvent(p Position) Event {
	c, ok := g.ComponentByPosition(p)
	if !ok {
		return Event{
			Kind: EventReduce,
		}
	}
	switch c.Kind {
	case ComponentKindRule:
		return Event{
			Kind: EventGoto,
			Rule: c.Rule,
		}
	case ComponentKindWildcard:
		return Event{
			Kind:     EventShift,
			Wildcard: true,
		}
	}
	tok, _ := c.token()
	return Event{
		Kind:  EventShift,
		Token: tok,
	}
}

// lookaheadAfter returns FIRST of the components after p, plus la when they can all derive the empty
// string.
func (g *Grammar) lookaheadAfter(p Position, la *LookaheadSet) *LookaheadSet {
	alt, _ := g.AlternativeByPosition(p)
	e := g.firstSets().find(alt.Components[p.Dot:])
	s := NewLookaheadSet()
	for tok := range e.tokens {
		s.Add(tok)
	}
	if e.empty {
		s.Union(la)
	}
	return s
}

// Closure adds the initial positions of every rule expected after a dot, with the lookaheads that can
// follow them, until nothing changes.
func (g *Grammar) Closure(kernel *ItemSet) *ItemSet {
	closure := kernel.clone()
	queue := closure.Positions()
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		ev := g.NextEvent(p)
		if ev.Kind != EventGoto {
			continue
		}
		la, _ := closure.Lookahead(p)
		follow := g.lookaheadAfter(p.Advance(), la)
		for _, q := range g.InitialPositions(ev.Rule) {
			if closure.Add(q, follow) {
				queue = append(queue, q)
			}
		}
	}
	return closure
}

func (g *Grammar) gotoKernel(items *ItemSet, sym Symbol) *ItemSet {
	kernel := NewItemSet()
	for _, p := range items.Positions() {
		if !g.NextEvent(p).matches(sym) {
			continue
		}
		la, _ := items.Lookahead(p)
		kernel.Add(p.Advance(), la)
	}
	return kernel
}

// Goto returns the closure of the positions of items advanced over sym. The result is empty when no
// position expects sym.
func (g *Grammar) Goto(items *ItemSet, sym Symbol) *ItemSet {
	kernel := g.gotoKernel(items, sym)
	if kernel.Len() == 0 {
		return kernel
	}
	return g.Closure(kernel)
}

// nextSymbols lists the symbols items can advance over, in order of first appearance. A wildcard expands to
// every token of the universe.
func (g *Grammar) nextSymbols(items *ItemSet) []Symbol {
	var syms []Symbol
	seen := map[Symbol]struct{}{}
	add := func(sym Symbol) {
		if _, ok := seen[sym]; ok {
			return
		}
		seen[sym] = struct{}{}
		syms = append(syms, sym)
	}
	for _, p := range items.Positions() {
		ev := g.NextEvent(p)
		switch ev.Kind {
		case EventShift:
			if ev.Wildcard {
				for _, tok := range g.tokens[1:] {
					add(TokenSymbol(tok))
				}
				continue
			}
			add(TokenSymbol(ev.Token))
		case EventGoto:
			add(RuleSymbol(ev.Rule))
		}
	}
	return syms
}
