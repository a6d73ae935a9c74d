package grammar

type firstEntry struct {
	tokens map[Token]struct{}
	empty  bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		tokens: map[Token]struct{}{},
		empty:  false,
	}
}

func (e *firstEntry) add(tok Token) bool {
	if _, ok := e.tokens[tok]; ok {
		return false
	}
	e.tokens[tok] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if !e.empty {
		e.empty = true
		return true
	}
	return false
}

func (e *firstEntry) mergeExceptEmpty(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for tok := range target.tokens {
		if e.add(tok) {
			changed = true
		}
	}
	return changed
}

// firstSet holds FIRST of every rule. A wildcard contributes every token of the universe except EOF.
type firstSet struct {
	set      []*firstEntry
	universe []Token
}

func (fst *firstSet) findByRule(rule RuleID) *firstEntry {
	return fst.set[rule]
}

// find returns FIRST of a component sequence. The entry is empty-able when every component can derive
// the empty string, including when the sequence itself is empty.
func (fst *firstSet) find(comps []*Component) *firstEntry {
	entry := newFirstEntry()
	for _, c := range comps {
		switch c.Kind {
		case ComponentKindRule:
			e := fst.findByRule(c.Rule)
			entry.mergeExceptEmpty(e)
			if !e.empty {
				return entry
			}
			continue
		case ComponentKindWildcard:
			for _, tok := range fst.universe {
				entry.add(tok)
			}
		default:
			tok, _ := c.token()
			entry.add(tok)
		}
		return entry
	}
	entry.addEmpty()
	return entry
}

// firstSets returns FIRST of every rule. It is computed on the first call.
func (g *Grammar) firstSets() *firstSet {
	if g.first == nil {
		g.first = genFirstSet(g)
	}
	return g.first
}

func genFirstSet(g *Grammar) *firstSet {
	fst := &firstSet{
		set:      make([]*firstEntry, len(g.rules)),
		universe: g.tokens[1:],
	}
	for i := range fst.set {
		fst.set[i] = newFirstEntry()
	}
	for {
		more := false
		for _, rule := range g.rules {
			acc := fst.set[rule.ID]
			for _, alt := range rule.Alternatives {
				e := fst.find(alt.Components)
				if acc.mergeExceptEmpty(e) {
					more = true
				}
				if e.empty && acc.addEmpty() {
					more = true
				}
			}
		}
		if !more {
			break
		}
	}
	return fst
}

// First returns FIRST of a rule and whether the rule can derive the empty string.
func (g *Grammar) First(rule RuleID) ([]Token, bool) {
	e := g.firstSets().findByRule(rule)
	return sortedTokens(e.tokens), e.empty
}

// Nullable reports whether the components after the dot of a position can derive the empty string.
func (g *Grammar) Nullable(p Position) bool {
	alt, ok := g.AlternativeByPosition(p)
	if !ok {
		return false
	}
	return g.firstSets().find(alt.Components[p.Dot:]).empty
}
