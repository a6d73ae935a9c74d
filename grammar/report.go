package grammar

import (
	spec "github.com/nihei9/tarkan/spec/grammar"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("tarkan.grammar")
}

// genReport describes the states of an LR(1) graph. When auto is not nil, states and tokens carry their
// baked IDs and only reachable states are listed.
func genReport(graph *LRGraph, auto *Automaton) *spec.Report {
	g := graph.Grammar

	toks := g.Tokens()
	if auto != nil {
		toks = auto.Tokens
	}
	report := &spec.Report{}
	for i, tok := range toks {
		report.Tokens = append(report.Tokens, &spec.ReportToken{
			Number: i,
			Kind:   tok.Kind.String(),
			Text:   tok.Text,
		})
	}

	for _, rule := range g.Rules() {
		r := &spec.ReportRule{
			Number: int(rule.ID),
			Name:   rule.Name,
			Type:   g.ExportType(rule.ID),
		}
		for i, alt := range rule.Alternatives {
			r.Alternatives = append(r.Alternatives, &spec.ReportAlternative{
				Number: i,
				Text:   g.AlternativeView(ReductendPosition{Rule: rule.ID, Alternative: i}),
				Code:   alt.Code,
			})
		}
		report.Rules = append(report.Rules, r)
	}

	num := func(n StateNum) int {
		if auto == nil {
			return n.Int()
		}
		id, _ := auto.StateOf(n)
		return int(id)
	}

	srConflicts := map[StateNum][]*ShiftReduceConflict{}
	rrConflicts := map[StateNum][]*ReduceReduceConflict{}
	for _, con := range graph.Conflicts {
		switch c := con.(type) {
		case *ShiftReduceConflict:
			srConflicts[c.State] = append(srConflicts[c.State], c)
		case *ReduceReduceConflict:
			rrConflicts[c.State] = append(rrConflicts[c.State], c)
		}
	}

	states := make([]*spec.State, len(graph.States))
	for _, s := range graph.States {
		state := &spec.State{
			Number: num(s.Num),
		}
		for _, p := range s.Kernel.Positions() {
			la, _ := s.Kernel.Lookahead(p)
			state.Kernel = append(state.Kernel, &spec.Item{
				Rule:        int(p.Rule),
				Alternative: p.Alternative,
				Dot:         p.Dot,
				Text:        g.ItemView(p),
				LookAhead:   tokenTexts(la.Tokens()),
			})
		}
		for _, t := range s.Shifts {
			state.Shift = append(state.Shift, &spec.Transition{
				Symbol: t.Token.String(),
				State:  num(t.State),
			})
		}
		for _, t := range s.GoTos {
			rule, _ := g.RuleByID(t.Rule)
			state.GoTo = append(state.GoTo, &spec.Transition{
				Symbol: rule.Name,
				State:  num(t.State),
			})
		}
		state.Reduce = groupReduces(g, s.Reduces)
		for _, c := range srConflicts[s.Num] {
			state.SRConflict = append(state.SRConflict, &spec.SRConflict{
				Token:       c.Token.String(),
				ShiftTarget: num(c.ShiftTarget),
				Rule:        int(c.Reduce.Rule),
				Alternative: c.Reduce.Alternative,
				Text:        g.AlternativeView(c.Reduce),
			})
		}
		for _, c := range rrConflicts[s.Num] {
			state.RRConflict = append(state.RRConflict, &spec.RRConflict{
				Token:        c.Token.String(),
				Rule1:        int(c.A.Rule),
				Alternative1: c.A.Alternative,
				Text1:        g.AlternativeView(c.A),
				Rule2:        int(c.B.Rule),
				Alternative2: c.B.Alternative,
				Text2:        g.AlternativeView(c.B),
			})
		}
		states[s.Num] = state
	}

	if auto == nil {
		report.States = states
		return report
	}
	report.States = make([]*spec.State, len(auto.States))
	for _, s := range auto.States {
		report.States[s.ID] = states[s.LRState]
	}
	return report
}

// groupReduces merges reduce entries of the same alternative into one entry with several lookaheads.
func groupReduces(g *Grammar, entries []*ReduceEntry) []*spec.Reduce {
	var reduces []*spec.Reduce
	index := map[ReductendPosition]*spec.Reduce{}
	for _, e := range entries {
		r, ok := index[e.Reductend]
		if !ok {
			r = &spec.Reduce{
				Rule:        int(e.Reductend.Rule),
				Alternative: e.Reductend.Alternative,
				Text:        g.AlternativeView(e.Reductend),
			}
			index[e.Reductend] = r
			reduces = append(reduces, r)
		}
		r.LookAhead = append(r.LookAhead, e.Token.String())
	}
	return reduces
}

func tokenTexts(toks []Token) []string {
	texts := make([]string, len(toks))
	for i, tok := range toks {
		texts[i] = tok.String()
	}
	return texts
}
