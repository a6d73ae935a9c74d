package grammar

import (
	"testing"

	verr "github.com/nihei9/tarkan/error"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestBuildLR1(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tarkan.grammar")
	defer teardown()

	tests := []struct {
		caption    string
		src        string
		startRule  string
		stateCount int
	}{
		{
			caption: "an empty language",
			src: `
start -> int: { return 0 };
`,
			stateCount: 1,
		},
		{
			caption: "a single terminal",
			src: `
start -> string: "1";
`,
			stateCount: 2,
		},
		{
			caption: "a left-recursive list",
			src: `
start -> []string
    : $l = start $x = "1" { return append(l, x) }
    | $x = "1" { return []string{x} }
    ;
`,
			stateCount: 4,
		},
		{
			caption: "a separated list",
			src: `
start -> []string
    : $l = start "," $x = "1" { return append(l, x) }
    | $x = "1" { return []string{x} }
    ;
`,
			stateCount: 5,
		},
		{
			caption:   "arithmetic expressions",
			src:       arithmeticSrc,
			startRule: "E",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := buildGrammar(t, tt.src, tt.startRule)
			graph := buildLR1(t, g)
			if tt.stateCount > 0 && len(graph.States) != tt.stateCount {
				t.Fatalf("unexpected state count: want: %v, got: %v", tt.stateCount, len(graph.States))
			}
			if graph.Start != 0 {
				t.Errorf("the start state must come first; got: %v", graph.Start)
			}
			testLRGraph(t, graph)
		})
	}
}

// testLRGraph checks every transition against goto over the item sets.
func testLRGraph(t *testing.T, graph *LRGraph) {
	t.Helper()

	g := graph.Grammar
	keys := map[string]StateNum{}
	for _, s := range graph.States {
		key := s.Items.Key()
		if n, ok := keys[key]; ok {
			t.Fatalf("states %v and %v have the same items", n, s.Num)
		}
		keys[key] = s.Num
	}
	for _, s := range graph.States {
		for _, tr := range s.Shifts {
			items := g.Goto(s.Items, TokenSymbol(tr.Token))
			if items.Key() != graph.States[tr.State].Items.Key() {
				t.Errorf("state %v: unexpected shift target on %v: %v", s.Num, tr.Token, tr.State)
			}
		}
		for _, tr := range s.GoTos {
			items := g.Goto(s.Items, RuleSymbol(tr.Rule))
			if items.Key() != graph.States[tr.State].Items.Key() {
				t.Errorf("state %v: unexpected goto target on %v: %v", s.Num, tr.Rule, tr.State)
			}
		}
		for _, r := range s.Reduces {
			if _, ok := s.ShiftTarget(r.Token); ok {
				t.Errorf("state %v: %v has both a shift and a reduction", s.Num, r.Token)
			}
		}
	}
}

func TestBuildLR1_Conflicts(t *testing.T) {
	tests := []struct {
		caption   string
		src       string
		startRule string
		srOn      []Token
		rrOn      []Token
		rrCount   int
	}{
		{
			caption: "two rules reducing the same input",
			src: `
A -> int: "x" { return 1 };
B -> int: "x" { return 2 };
start -> int: A | B;
`,
			rrOn:    []Token{TokenEOF},
			rrCount: 1,
		},
		{
			caption: "the dangling else",
			src: `
S -> int
    : "if" E "then" S { return 1 }
    | "if" E "then" S "else" S { return 2 }
    | "s" { return 3 }
    ;
E -> int: "c" { return 0 };
`,
			startRule: "S",
			srOn:      []Token{lit("else")},
		},
		{
			caption: "an ambiguous binary operator",
			src: `
start -> int
    : $a = start "-" $b = start { return a - b }
    | "1" { return 1 }
    ;
`,
			srOn: []Token{lit("-")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := buildGrammar(t, tt.src, tt.startRule)
			graph, err := BuildLR1(g)
			if err == nil {
				t.Fatal("an expected error didn't occur")
			}
			if graph == nil {
				t.Fatal("the automaton must be returned along with conflicts")
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type: %T: %v", err, err)
			}
			if len(specErrs) != len(graph.Conflicts) {
				t.Errorf("every conflict must be reported: want: %v, got: %v", len(graph.Conflicts), len(specErrs))
			}

			var sr []Token
			var rr []Token
			for _, c := range graph.Conflicts {
				switch c := c.(type) {
				case *ShiftReduceConflict:
					sr = append(sr, c.Token)
				case *ReduceReduceConflict:
					rr = append(rr, c.Token)
				}
			}
			testConflictTokens(t, "shift/reduce", tt.srOn, sr)
			testConflictTokens(t, "reduce/reduce", tt.rrOn, rr)
			if tt.rrCount > 0 && len(rr) != tt.rrCount {
				t.Errorf("unexpected reduce/reduce conflict count: want: %v, got: %v", tt.rrCount, len(rr))
			}

			for _, specErr := range specErrs {
				if _, ok := specErr.Cause.(Conflict); !ok {
					t.Errorf("unexpected cause: %v", specErr.Cause)
				}
				if specErr.Detail == "" {
					t.Errorf("a conflict must describe its items")
				}
			}
		})
	}
}

func testConflictTokens(t *testing.T, kind string, expected []Token, actual []Token) {
	t.Helper()

	if len(expected) == 0 {
		if len(actual) > 0 {
			t.Errorf("unexpected %v conflicts on %v", kind, actual)
		}
		return
	}
	if len(actual) == 0 {
		t.Errorf("expected %v conflicts on %v didn't occur", kind, expected)
		return
	}
	for _, tok := range actual {
		found := false
		for _, e := range expected {
			if tok == e {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("unexpected %v conflict on %v", kind, tok)
		}
	}
}
