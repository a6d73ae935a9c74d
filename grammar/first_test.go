package grammar

import "testing"

func TestGrammar_First(t *testing.T) {
	tests := []struct {
		caption   string
		src       string
		startRule string
		rule      string
		first     []Token
		empty     bool
	}{
		{
			caption:   "left-recursive rules",
			src:       arithmeticSrc,
			startRule: "E",
			rule:      "E",
			first:     []Token{lit("("), regex("[0-9]+")},
		},
		{
			caption:   "a rule deriving a regex",
			src:       arithmeticSrc,
			startRule: "E",
			rule:      "num",
			first:     []Token{regex("[0-9]+")},
		},
		{
			caption: "an empty alternative makes a rule nullable",
			src: `
start -> int: opt "b" { return 1 };
opt -> int: { return 0 } | "a" { return 1 };
`,
			rule:  "opt",
			first: []Token{lit("a")},
			empty: true,
		},
		{
			caption: "tokens after a nullable prefix are in FIRST",
			src: `
start -> int: opt "b" { return 1 };
opt -> int: { return 0 } | "a" { return 1 };
`,
			rule:  "start",
			first: []Token{lit("a"), lit("b")},
		},
		{
			caption: "a wildcard stands for every token",
			src: `
start -> string: $x = * { return x } | other;
other -> string: "a" | "b";
`,
			rule:  "start",
			first: []Token{lit("a"), lit("b")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			g := buildGrammar(t, tt.src, tt.startRule)
			first, empty := g.First(ruleID(t, g, tt.rule))
			if empty != tt.empty {
				t.Errorf("unexpected empty flag: want: %v, got: %v", tt.empty, empty)
			}
			if len(first) != len(tt.first) {
				t.Fatalf("unexpected FIRST: want: %v, got: %v", tt.first, first)
			}
			for i, tok := range tt.first {
				if first[i] != tok {
					t.Errorf("unexpected FIRST: want: %v, got: %v", tt.first, first)
				}
			}
		})
	}
}

func TestGrammar_Nullable(t *testing.T) {
	g := buildGrammar(t, `
start -> int: opt opt { return 1 } | opt "b" { return 2 };
opt -> int: { return 0 } | "a" { return 1 };
`, "")
	s := ruleID(t, g, "start")
	tests := []struct {
		pos      Position
		nullable bool
	}{
		{pos: Position{Rule: s, Alternative: 0, Dot: 0}, nullable: true},
		{pos: Position{Rule: s, Alternative: 0, Dot: 2}, nullable: true},
		{pos: Position{Rule: s, Alternative: 1, Dot: 0}, nullable: false},
		{pos: Position{Rule: s, Alternative: 1, Dot: 1}, nullable: false},
	}
	for _, tt := range tests {
		if n := g.Nullable(tt.pos); n != tt.nullable {
			t.Errorf("unexpected nullability of %v: want: %v, got: %v", g.ItemView(tt.pos), tt.nullable, n)
		}
	}
}
