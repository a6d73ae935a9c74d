package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/tarkan/spec"
)

const arithmeticSrc = `
E -> int
    : $a = E "+" $b = T { return a + b }
    | T
    ;
T -> int
    : $a = T "*" $b = F { return a * b }
    | F
    ;
F -> int
    : "(" $e = E ")" { return e }
    | $n = num { return atoi(n) }
    ;
num -> string: r"[0-9]+";
`

func parseGrammar(t *testing.T, src string, startRule string) (*Grammar, error) {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse a grammar: %v", err)
	}
	b := GrammarBuilder{
		AST:       ast,
		Name:      "test",
		StartRule: startRule,
	}
	return b.Build()
}

func buildGrammar(t *testing.T, src string, startRule string) *Grammar {
	t.Helper()

	g, err := parseGrammar(t, src, startRule)
	if err != nil {
		t.Fatalf("failed to build a grammar: %v", err)
	}
	return g
}

func buildLR1(t *testing.T, g *Grammar) *LRGraph {
	t.Helper()

	graph, err := BuildLR1(g)
	if err != nil {
		t.Fatalf("failed to build an LR(1) automaton: %v", err)
	}
	return graph
}

func lit(text string) Token {
	return Token{Kind: TokenKindLiteral, Text: text}
}

func regex(text string) Token {
	return Token{Kind: TokenKindRegex, Text: text}
}

func ruleID(t *testing.T, g *Grammar, name string) RuleID {
	t.Helper()

	r, ok := g.RuleByName(name)
	if !ok {
		t.Fatalf("rule was not found: %v", name)
	}
	return r.ID
}
