package spec

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/tarkan/error"
)

func TestParse(t *testing.T) {
	rule := func(name, typ string, alts ...*AlternativeNode) *RuleNode {
		return &RuleNode{
			Name:         name,
			Type:         typ,
			Alternatives: alts,
		}
	}
	alt := func(code string, comps ...*ComponentNode) *AlternativeNode {
		return &AlternativeNode{
			Components: comps,
			Code:       code,
		}
	}
	comp := func(kind ComponentKind, value string) *ComponentNode {
		return &ComponentNode{
			Kind:  kind,
			Value: value,
		}
	}
	bind := func(name string, c *ComponentNode) *ComponentNode {
		c.Binding = name
		return c
	}
	member := func(name, typ string) *MemberNode {
		return &MemberNode{
			Name: name,
			Type: typ,
		}
	}

	tests := []struct {
		caption string
		src     string
		ast     *RootNode
		synErr  *SyntaxError
	}{
		{
			caption: "a rule can have a type and alternatives with code",
			src: `
E -> int
    : $a = E "+" $b = T { return a + b }
    | T
    ;
`,
			ast: &RootNode{
				Rules: []*RuleNode{
					rule("E", "int",
						alt("{ return a + b }",
							bind("a", comp(ComponentKindRule, "E")),
							comp(ComponentKindLiteral, "+"),
							bind("b", comp(ComponentKindRule, "T")),
						),
						alt("",
							comp(ComponentKindRule, "T"),
						),
					),
				},
			},
		},
		{
			caption: "a type is taken verbatim",
			src: `
m -> map[string][]*Node: r"[a-z]+" r"\"" * { return nil };
f -> func(a, b int) (string, error): "f" { return nil };
`,
			ast: &RootNode{
				Rules: []*RuleNode{
					rule("m", "map[string][]*Node",
						alt("{ return nil }",
							comp(ComponentKindRegex, "[a-z]+"),
							comp(ComponentKindRegex, `"`),
							comp(ComponentKindWildcard, ""),
						),
					),
					rule("f", "func(a, b int) (string, error)",
						alt("{ return nil }",
							comp(ComponentKindLiteral, "f"),
						),
					),
				},
			},
		},
		{
			caption: "a rule may omit its type and have empty alternatives",
			src: `
list: list elem | ;
elem: "x";
`,
			ast: &RootNode{
				Rules: []*RuleNode{
					rule("list", "",
						alt("",
							comp(ComponentKindRule, "list"),
							comp(ComponentKindRule, "elem"),
						),
						alt(""),
					),
					rule("elem", "",
						alt("",
							comp(ComponentKindLiteral, "x"),
						),
					),
				},
			},
		},
		{
			caption: "members declare the types of bindings",
			src: `
$node: *Node;
s -> *Node: $node = x { return node };
$count: int;
`,
			ast: &RootNode{
				Members: []*MemberNode{
					member("node", "*Node"),
					member("count", "int"),
				},
				Rules: []*RuleNode{
					rule("s", "*Node",
						alt("{ return node }",
							bind("node", comp(ComponentKindRule, "x")),
						),
					),
				},
			},
		},
		{
			caption: "a grammar needs a rule",
			src:     `$x: int;`,
			synErr:  synErrNoRule,
		},
		{
			caption: "a grammar needs a rule even when it is empty",
			src:     ``,
			synErr:  synErrNoRule,
		},
		{
			caption: "a rule needs a colon",
			src:     `s "a";`,
			synErr:  synErrNoColon,
		},
		{
			caption: "a rule needs a semicolon",
			src:     `s: "a"`,
			synErr:  synErrNoSemicolon,
		},
		{
			caption: "a rule needs a name",
			src:     `: "a";`,
			synErr:  synErrNoRuleName,
		},
		{
			caption: "an arrow needs a type",
			src:     `s -> : "a";`,
			synErr:  synErrNoType,
		},
		{
			caption: "a type must be terminated",
			src:     `s -> int`,
			synErr:  synErrUnclosedType,
		},
		{
			caption: "a binding needs a name",
			src:     `s: $ = "a";`,
			synErr:  synErrNoBindingName,
		},
		{
			caption: "a binding needs '='",
			src:     `s: $x "a";`,
			synErr:  synErrNoAssign,
		},
		{
			caption: "a binding needs a component",
			src:     `s: $x = ;`,
			synErr:  synErrNoBoundComponent,
		},
		{
			caption: "code must be the last element of an alternative",
			src:     `s: "a" { return a } "b";`,
			synErr:  synErrCodeNotLast,
		},
		{
			caption: "a member needs a name",
			src:     `$: int;`,
			synErr:  synErrNoMemberName,
		},
		{
			caption: "a member needs a colon",
			src:     `$x int;`,
			synErr:  synErrNoMemberColon,
		},
		{
			caption: "a literal must be closed",
			src:     `s: "a;`,
			synErr:  synErrUnclosedTerminal,
		},
		{
			caption: "an unknown character is an invalid token",
			src:     `s: "a" ? ;`,
			synErr:  synErrInvalidToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := Parse(strings.NewReader(tt.src))
			if tt.synErr != nil {
				var specErrs verr.SpecErrors
				if !errors.As(err, &specErrs) || len(specErrs) == 0 {
					t.Fatalf("an expected error didn't occur: %v", err)
				}
				if specErrs[0].Cause != tt.synErr {
					t.Fatalf("unexpected error: want: %v, got: %v", tt.synErr, specErrs[0].Cause)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testRootNode(t, ast, tt.ast)
		})
	}
}

func TestParse_Position(t *testing.T) {
	ast, err := Parse(strings.NewReader(`
s: a
 | $x = b;
`))
	if err != nil {
		t.Fatal(err)
	}
	s := ast.Rules[0]
	if s.Alternatives[1].Pos.Row != s.Pos.Row+1 {
		t.Fatalf("unexpected rows: %v, %v", s.Pos, s.Alternatives[1].Pos)
	}
	x := s.Alternatives[1].Components[0]
	if x.Pos.Col != s.Alternatives[0].Components[0].Pos.Col {
		t.Fatalf("a bound component must be placed at its binding: %v", x.Pos)
	}
}

func testRootNode(t *testing.T, root, expected *RootNode) {
	t.Helper()

	if len(root.Members) != len(expected.Members) {
		t.Fatalf("unexpected member count: want: %v, got: %v", len(expected.Members), len(root.Members))
	}
	for i, m := range root.Members {
		if m.Name != expected.Members[i].Name || m.Type != expected.Members[i].Type {
			t.Fatalf("unexpected member: want: %+v, got: %+v", expected.Members[i], m)
		}
	}
	if len(root.Rules) != len(expected.Rules) {
		t.Fatalf("unexpected rule count: want: %v, got: %v", len(expected.Rules), len(root.Rules))
	}
	for i, r := range root.Rules {
		testRuleNode(t, r, expected.Rules[i])
	}
}

func testRuleNode(t *testing.T, rule, expected *RuleNode) {
	t.Helper()

	if rule.Name != expected.Name || rule.Type != expected.Type {
		t.Fatalf("unexpected rule: want: %v -> %v, got: %v -> %v", expected.Name, expected.Type, rule.Name, rule.Type)
	}
	if len(rule.Alternatives) != len(expected.Alternatives) {
		t.Fatalf("unexpected alternative count: want: %v, got: %v", len(expected.Alternatives), len(rule.Alternatives))
	}
	for i, alt := range rule.Alternatives {
		e := expected.Alternatives[i]
		if alt.Code != e.Code {
			t.Fatalf("unexpected code: want: %q, got: %q", e.Code, alt.Code)
		}
		if len(alt.Components) != len(e.Components) {
			t.Fatalf("unexpected component count: want: %v, got: %v", len(e.Components), len(alt.Components))
		}
		for j, c := range alt.Components {
			ec := e.Components[j]
			if c.Kind != ec.Kind || c.Value != ec.Value || c.Binding != ec.Binding {
				t.Fatalf("unexpected component: want: %+v, got: %+v", ec, c)
			}
		}
	}
}
