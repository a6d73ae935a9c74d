package driver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/nihei9/tarkan/grammar"
	"github.com/nihei9/tarkan/spec"
	sgrammar "github.com/nihei9/tarkan/spec/grammar"
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

var arithmeticFuncs = map[string]ReduceFunc{
	"{ return a + b }": func(args []any) (any, error) {
		return args[0].(int) + args[2].(int), nil
	},
	"{ return a * b }": func(args []any) (any, error) {
		return args[0].(int) * args[2].(int), nil
	},
	"{ return e }": func(args []any) (any, error) {
		return args[1], nil
	},
	"{ return atoi(n) }": func(args []any) (any, error) {
		return strconv.Atoi(args[0].(string))
	},
}

const listSrc = `
list -> []string
    : $l = list $e = elem { return append(l, e) }
    | { return nil }
    ;
elem -> string: r"[a-z]+";
`

var listFuncs = map[string]ReduceFunc{
	"{ return append(l, e) }": func(args []any) (any, error) {
		l, _ := args[0].([]string)
		return append(l, args[1].(string)), nil
	},
	"{ return nil }": func(args []any) (any, error) {
		return []string(nil), nil
	},
}

func compileGrammar(t *testing.T, src string, startRule string) *sgrammar.CompiledGrammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		AST:       ast,
		Name:      "test",
		StartRule: startRule,
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cgram, _, err := grammar.Compile(g)
	if err != nil {
		t.Fatal(err)
	}
	return cgram
}

func parse(t *testing.T, cgram *sgrammar.CompiledGrammar, src string, semAct SemanticActionSet) *Parser {
	t.Helper()

	toks, err := NewTokenStream(cgram, strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewParser(toks, NewGrammar(cgram), SemanticAction(semAct))
	if err != nil {
		t.Fatal(err)
	}
	err = p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		specSrc   string
		startRule string
		funcs     map[string]ReduceFunc
		src       string
		result    any
	}{
		{
			specSrc:   arithmeticSrc,
			startRule: "E",
			funcs:     arithmeticFuncs,
			src:       `1+2*3`,
			result:    7,
		},
		{
			specSrc:   arithmeticSrc,
			startRule: "E",
			funcs:     arithmeticFuncs,
			src:       `(1+2)*3`,
			result:    9,
		},
		{
			specSrc:   arithmeticSrc,
			startRule: "E",
			funcs:     arithmeticFuncs,
			src:       ` 2 * ( 3 + 4 ) * 5 `,
			result:    70,
		},
		{
			specSrc:   arithmeticSrc,
			startRule: "E",
			funcs:     arithmeticFuncs,
			src:       `42`,
			result:    42,
		},
		{
			specSrc:   listSrc,
			startRule: "list",
			funcs:     listFuncs,
			src:       `foo bar baz`,
			result:    []string{"foo", "bar", "baz"},
		},
		{
			specSrc:   listSrc,
			startRule: "list",
			funcs:     listFuncs,
			src:       ``,
			result:    []string(nil),
		},
		// A pass-through start rule accepts by reducing without a goto entry.
		{
			specSrc: `start -> string: "1";`,
			src:     `1`,
			result:  "1",
		},
		{
			specSrc: `
start -> string: $x = "1" $y = "2" { return x + y };
`,
			funcs: map[string]ReduceFunc{
				"{ return x + y }": func(args []any) (any, error) {
					return args[0].(string) + args[1].(string), nil
				},
			},
			src:    `1 2`,
			result: "12",
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			cgram := compileGrammar(t, tt.specSrc, tt.startRule)
			p := parse(t, cgram, tt.src, NewFuncActionSet(NewGrammar(cgram), tt.funcs))
			if len(p.SyntaxErrors()) > 0 {
				t.Fatalf("unexpected syntax errors: %v", p.SyntaxErrors())
			}
			testResult(t, tt.result, p.Result())
		})
	}
}

func testResult(t *testing.T, expected, actual any) {
	t.Helper()

	switch e := expected.(type) {
	case []string:
		a, ok := actual.([]string)
		if !ok {
			t.Fatalf("unexpected result type: want: %T, got: %T", expected, actual)
		}
		if len(e) != len(a) {
			t.Fatalf("unexpected result: want: %#v, got: %#v", e, a)
		}
		for i := range e {
			if e[i] != a[i] {
				t.Fatalf("unexpected result: want: %#v, got: %#v", e, a)
			}
		}
	default:
		if expected != actual {
			t.Fatalf("unexpected result: want: %#v, got: %#v", expected, actual)
		}
	}
}

func TestParser_SyntaxError(t *testing.T) {
	tests := []struct {
		src      string
		message  string
		eof      bool
		lexeme   string
		row      int
		col      int
		expected []string
	}{
		{
			src:      `1+`,
			message:  "unexpected token",
			eof:      true,
			expected: []string{`"("`, `r"[0-9]+"`},
		},
		{
			src:     `1 2`,
			message: "unexpected token",
			lexeme:  "2",
			row:     0,
			col:     2,
		},
		{
			src:     "1+\n  ?",
			message: "invalid token",
			lexeme:  "?",
			row:     1,
			col:     2,
		},
		{
			src:      `)`,
			message:  "unexpected token",
			lexeme:   ")",
			expected: []string{`"("`, `r"[0-9]+"`},
		},
	}
	cgram := compileGrammar(t, arithmeticSrc, "E")
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			p := parse(t, cgram, tt.src, NewFuncActionSet(NewGrammar(cgram), arithmeticFuncs))
			synErrs := p.SyntaxErrors()
			if len(synErrs) != 1 {
				t.Fatalf("unexpected syntax error count: want: 1, got: %v", len(synErrs))
			}
			if p.Result() != nil {
				t.Errorf("a parser must not return a result when it fails: %v", p.Result())
			}
			synErr := synErrs[0]
			if synErr.Message != tt.message {
				t.Errorf("unexpected message: want: %v, got: %v", tt.message, synErr.Message)
			}
			if synErr.Token.EOF() != tt.eof {
				t.Errorf("unexpected EOF flag: want: %v, got: %v", tt.eof, synErr.Token.EOF())
			}
			if !tt.eof && string(synErr.Token.Lexeme()) != tt.lexeme {
				t.Errorf("unexpected lexeme: want: %v, got: %v", tt.lexeme, string(synErr.Token.Lexeme()))
			}
			if !tt.eof && (synErr.Row != tt.row || synErr.Col != tt.col) {
				t.Errorf("unexpected position: want: %v:%v, got: %v:%v", tt.row, tt.col, synErr.Row, synErr.Col)
			}
			if tt.expected != nil {
				actual := append([]string{}, synErr.ExpectedTokens...)
				sort.Strings(actual)
				if strings.Join(actual, " ") != strings.Join(tt.expected, " ") {
					t.Errorf("unexpected expected tokens: want: %v, got: %v", tt.expected, synErr.ExpectedTokens)
				}
			}
			if synErr.Error() == "" {
				t.Errorf("a syntax error must have a message")
			}
		})
	}
}

func TestParser_AcceptOnEOF(t *testing.T) {
	cgram := compileGrammar(t, arithmeticSrc, "E")
	p := parse(t, cgram, `1+2`, NewFuncActionSet(NewGrammar(cgram), arithmeticFuncs))
	if len(p.SyntaxErrors()) > 0 {
		t.Fatalf("unexpected syntax errors: %v", p.SyntaxErrors())
	}

	// A trailing `)` is a syntax error in a state that reduces on EOF.
	p = parse(t, cgram, `1+2)`, NewFuncActionSet(NewGrammar(cgram), arithmeticFuncs))
	synErrs := p.SyntaxErrors()
	if len(synErrs) != 1 {
		t.Fatalf("unexpected syntax error count: want: 1, got: %v", len(synErrs))
	}
	found := false
	for _, tok := range synErrs[0].ExpectedTokens {
		if tok == "<eof>" {
			found = true
		}
	}
	if !found {
		t.Errorf("EOF must be expected in an accepting state: %v", synErrs[0].ExpectedTokens)
	}
}

func TestParser_MissingFunction(t *testing.T) {
	cgram := compileGrammar(t, arithmeticSrc, "E")
	toks, err := NewTokenStream(cgram, strings.NewReader(`1`))
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewParser(toks, NewGrammar(cgram), SemanticAction(NewFuncActionSet(NewGrammar(cgram), nil)))
	if err != nil {
		t.Fatal(err)
	}
	err = p.Parse()
	if err == nil {
		t.Fatal("an expected error didn't occur")
	}
}

func TestParser_WithoutSemanticAction(t *testing.T) {
	cgram := compileGrammar(t, arithmeticSrc, "E")
	toks, err := NewTokenStream(cgram, strings.NewReader(`(1+2)*3`))
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewParser(toks, NewGrammar(cgram))
	if err != nil {
		t.Fatal(err)
	}
	err = p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.SyntaxErrors()) > 0 {
		t.Fatalf("unexpected syntax errors: %v", p.SyntaxErrors())
	}
}
