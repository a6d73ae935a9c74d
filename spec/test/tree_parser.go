package test

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nihei9/tarkan/driver"
	"github.com/nihei9/tarkan/grammar"
	"github.com/nihei9/tarkan/spec"
	sgrammar "github.com/nihei9/tarkan/spec/grammar"
)

// treeGrammarSrc describes S-expression trees: `(kind children...)` for rule nodes and quoted lexemes for
// token leaves.
const treeGrammarSrc = `
tree -> *Tree
    : "(" $kind = kind $children = trees ")" { return NewNonTerminalTree(kind, children...) }
    | $lexeme = lexeme { return NewTerminalTree(unquote(lexeme)) }
    ;
trees -> []*Tree
    : $ts = trees $t = tree { return append(ts, t) }
    | { return nil }
    ;
kind -> string: r"[A-Za-z_][0-9A-Za-z_]*";
lexeme -> string: r"\"([^\"\\]|\\.)*\"";
`

var (
	treeGramOnce sync.Once
	treeGram     *sgrammar.CompiledGrammar
	treeGramErr  error
)

func treeGrammar() (*sgrammar.CompiledGrammar, error) {
	treeGramOnce.Do(func() {
		ast, err := spec.Parse(strings.NewReader(treeGrammarSrc))
		if err != nil {
			treeGramErr = err
			return
		}
		b := grammar.GrammarBuilder{
			AST:       ast,
			Name:      "tree",
			StartRule: "tree",
		}
		g, err := b.Build()
		if err != nil {
			treeGramErr = err
			return
		}
		treeGram, _, treeGramErr = grammar.Compile(g)
	})
	return treeGram, treeGramErr
}

var treeFuncs = map[string]driver.ReduceFunc{
	`{ return NewNonTerminalTree(kind, children...) }`: func(args []any) (any, error) {
		children, _ := args[2].([]*Tree)
		return NewNonTerminalTree(args[1].(string), children...), nil
	},
	`{ return NewTerminalTree(unquote(lexeme)) }`: func(args []any) (any, error) {
		lexeme, err := strconv.Unquote(args[0].(string))
		if err != nil {
			return nil, fmt.Errorf("invalid lexeme: %v: %w", args[0], err)
		}
		return NewTerminalTree(lexeme), nil
	},
	`{ return append(ts, t) }`: func(args []any) (any, error) {
		ts, _ := args[0].([]*Tree)
		return append(ts, args[1].(*Tree)), nil
	},
	`{ return nil }`: func(args []any) (any, error) {
		return []*Tree(nil), nil
	},
}

// ParseTree parses an S-expression tree. lineOffset is added to the rows of syntax errors.
func ParseTree(src string, lineOffset int) (*Tree, error) {
	cgram, err := treeGrammar()
	if err != nil {
		return nil, fmt.Errorf("failed to compile the tree grammar: %w", err)
	}
	toks, err := driver.NewTokenStream(cgram, strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	gram := driver.NewGrammar(cgram)
	p, err := driver.NewParser(toks, gram, driver.SemanticAction(driver.NewFuncActionSet(gram, treeFuncs)))
	if err != nil {
		return nil, err
	}
	err = p.Parse()
	if err != nil {
		return nil, err
	}
	if synErrs := p.SyntaxErrors(); len(synErrs) > 0 {
		var b strings.Builder
		for i, synErr := range synErrs {
			if i > 0 {
				b.WriteRune('\n')
			}
			b.WriteString(formatSyntaxError(synErr, lineOffset))
		}
		return nil, errors.New(b.String())
	}
	t, ok := p.Result().(*Tree)
	if !ok {
		return nil, fmt.Errorf("a tree must not be empty")
	}
	return t.Fill(), nil
}

func formatSyntaxError(synErr *driver.SyntaxError, lineOffset int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v: ", lineOffset+synErr.Row+1, synErr.Col+1, synErr.Message)
	tok := synErr.Token
	switch {
	case tok.EOF():
		b.WriteString("<eof>")
	case tok.Invalid():
		fmt.Fprintf(&b, "'%v' (<invalid>)", string(tok.Lexeme()))
	default:
		fmt.Fprintf(&b, "'%v'", string(tok.Lexeme()))
	}
	if len(synErr.ExpectedTokens) > 0 {
		fmt.Fprintf(&b, ": expected: %v", strings.Join(synErr.ExpectedTokens, ", "))
	}
	return b.String()
}
