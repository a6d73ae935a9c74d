package driver

import (
	"fmt"
	"io"
	"strings"
)

type SemanticActionSet interface {
	// Shift runs when the driver shifts a token. Its result is the value of the token.
	Shift(tok VToken) (any, error)

	// Reduce runs when the driver reduces an alternative with a reduction body. `args` holds the values of
	// the components in order. Pass-through alternatives never reach Reduce; the driver forwards their value.
	Reduce(reduction int, args []any) (any, error)
}

var (
	_ SemanticActionSet = &SyntaxTreeActionSet{}
	_ SemanticActionSet = &FuncActionSet{}
)

type nopActionSet struct{}

func (a *nopActionSet) Shift(tok VToken) (any, error) {
	return nil, nil
}

func (a *nopActionSet) Reduce(reduction int, args []any) (any, error) {
	return nil, nil
}

type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node

	// Leaf is set for token nodes.
	Leaf bool
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Leaf {
		fmt.Fprintf(w, "%v%#v\n", ruledLine, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// SyntaxTreeActionSet builds a tree with a node per reduction body and a leaf per token. A pass-through
// alternative adds no node because the driver forwards the node of its component.
type SyntaxTreeActionSet struct {
	gram Grammar
}

func NewSyntaxTreeActionSet(gram Grammar) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram: gram,
	}
}

func (a *SyntaxTreeActionSet) Shift(tok VToken) (any, error) {
	row, col := tok.Position()
	return &Node{
		KindName: a.gram.Token(tok.TokenID()),
		Text:     string(tok.Lexeme()),
		Row:      row,
		Col:      col,
		Leaf:     true,
	}, nil
}

func (a *SyntaxTreeActionSet) Reduce(reduction int, args []any) (any, error) {
	// When an alternative is empty, `args` is empty and so is the node.
	children := make([]*Node, len(args))
	for i, arg := range args {
		n, ok := arg.(*Node)
		if !ok {
			return nil, fmt.Errorf("a value of a syntax tree must be a node: %T", arg)
		}
		children[i] = n
	}
	node := &Node{
		KindName: a.gram.RuleName(reduction),
		Children: children,
	}
	if len(children) > 0 {
		node.Row = children[0].Row
		node.Col = children[0].Col
	}
	return node, nil
}

// ReduceFunc computes the value of a reduction from the values of its components.
type ReduceFunc func(args []any) (any, error)

// FuncActionSet runs Go functions in place of reduction bodies. A function is looked up by the text of the
// body with white spaces collapsed, so `{ return a + b }` and `{return a+b}` are different keys but
// `{ return  a + b }` is the same as the first one. A shifted token's value is its lexeme.
type FuncActionSet struct {
	gram  Grammar
	funcs map[string]ReduceFunc
}

func NewFuncActionSet(gram Grammar, funcs map[string]ReduceFunc) *FuncActionSet {
	fs := make(map[string]ReduceFunc, len(funcs))
	for code, f := range funcs {
		fs[normalizeCode(code)] = f
	}
	return &FuncActionSet{
		gram:  gram,
		funcs: fs,
	}
}

func (a *FuncActionSet) Shift(tok VToken) (any, error) {
	return string(tok.Lexeme()), nil
}

func (a *FuncActionSet) Reduce(reduction int, args []any) (any, error) {
	code := a.gram.Code(reduction)
	f, ok := a.funcs[normalizeCode(code)]
	if !ok {
		return nil, fmt.Errorf("no function for the reduction of %v: %v", a.gram.RuleName(reduction), code)
	}
	return f(args)
}

func normalizeCode(code string) string {
	return strings.Join(strings.Fields(code), " ")
}
