package test

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/nihei9/tarkan/driver"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

// Tree is either a rule node with a kind and children or a token leaf with a lexeme.
type Tree struct {
	Parent   *Tree
	Offset   int
	Kind     string
	Children []*Tree
	Lexeme   string
	Leaf     bool
}

func NewNonTerminalTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalTree(lexeme string) *Tree {
	return &Tree{
		Lexeme: lexeme,
		Leaf:   true,
	}
}

// ConvertNode converts a tree built by driver.SyntaxTreeActionSet.
func ConvertNode(node *driver.Node) *Tree {
	if node.Leaf {
		return NewTerminalTree(node.Text)
	}
	var children []*Tree
	if len(node.Children) > 0 {
		children = make([]*Tree, len(node.Children))
		for i, c := range node.Children {
			children[i] = ConvertNode(c)
		}
	}
	return NewNonTerminalTree(node.KindName, children...)
}

func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.Parent = t
		c.Offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) label() string {
	if t.Leaf {
		return strconv.Quote(t.Lexeme)
	}
	return t.Kind
}

func (t *Tree) path() string {
	if t.Parent == nil {
		return t.label()
	}
	return fmt.Sprintf("%v.[%v]%v", t.Parent.path(), t.Offset, t.label())
}

func (t *Tree) Format() []byte {
	var b bytes.Buffer
	t.format(&b, 0)
	return b.Bytes()
}

func (t *Tree) format(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("    ")
	}
	if t.Leaf {
		buf.WriteString(strconv.Quote(t.Lexeme))
		return
	}
	buf.WriteString("(")
	buf.WriteString(t.Kind)
	if len(t.Children) > 0 {
		buf.WriteString("\n")
		for i, c := range t.Children {
			c.format(buf, depth+1)
			if i < len(t.Children)-1 {
				buf.WriteString("\n")
			}
		}
	}
	buf.WriteString(")")
}

// DiffTree lists the places where actual doesn't match expected. The kind `_` in expected matches any kind.
func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	if expected.Leaf != actual.Leaf {
		msg := fmt.Sprintf("unexpected node: expected %v but got %v", expected.label(), actual.label())
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Leaf {
		if expected.Lexeme != actual.Lexeme {
			msg := fmt.Sprintf("unexpected lexeme: expected %q but got %q", expected.Lexeme, actual.Lexeme)
			return []*TreeDiff{
				newTreeDiff(expected, actual, msg),
			}
		}
		return nil
	}
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}
