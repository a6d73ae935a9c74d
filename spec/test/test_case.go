package test

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// TestCase is a document of a test file:
//
//	name: addition
//	input: 1 + 2
//	tree: (E (F "1") "+" (F "2"))
//
// A case with `error: true` expects a syntax error instead of a tree.
type TestCase struct {
	Name   string
	Input  string
	Output *Tree
	Error  bool
}

type testCaseDoc struct {
	Name  string    `yaml:"name"`
	Input string    `yaml:"input"`
	Tree  yaml.Node `yaml:"tree"`
	Error bool      `yaml:"error"`
}

// ParseTestCases reads every YAML document of r as a test case.
func ParseTestCases(r io.Reader) ([]*TestCase, error) {
	dec := yaml.NewDecoder(r)
	var cases []*TestCase
	for {
		var doc testCaseDoc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		c, err := newTestCase(&doc)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test case found")
	}
	return cases, nil
}

func newTestCase(doc *testCaseDoc) (*TestCase, error) {
	c := &TestCase{
		Name:  doc.Name,
		Input: doc.Input,
		Error: doc.Error,
	}
	hasTree := doc.Tree.Kind != 0
	switch {
	case c.Error && hasTree:
		return nil, fmt.Errorf("%v: a test case expecting an error cannot have a tree", doc.Tree.Line)
	case !c.Error && !hasTree:
		return nil, fmt.Errorf("test case %q needs a tree or `error: true`", doc.Name)
	case c.Error:
		return c, nil
	}

	var src string
	err := doc.Tree.Decode(&src)
	if err != nil {
		return nil, fmt.Errorf("%v: a tree must be a string: %w", doc.Tree.Line, err)
	}
	// A block scalar starts on the line after its indicator.
	lineOffset := doc.Tree.Line - 1
	if doc.Tree.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		lineOffset++
	}
	c.Output, err = ParseTree(src, lineOffset)
	if err != nil {
		return nil, err
	}
	return c, nil
}
