package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/tarkan/driver"
	gspec "github.com/nihei9/tarkan/spec/grammar"
	tspec "github.com/nihei9/tarkan/spec/test"
)

type TestResult struct {
	TestCasePath string
	TestCaseName string
	Error        error
	Diffs        []*tspec.TreeDiff
}

func (r *TestResult) String() string {
	name := r.TestCasePath
	if r.TestCaseName != "" {
		name = fmt.Sprintf("%v (%v)", r.TestCasePath, r.TestCaseName)
	}
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", name, indent1, strings.Join(msgLines, "\n"+indent1))
		if len(r.Diffs) == 0 {
			return msg
		}
		var diffLines []string
		for _, diff := range r.Diffs {
			diffLines = append(diffLines, diff.Message)
			diffLines = append(diffLines, fmt.Sprintf("%vexpected path: %v", indent1, diff.ExpectedPath))
			diffLines = append(diffLines, fmt.Sprintf("%vactual path:   %v", indent1, diff.ActualPath))
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", name)
}

type TestCaseWithMetadata struct {
	TestCase *tspec.TestCase
	FilePath string
	Error    error
}

// ListTestCases reads the test cases of a file, or of every file under a directory.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		cs, err := parseTestCases(testPath)
		if err != nil {
			return []*TestCaseWithMetadata{
				{
					FilePath: testPath,
					Error:    err,
				},
			}
		}
		var cases []*TestCaseWithMetadata
		for _, c := range cs {
			cases = append(cases, &TestCaseWithMetadata{
				TestCase: c,
				FilePath: testPath,
			})
		}
		return cases
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCases(testCasePath string) ([]*tspec.TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tspec.ParseTestCases(f)
}

type Tester struct {
	Grammar *gspec.CompiledGrammar
	Cases   []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(t.Grammar, c))
	}
	return rs
}

func runTest(g *gspec.CompiledGrammar, c *TestCaseWithMetadata) *TestResult {
	if c.Error != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        c.Error,
		}
	}
	r := &TestResult{
		TestCasePath: c.FilePath,
		TestCaseName: c.TestCase.Name,
	}

	gram := driver.NewGrammar(g)
	toks, err := driver.NewTokenStream(g, strings.NewReader(c.TestCase.Input))
	if err != nil {
		r.Error = err
		return r
	}
	p, err := driver.NewParser(toks, gram, driver.SemanticAction(driver.NewSyntaxTreeActionSet(gram)))
	if err != nil {
		r.Error = err
		return r
	}
	err = p.Parse()
	if err != nil {
		r.Error = err
		return r
	}

	synErrs := p.SyntaxErrors()
	if c.TestCase.Error {
		if len(synErrs) == 0 {
			r.Error = fmt.Errorf("a syntax error was expected but the input was accepted")
		}
		return r
	}
	if len(synErrs) > 0 {
		r.Error = fmt.Errorf("unexpected syntax error: %w", synErrs[0])
		return r
	}

	node, ok := p.Result().(*driver.Node)
	if !ok || node == nil {
		r.Error = fmt.Errorf("parse tree was not generated")
		return r
	}
	diffs := tspec.DiffTree(c.TestCase.Output, tspec.ConvertNode(node).Fill())
	if len(diffs) > 0 {
		r.Error = fmt.Errorf("output mismatch")
		r.Diffs = diffs
	}
	return r
}
