package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/tarkan/grammar"
	"github.com/nihei9/tarkan/tester"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	startRule *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Test a grammar",
		Example: `  tarkan test calc.tarkan testdata`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.startRule = cmd.Flags().String("start", "", "start rule (default "+grammar.DefaultStartRule+")")
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	opts := grammarOptions{
		startRule: conf.StartRule,
		name:      conf.Name,
	}
	if *testFlags.startRule != "" {
		opts.startRule = *testFlags.startRule
	}
	g, err := readGrammar(args[0], opts)
	if err != nil {
		return fmt.Errorf("Cannot read a grammar: %w", err)
	}
	var compileOpts []grammar.CompileOption
	if conf.SkipPattern != nil {
		compileOpts = append(compileOpts, grammar.SkipPattern(*conf.SkipPattern))
	}
	cg, _, err := grammar.Compile(g, compileOpts...)
	if err != nil {
		return fmt.Errorf("Cannot compile the grammar: %w", err)
	}

	cs := tester.ListTestCases(args[1])
	errOccurred := false
	for _, c := range cs {
		if c.Error != nil {
			pterm.Error.Println(fmt.Sprintf("Failed to read a test case or a directory: %v\n%v", c.FilePath, c.Error))
			errOccurred = true
		}
	}
	if errOccurred {
		return errors.New("Cannot run test")
	}

	t := &tester.Tester{
		Grammar: cg,
		Cases:   cs,
	}
	rs := t.Run()
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
