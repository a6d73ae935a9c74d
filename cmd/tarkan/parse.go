package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nihei9/tarkan/driver"
	spec "github.com/nihei9/tarkan/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source    *string
	onlyParse *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <compiled grammar file path>",
		Short:   "Parse a text stream",
		Example: `  cat src | tarkan parse calc.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.onlyParse = cmd.Flags().Bool("only-parse", false, "when this option is enabled, the parser doesn't build a syntax tree")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	tree, synErrs, err := parse(cgram, src, !*parseFlags.onlyParse)
	if err != nil {
		return err
	}
	if len(synErrs) > 0 {
		for _, synErr := range synErrs {
			pterm.Error.Println(synErr.Error())
		}
		return fmt.Errorf("%v syntax errors", len(synErrs))
	}
	if tree != nil {
		driver.PrintTree(os.Stdout, tree)
	}
	return nil
}

// parse parses src with a compiled grammar. The tree is nil unless buildTree is set and the input is accepted.
func parse(cgram *spec.CompiledGrammar, src io.Reader, buildTree bool) (*driver.Node, []*driver.SyntaxError, error) {
	gram := driver.NewGrammar(cgram)
	toks, err := driver.NewTokenStream(cgram, src)
	if err != nil {
		return nil, nil, err
	}
	var opts []driver.ParserOption
	if buildTree {
		opts = append(opts, driver.SemanticAction(driver.NewSyntaxTreeActionSet(gram)))
	}
	p, err := driver.NewParser(toks, gram, opts...)
	if err != nil {
		return nil, nil, err
	}
	err = p.Parse()
	if err != nil {
		return nil, nil, err
	}
	if synErrs := p.SyntaxErrors(); len(synErrs) > 0 {
		return nil, synErrs, nil
	}
	tree, _ := p.Result().(*driver.Node)
	return tree, nil, nil
}
