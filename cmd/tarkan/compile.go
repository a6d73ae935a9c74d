package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	verr "github.com/nihei9/tarkan/error"
	"github.com/nihei9/tarkan/grammar"
	"github.com/nihei9/tarkan/spec"
	sgrammar "github.com/nihei9/tarkan/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output    *string
	startRule *string
	name      *string
	skip      *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile [<grammar file path>]",
		Short:   "Compile a grammar into parsing tables",
		Example: `  tarkan compile calc.tarkan -o calc.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.startRule = cmd.Flags().String("start", "", "start rule (default "+grammar.DefaultStartRule+")")
	compileFlags.name = cmd.Flags().String("name", "", "grammar name (default the base name of the grammar file)")
	compileFlags.skip = cmd.Flags().String("skip", grammar.DefaultSkipPattern, "pattern of the text the lexer discards; an empty pattern discards nothing")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}

	opts := grammarOptions{
		startRule: conf.StartRule,
		name:      conf.Name,
	}
	if *compileFlags.startRule != "" {
		opts.startRule = *compileFlags.startRule
	}
	if *compileFlags.name != "" {
		opts.name = *compileFlags.name
	}
	var compileOpts []grammar.CompileOption
	switch {
	case cmd.Flags().Changed("skip"):
		compileOpts = append(compileOpts, grammar.SkipPattern(*compileFlags.skip))
	case conf.SkipPattern != nil:
		compileOpts = append(compileOpts, grammar.SkipPattern(*conf.SkipPattern))
	}

	var gram *grammar.Grammar
	var err error
	if grmPath == "" {
		if opts.name == "" {
			opts.name = "stdin"
		}
		gram, err = readGrammarFrom(os.Stdin, "stdin", "", opts)
	} else {
		gram, err = readGrammar(grmPath, opts)
	}
	if err != nil {
		return err
	}

	cgram, report, err := grammar.Compile(gram, compileOpts...)
	if report != nil {
		rErr := writeReport(report, gram.Name(), *compileFlags.output)
		if rErr != nil {
			return fmt.Errorf("Cannot write a report: %w", rErr)
		}
	}
	if err != nil {
		var specErrs verr.SpecErrors
		if errors.As(err, &specErrs) {
			conflicts := 0
			for _, e := range specErrs {
				if _, ok := e.Cause.(grammar.Conflict); ok {
					conflicts++
				}
			}
			if conflicts > 0 {
				pterm.Error.Println(fmt.Sprintf("%v conflicts", conflicts))
			}
			specErrs.SetSource(grmPath, sourceName(grmPath))
		}
		return err
	}

	err = writeCompiledGrammar(cgram, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output file: %w", err)
	}
	return nil
}

type grammarOptions struct {
	startRule string
	name      string
}

func sourceName(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}

func readGrammar(path string, opts grammarOptions) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	if opts.name == "" {
		opts.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return readGrammarFrom(f, path, path, opts)
}

func readGrammarFrom(r io.Reader, srcName, filePath string, opts grammarOptions) (*grammar.Grammar, error) {
	ast, err := spec.Parse(r)
	if err != nil {
		return nil, withSource(err, filePath, srcName)
	}

	b := grammar.GrammarBuilder{
		AST:       ast,
		Name:      normalizeName(opts.name),
		StartRule: opts.startRule,
	}
	g, err := b.Build()
	if err != nil {
		return nil, withSource(err, filePath, srcName)
	}
	return g, nil
}

func withSource(err error, filePath, srcName string) error {
	var specErrs verr.SpecErrors
	if errors.As(err, &specErrs) {
		specErrs.SetSource(filePath, srcName)
	}
	return err
}

// normalizeName turns a name into snake case so that it can be a file name and a Go identifier.
func normalizeName(name string) string {
	var b strings.Builder
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9' && i > 0:
			b.WriteRune(c)
		case c >= 'A' && c <= 'Z':
			if i > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteRune('_')
			}
			b.WriteRune(c - 'A' + 'a')
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteRune('_')
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// outputPaths returns the paths of a compiled grammar and its report.
//
//  1. When the path is a directory, they are <path>/<name>.json and <path>/<name>-report.json.
//  2. When the path is a file or doesn't exist, the path is the compiled grammar and the report sits next to it.
//  3. When the path is empty, the compiled grammar goes to stdout and the report to the working directory.
func outputPaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}

func writeCompiledGrammar(cgram *sgrammar.CompiledGrammar, path string) error {
	cgramPath, _, err := outputPaths(cgram.Name, path)
	if err != nil {
		return err
	}

	var w io.Writer
	if cgramPath != "" {
		f, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	b, err := json.Marshal(cgram)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v\n", string(b))
	return nil
}

func writeReport(report *sgrammar.Report, gramName string, path string) error {
	_, reportPath, err := outputPaths(gramName, path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(f, "%v\n", string(b))
	return nil
}

func readCompiledGrammar(path string) (*sgrammar.CompiledGrammar, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot read the compiled grammar %s: %w", path, err)
	}
	cgram := &sgrammar.CompiledGrammar{}
	err = json.Unmarshal(b, cgram)
	if err != nil {
		return nil, fmt.Errorf("Cannot parse the compiled grammar %s: %w", path, err)
	}
	return cgram, nil
}
