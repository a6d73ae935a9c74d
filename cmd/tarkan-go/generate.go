package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nihei9/tarkan/driver"
	spec "github.com/nihei9/tarkan/spec/grammar"
	"github.com/spf13/cobra"
)

func Execute() error {
	return generateCmd.Execute()
}

var generateFlags = struct {
	pkgName *string
	output  *string
}{}

var generateCmd = &cobra.Command{
	Use:           "tarkan-go <compiled grammar file path>",
	Short:         "Generate a parser for Go",
	Long:          `tarkan-go generates a parser and a lexer for Go from a compiled grammar.`,
	Example:       `  tarkan-go calc.json -p calc`,
	Args:          cobra.ExactArgs(1),
	RunE:          runGenerate,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	generateFlags.pkgName = generateCmd.Flags().StringP("package", "p", "main", "package name")
	generateFlags.output = generateCmd.Flags().StringP("output", "o", ".", "output directory")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	{
		b, err := driver.GenLexer(cgram, *generateFlags.pkgName)
		if err != nil {
			return fmt.Errorf("Failed to generate a lexer: %w", err)
		}
		err = writeFile(fmt.Sprintf("%v_lexer.go", cgram.Name), b)
		if err != nil {
			return fmt.Errorf("Failed to write lexer source code: %w", err)
		}
	}

	{
		b, err := driver.GenParser(cgram, *generateFlags.pkgName)
		if err != nil {
			return fmt.Errorf("Failed to generate a parser: %w", err)
		}
		err = writeFile(fmt.Sprintf("%v_parser.go", cgram.Name), b)
		if err != nil {
			return fmt.Errorf("Failed to write parser source code: %w", err)
		}
	}

	return nil
}

func writeFile(name string, b []byte) error {
	return os.WriteFile(filepath.Join(*generateFlags.output, name), b, 0644)
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return nil, err
	}
	return cgram, nil
}
