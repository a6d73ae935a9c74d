package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/tarkan/driver"
	spec "github.com/nihei9/tarkan/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "repl <compiled grammar file path>",
		Short: "Parse lines interactively",
		Long: `repl reads lines and prints the syntax tree of each line.
Quit with <ctrl>D.`,
		Example: `  tarkan repl calc.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runREPL,
	}
	rootCmd.AddCommand(cmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return err
	}

	rl, err := readline.New("tarkan> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	pterm.Info.Println(fmt.Sprintf("Grammar %v (start rule %v)", cgram.Name, cgram.Syntactic.StartRule))
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupted
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		evalLine(cgram, line)
	}
	return nil
}

func evalLine(cgram *spec.CompiledGrammar, line string) {
	tree, synErrs, err := parse(cgram, strings.NewReader(line), true)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	for _, synErr := range synErrs {
		pterm.Error.Println(synErr.Error())
	}
	if tree == nil {
		return
	}
	pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(leveledTree(tree, pterm.LeveledList{}, 0))).Render()
}

func leveledTree(node *driver.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	text := node.KindName
	if node.Leaf {
		text = fmt.Sprintf("%q", node.Text)
	}
	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  text,
	})
	for _, c := range node.Children {
		ll = leveledTree(c, ll, level+1)
	}
	return ll
}
