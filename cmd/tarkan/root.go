package main

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	config *string
	trace  *string
}{}

// conf holds the configuration file merged with the defaults. Subcommands read it after their own flags.
var conf = defaultConfig()

var rootCmd = &cobra.Command{
	Use:   "tarkan",
	Short: "Generate an LR(1) parser from a grammar",
	Long: `tarkan provides the following features:
- Compiles a grammar into ACTION/GOTO tables and a lexical specification.
- Parses a text stream with a compiled grammar and prints the syntax tree.
- Runs test cases against a grammar.`,
	PersistentPreRunE: setUp,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func init() {
	rootFlags.config = rootCmd.PersistentFlags().String("config", "", "config file path (default ./"+defaultConfigFileName+" if it exists)")
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "", "trace level [Debug|Info|Error]")
}

func setUp(cmd *cobra.Command, args []string) error {
	c, err := readConfig(*rootFlags.config)
	if err != nil {
		return err
	}
	conf = c

	level := conf.Trace
	if *rootFlags.trace != "" {
		level = *rootFlags.trace
	}
	setUpTracing(level)
	return nil
}

// setUpTracing routes traces to the standard logger, which writes to stderr.
func setUpTracing(level string) {
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	tracing.Select("tarkan.grammar").SetTraceLevel(tracing.TraceLevelFromString(level))
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
		return err
	}
	return nil
}
