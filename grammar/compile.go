package grammar

import (
	"fmt"
	"io"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
	spec "github.com/nihei9/tarkan/spec/grammar"
)

// DefaultSkipPattern matches the white spaces the lexer discards between tokens.
const DefaultSkipPattern = `[\u{0009}\u{000A}\u{000D}\u{0020}]+`

const skipKindName = "skip"

type compileConfig struct {
	skipPattern string
}

type CompileOption func(config *compileConfig)

// SkipPattern replaces DefaultSkipPattern. An empty pattern discards nothing.
func SkipPattern(pattern string) CompileOption {
	return func(config *compileConfig) {
		config.skipPattern = pattern
	}
}

// Compile builds the LR(1) automaton of a grammar, bakes it, and compiles the lexical specification of its
// tokens. The report is returned even when the grammar has conflicts.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		skipPattern: DefaultSkipPattern,
	}
	for _, opt := range opts {
		opt(config)
	}

	graph, err := BuildLR1(gram)
	if graph == nil {
		return nil, nil, err
	}
	if err != nil {
		return nil, genReport(graph, nil), err
	}

	auto := Bake(graph)
	report := genReport(graph, auto)

	lexical, err := genLexicalSpec(gram.Name(), auto.Tokens, config.skipPattern)
	if err != nil {
		return nil, report, err
	}

	return &spec.CompiledGrammar{
		Name:      gram.Name(),
		Lexical:   lexical,
		Syntactic: genSyntacticSpec(auto),
	}, report, nil
}

func tokenKindName(id TokenID) string {
	return fmt.Sprintf("x_%v", int(id))
}

// genLexicalSpec gives every token except EOF a maleeni kind. Literals precede regexes so that a keyword
// wins over a pattern matching the same text.
func genLexicalSpec(name string, toks []Token, skipPattern string) (*spec.LexicalSpec, error) {
	var entries []*mlspec.LexEntry
	kindToToken := map[string]int{}
	for _, kind := range []TokenKind{TokenKindLiteral, TokenKindRegex} {
		for id, tok := range toks {
			if tok.Kind != kind {
				continue
			}
			pattern := tok.Text
			if kind == TokenKindLiteral {
				pattern = mlspec.EscapePattern(tok.Text)
			}
			k := tokenKindName(TokenID(id))
			entries = append(entries, &mlspec.LexEntry{
				Kind:    mlspec.LexKindName(k),
				Pattern: mlspec.LexPattern(pattern),
			})
			kindToToken[k] = id
		}
	}
	if skipPattern != "" {
		entries = append(entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(skipKindName),
			Pattern: mlspec.LexPattern(skipPattern),
		})
	}

	lexSpec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    name,
		Entries: entries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0], toks)
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr, toks)
			}
			return nil, fmt.Errorf("%v", b.String())
		}
		return nil, err
	}

	kind2Token := make([]int, len(lexSpec.KindNames))
	skip := make([]int, len(lexSpec.KindNames))
	for i, k := range lexSpec.KindNames {
		if k == mlspec.LexKindNameNil {
			kind2Token[i] = spec.TokenIDNil
			continue
		}
		if k.String() == skipKindName {
			kind2Token[i] = spec.TokenIDNil
			skip[i] = 1
			continue
		}
		id, ok := kindToToken[k.String()]
		if !ok {
			return nil, fmt.Errorf("lexical kind '%v' has no token", k)
		}
		kind2Token[i] = id
	}

	return &spec.LexicalSpec{
		Lexer: "maleeni",
		Maleeni: &spec.MaleeniLexSpec{
			Spec:        lexSpec,
			KindToToken: kind2Token,
			Skip:        skip,
		},
	}, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError, toks []Token) {
	kind := fmt.Sprint(cErr.Kind)
	var id int
	if _, err := fmt.Sscanf(kind, "x_%d", &id); err == nil && id > 0 && id < len(toks) {
		kind = toks[id].String()
	}
	fmt.Fprintf(w, "%v: %v", kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

func genSyntacticSpec(auto *Automaton) *spec.SyntacticSpec {
	toks := make([]*spec.Token, len(auto.Tokens))
	for i, tok := range auto.Tokens {
		toks[i] = &spec.Token{
			Kind: tok.Kind.String(),
			Text: tok.Text,
		}
	}
	reds := make([]*spec.Reduction, len(auto.Reductions))
	for i, r := range auto.Reductions {
		args := make([]*spec.Arg, len(r.Args))
		for j, a := range r.Args {
			if a == nil {
				continue
			}
			args[j] = &spec.Arg{
				Name: a.Name,
				Type: a.Type,
			}
		}
		reds[i] = &spec.Reduction{
			Rule:        r.RuleName,
			Alternative: r.Position.Alternative,
			Arity:       r.Arity,
			Code:        r.Code,
			Args:        args,
			ReturnType:  r.ReturnType,
			PassThrough: r.PassThrough,
			Start:       r.RuleName == auto.StartRule,
		}
	}
	return &spec.SyntacticSpec{
		Tokens:       toks,
		Reductions:   reds,
		Action:       auto.ActionTable(),
		GoTo:         auto.GoToTable(),
		StateCount:   len(auto.States),
		InitialState: int(auto.Start),
		StartRule:    auto.StartRule,
		RootType:     auto.RootType,
	}
}
