package driver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	spec "github.com/nihei9/tarkan/spec/grammar"
	"golang.org/x/tools/imports"
)

type reductionFunc struct {
	ID         int
	Params     string
	Args       string
	ReturnType string
	Code       string
}

type parserData struct {
	Package         string
	RootType        string
	InitialState    int
	TokenTexts      []string
	ActionTable     [][]int
	GoToTable       [][]int
	TokenCount      int
	ReductionCount  int
	Arities         []int
	PassThroughs    []bool
	StartReductions []bool
	RuleNames       []string
	Funcs           []*reductionFunc
}

// GenParser generates a table-driven parser. Every reduction body becomes a function whose parameters are the
// bound components of its alternative.
func GenParser(cgram *spec.CompiledGrammar, pkgName string) ([]byte, error) {
	syn := cgram.Syntactic
	data := &parserData{
		Package:        pkgName,
		RootType:       syn.RootType,
		InitialState:   syn.InitialState,
		ActionTable:    syn.Action,
		GoToTable:      syn.GoTo,
		TokenCount:     len(syn.Tokens),
		ReductionCount: len(syn.Reductions),
	}
	gram := NewGrammar(cgram)
	for i := range syn.Tokens {
		data.TokenTexts = append(data.TokenTexts, gram.Token(i))
	}
	for i, r := range syn.Reductions {
		data.Arities = append(data.Arities, r.Arity)
		data.PassThroughs = append(data.PassThroughs, r.PassThrough)
		data.StartReductions = append(data.StartReductions, r.Start)
		data.RuleNames = append(data.RuleNames, r.Rule)
		if r.PassThrough {
			continue
		}
		var params []string
		var args []string
		for j, a := range r.Args {
			if a == nil {
				continue
			}
			params = append(params, fmt.Sprintf("%v %v", a.Name, a.Type))
			args = append(args, fmt.Sprintf("valueAs[%v](args[%v])", a.Type, j))
		}
		data.Funcs = append(data.Funcs, &reductionFunc{
			ID:         i,
			Params:     strings.Join(params, ", "),
			Args:       strings.Join(args, ", "),
			ReturnType: r.ReturnType,
			Code:       r.Code,
		})
	}

	tmpl, err := template.New("parser").Funcs(genFuncs).Parse(parserTemplate)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	err = tmpl.Execute(&b, data)
	if err != nil {
		return nil, err
	}

	out, err := imports.Process(fmt.Sprintf("%v_parser.go", cgram.Name), b.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("the generated parser is not valid Go: %w", err)
	}
	return out, nil
}

type lexerData struct {
	Package     string
	LexSpec     string
	KindToToken []int
	Skip        []int
}

// GenLexer generates a token stream for the parser GenParser generates. The compiled lexical specification
// is embedded in the source.
func GenLexer(cgram *spec.CompiledGrammar, pkgName string) ([]byte, error) {
	mal := cgram.Lexical.Maleeni
	lexSpec, err := json.Marshal(mal.Spec)
	if err != nil {
		return nil, err
	}
	data := &lexerData{
		Package:     pkgName,
		LexSpec:     string(lexSpec),
		KindToToken: mal.KindToToken,
		Skip:        mal.Skip,
	}

	tmpl, err := template.New("lexer").Funcs(genFuncs).Parse(lexerTemplate)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	err = tmpl.Execute(&b, data)
	if err != nil {
		return nil, err
	}

	out, err := imports.Process(fmt.Sprintf("%v_lexer.go", cgram.Name), b.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("the generated lexer is not valid Go: %w", err)
	}
	return out, nil
}

var genFuncs = template.FuncMap{
	"quote": strconv.Quote,
	"ints": func(ns []int) string {
		ss := make([]string, len(ns))
		for i, n := range ns {
			ss[i] = strconv.Itoa(n)
		}
		return strings.Join(ss, ", ")
	},
	"bools": func(bs []bool) string {
		ss := make([]string, len(bs))
		for i, b := range bs {
			ss[i] = strconv.FormatBool(b)
		}
		return strings.Join(ss, ", ")
	},
	"strings": func(ss []string) string {
		qs := make([]string, len(ss))
		for i, s := range ss {
			qs[i] = strconv.Quote(s)
		}
		return strings.Join(qs, ", ")
	},
}

const parserTemplate = `// Code generated by tarkan-go. DO NOT EDIT.

package {{ .Package }}

import (
	"fmt"
	"reflect"
	"strings"
)

type Token interface {
	TokenID() int
	Lexeme() []byte
	EOF() bool
	Invalid() bool
	Position() (int, int)
}

type TokenStream interface {
	Next() (Token, error)
}

type SyntaxError struct {
	Row            int
	Col            int
	Message        string
	Token          Token
	ExpectedTokens []string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v", e.Row+1, e.Col+1, e.Message)
	if e.Token.EOF() {
		fmt.Fprintf(&b, ": <eof>")
	} else {
		fmt.Fprintf(&b, ": '%v'", string(e.Token.Lexeme()))
	}
	if len(e.ExpectedTokens) > 0 {
		fmt.Fprintf(&b, ": expected: %v", strings.Join(e.ExpectedTokens, ", "))
	}
	return b.String()
}

const (
	tokenIDEOF     = 0
	initialState   = {{ .InitialState }}
	tokenCount     = {{ .TokenCount }}
	reductionCount = {{ .ReductionCount }}
)

var tokenTexts = [tokenCount]string{ {{- strings .TokenTexts -}} }

var actionTable = [...][tokenCount]int{
{{- range .ActionTable }}
	{ {{- ints . -}} },
{{- end }}
}

var goToTable = [...][reductionCount]int{
{{- range .GoToTable }}
	{ {{- ints . -}} },
{{- end }}
}

var arities = [reductionCount]int{ {{- ints .Arities -}} }

var passThroughs = [reductionCount]bool{ {{- bools .PassThroughs -}} }

var startReductions = [reductionCount]bool{ {{- bools .StartReductions -}} }

var ruleNames = [reductionCount]string{ {{- strings .RuleNames -}} }
{{ range .Funcs }}
func reduction{{ .ID }}({{ .Params }}) {{ .ReturnType }} {{ .Code }}
{{ end }}
func valueAs[T any](v any) T {
	t, ok := v.(T)
	if !ok && v != nil {
		panic(fmt.Sprintf("a value of type %T cannot be used as %v", v, reflect.TypeOf((*T)(nil)).Elem()))
	}
	return t
}

func reduce(red int, args []any) any {
	switch red {
{{- range .Funcs }}
	case {{ .ID }}:
		return reduction{{ .ID }}({{ .Args }})
{{- end }}
	}
	return nil
}

type frame struct {
	state int
	value any
	start bool
}

func expectedTokens(state int, stack []frame) []string {
	var toks []string
	for tok, act := range actionTable[state] {
		if act == 0 && !(tok == tokenIDEOF && len(stack) == 2 && stack[1].start) {
			continue
		}
		toks = append(toks, tokenTexts[tok])
	}
	return toks
}

func newSyntaxError(tok Token, msg string, stack []frame) *SyntaxError {
	row, col := tok.Position()
	return &SyntaxError{
		Row:            row,
		Col:            col,
		Message:        msg,
		Token:          tok,
		ExpectedTokens: expectedTokens(stack[len(stack)-1].state, stack),
	}
}

// Parse parses the tokens of ts and returns the value of the start rule.
func Parse(ts TokenStream) ({{ .RootType }}, error) {
	var zero {{ .RootType }}
	stack := []frame{
		{
			state: initialState,
		},
	}
	tok, err := ts.Next()
	if err != nil {
		return zero, err
	}
	for {
		if tok.Invalid() {
			return zero, newSyntaxError(tok, "invalid token", stack)
		}
		tokID := tokenIDEOF
		if !tok.EOF() {
			tokID = tok.TokenID()
		}
		act := actionTable[stack[len(stack)-1].state][tokID]
		switch {
		case act > 0:
			stack = append(stack, frame{
				state: act - 1,
				value: string(tok.Lexeme()),
			})
			tok, err = ts.Next()
			if err != nil {
				return zero, err
			}
		case act < 0:
			red := -act - 1
			n := arities[red]
			args := make([]any, n)
			for i, f := range stack[len(stack)-n:] {
				args[i] = f.value
			}
			var v any
			if passThroughs[red] {
				v = args[0]
			} else {
				v = reduce(red, args)
			}
			stack = stack[:len(stack)-n]
			next := goToTable[stack[len(stack)-1].state][red]
			if next == 0 {
				if startReductions[red] && len(stack) == 1 && tok.EOF() {
					return valueAs[{{ .RootType }}](v), nil
				}
				return zero, fmt.Errorf("no goto entry for %v in state %v", ruleNames[red], stack[len(stack)-1].state)
			}
			stack = append(stack, frame{
				state: next,
				value: v,
				start: startReductions[red],
			})
		default:
			if tok.EOF() && len(stack) == 2 && stack[1].start {
				return valueAs[{{ .RootType }}](stack[1].value), nil
			}
			return zero, newSyntaxError(tok, "unexpected token", stack)
		}
	}
}
`

const lexerTemplate = `// Code generated by tarkan-go. DO NOT EDIT.

package {{ .Package }}

import (
	"encoding/json"
	"io"

	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

const lexSpecJSON = {{ quote .LexSpec }}

var kindToToken = []int{ {{- ints .KindToToken -}} }

var skipKinds = []int{ {{- ints .Skip -}} }

type token struct {
	tokenID int
	tok     *mldriver.Token
}

func (t *token) TokenID() int {
	return t.tokenID
}

func (t *token) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *token) EOF() bool {
	return t.tok.EOF
}

func (t *token) Invalid() bool {
	return t.tok.Invalid || t.tokenID < 0
}

func (t *token) Position() (int, int) {
	return t.tok.Row, t.tok.Col
}

type tokenStream struct {
	lex *mldriver.Lexer
}

// NewTokenStream returns a stream of the tokens of src.
func NewTokenStream(src io.Reader) (TokenStream, error) {
	s := &mlspec.CompiledLexSpec{}
	err := json.Unmarshal([]byte(lexSpecJSON), s)
	if err != nil {
		return nil, err
	}
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &tokenStream{
		lex: lex,
	}, nil
}

func (s *tokenStream) Next() (Token, error) {
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF || tok.Invalid {
			return &token{
				tok: tok,
			}, nil
		}
		if skipKinds[tok.KindID] > 0 {
			continue
		}
		return &token{
			tokenID: kindToToken[tok.KindID],
			tok:     tok,
		}, nil
	}
}
`
