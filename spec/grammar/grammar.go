package grammar

import mlspec "github.com/nihei9/maleeni/spec"

// CompiledGrammar is the output of the compiler. The driver interprets it, and the code generator turns it
// into Go source.
type CompiledGrammar struct {
	Name      string         `json:"name"`
	Lexical   *LexicalSpec   `json:"lexical"`
	Syntactic *SyntacticSpec `json:"syntactic"`
}

type LexicalSpec struct {
	Lexer   string         `json:"lexer"`
	Maleeni *MaleeniLexSpec `json:"maleeni"`
}

type MaleeniLexSpec struct {
	Spec *mlspec.CompiledLexSpec `json:"spec"`

	// KindToToken maps a maleeni kind ID to a token ID. The nil kind maps to TokenIDNil.
	KindToToken []int `json:"kind_to_token"`

	// Skip is indexed by a maleeni kind ID. A kind with a non-zero entry is discarded by the driver.
	Skip []int `json:"skip"`
}

const (
	TokenKindEOF     = "eof"
	TokenKindLiteral = "literal"
	TokenKindRegex   = "regex"
)

const (
	// TokenIDEOF is the token ID of EOF. The ID of the first column of the ACTION table.
	TokenIDEOF = 0

	// TokenIDNil is what KindToToken maps kinds without a token to.
	TokenIDNil = -1
)

type Token struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type Arg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Reduction struct {
	Rule        string `json:"rule"`
	Alternative int    `json:"alternative"`
	Arity       int    `json:"arity"`
	Code        string `json:"code"`
	Args        []*Arg `json:"args"`
	ReturnType  string `json:"return_type"`
	PassThrough bool   `json:"pass_through"`

	// Start is set for reductions of the start rule.
	Start bool `json:"start"`
}

// SyntacticSpec holds the tables. An ACTION entry 0 halts, n > 0 shifts to state n-1, and n < 0 reduces
// reduction -n-1. A GOTO entry is the target state, or 0 when absent.
type SyntacticSpec struct {
	Tokens       []*Token     `json:"tokens"`
	Reductions   []*Reduction `json:"reductions"`
	Action       [][]int      `json:"action"`
	GoTo         [][]int      `json:"goto"`
	StateCount   int          `json:"state_count"`
	InitialState int          `json:"initial_state"`
	StartRule    string       `json:"start_rule"`
	RootType     string       `json:"root_type"`
}
