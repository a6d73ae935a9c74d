package driver

import (
	"fmt"

	spec "github.com/nihei9/tarkan/spec/grammar"
)

// Grammar gives the parser access to the tables of a compiled grammar.
type Grammar interface {
	// InitialState returns the state the parser starts in.
	InitialState() int

	// Action returns an ACTION entry: 0 halts, n > 0 shifts to state n-1, and n < 0 reduces reduction -n-1.
	Action(state int, token int) int

	// GoTo returns the state to go to after reducing `reduction` in `state`, or 0 when there is none.
	GoTo(state int, reduction int) int

	// Arity returns the number of components of a reduction.
	Arity(reduction int) int

	// PassThrough reports whether a reduction forwards its only value.
	PassThrough(reduction int) bool

	// StartReduction reports whether a reduction reduces the start rule.
	StartReduction(reduction int) bool

	// RuleName returns the name of the rule a reduction reduces.
	RuleName(reduction int) string

	// Code returns the reduction body.
	Code(reduction int) string

	TokenCount() int

	// EOF returns the token ID of EOF.
	EOF() int

	// Token returns a printable form of a token.
	Token(token int) string
}

type grammarImpl struct {
	g *spec.CompiledGrammar
}

func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g: g,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.Syntactic.InitialState
}

func (g *grammarImpl) Action(state int, token int) int {
	return g.g.Syntactic.Action[state][token]
}

func (g *grammarImpl) GoTo(state int, reduction int) int {
	return g.g.Syntactic.GoTo[state][reduction]
}

func (g *grammarImpl) Arity(reduction int) int {
	return g.g.Syntactic.Reductions[reduction].Arity
}

func (g *grammarImpl) PassThrough(reduction int) bool {
	return g.g.Syntactic.Reductions[reduction].PassThrough
}

func (g *grammarImpl) StartReduction(reduction int) bool {
	return g.g.Syntactic.Reductions[reduction].Start
}

func (g *grammarImpl) RuleName(reduction int) string {
	return g.g.Syntactic.Reductions[reduction].Rule
}

func (g *grammarImpl) Code(reduction int) string {
	return g.g.Syntactic.Reductions[reduction].Code
}

func (g *grammarImpl) TokenCount() int {
	return len(g.g.Syntactic.Tokens)
}

func (g *grammarImpl) EOF() int {
	return spec.TokenIDEOF
}

func (g *grammarImpl) Token(token int) string {
	tok := g.g.Syntactic.Tokens[token]
	switch tok.Kind {
	case spec.TokenKindEOF:
		return "<eof>"
	case spec.TokenKindRegex:
		return fmt.Sprintf("r%q", tok.Text)
	}
	return fmt.Sprintf("%q", tok.Text)
}
