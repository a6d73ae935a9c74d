package driver

import (
	"io"

	mldriver "github.com/nihei9/maleeni/driver"
	spec "github.com/nihei9/tarkan/spec/grammar"
)

type VToken interface {
	// TokenID returns the token ID. It is meaningless for EOF and invalid tokens.
	TokenID() int

	Lexeme() []byte
	EOF() bool
	Invalid() bool

	// Position returns the row and column of the token. Both are 0-origin.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type vToken struct {
	tokenID int
	tok     *mldriver.Token
}

func (t *vToken) TokenID() int {
	return t.tokenID
}

func (t *vToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Invalid() bool {
	return t.tok.Invalid || t.tokenID == spec.TokenIDNil
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row, t.tok.Col
}

type tokenStream struct {
	lex         *mldriver.Lexer
	kindToToken []int
	skip        []int
}

// NewTokenStream returns a stream of the tokens of src. Tokens of skipped kinds never appear in the stream.
func NewTokenStream(g *spec.CompiledGrammar, src io.Reader) (TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.Lexical.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}

	return &tokenStream{
		lex:         lex,
		kindToToken: g.Lexical.Maleeni.KindToToken,
		skip:        g.Lexical.Maleeni.Skip,
	}, nil
}

func (l *tokenStream) Next() (VToken, error) {
	for {
		tok, err := l.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return &vToken{
				tokenID: spec.TokenIDEOF,
				tok:     tok,
			}, nil
		}
		if tok.Invalid {
			return &vToken{
				tokenID: spec.TokenIDNil,
				tok:     tok,
			}, nil
		}
		if l.skip[tok.KindID] > 0 {
			continue
		}
		return &vToken{
			tokenID: l.kindToToken[tok.KindID],
			tok:     tok,
		}, nil
	}
}
