package grammar

import (
	"fmt"
	"strings"
)

type TokenKind int

const (
	TokenKindEOF TokenKind = iota
	TokenKindLiteral
	TokenKindRegex
)

func (k TokenKind) String() string {
	switch k {
	case TokenKindEOF:
		return "eof"
	case TokenKindLiteral:
		return "literal"
	case TokenKindRegex:
		return "regex"
	}
	return "?"
}

// Token is a terminal symbol. A literal token matches its text verbatim and a regex token matches its text
// as a pattern. Tokens are comparable and used as map keys.
type Token struct {
	Kind TokenKind
	Text string
}

// TokenEOF marks the end of input. It is always interned first.
var TokenEOF = Token{Kind: TokenKindEOF}

func (t Token) String() string {
	switch t.Kind {
	case TokenKindEOF:
		return "<eof>"
	case TokenKindRegex:
		return fmt.Sprintf("r%q", t.Text)
	}
	return fmt.Sprintf("%q", t.Text)
}

func compareTokens(a, b Token) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Text, b.Text)
}

func tokenComparator(a, b interface{}) int {
	return compareTokens(a.(Token), b.(Token))
}

// Symbol is what an LR state transitions on: either a token or a rule.
type Symbol struct {
	Token  Token
	Rule   RuleID
	IsRule bool
}

func TokenSymbol(tok Token) Symbol {
	return Symbol{
		Token: tok,
	}
}

func RuleSymbol(rule RuleID) Symbol {
	return Symbol{
		Rule:   rule,
		IsRule: true,
	}
}
