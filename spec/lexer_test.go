package spec

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/tarkan/error"
)

func TestLexer_Run(t *testing.T) {
	tok := func(kind tokenKind, text string) *token {
		return &token{
			kind: kind,
			text: text,
		}
	}

	tests := []struct {
		caption string
		src     string
		tokens  []*token
		err     *SyntaxError
	}{
		{
			caption: "the lexer can recognize all kinds of tokens",
			src:     `id "literal" r"regex" { code } : | -> $ = ; *`,
			tokens: []*token{
				tok(tokenKindID, "id"),
				tok(tokenKindLiteral, "literal"),
				tok(tokenKindRegex, "regex"),
				tok(tokenKindCode, "{ code }"),
				tok(tokenKindColon, ":"),
				tok(tokenKindOr, "|"),
				tok(tokenKindArrow, "->"),
				tok(tokenKindDollar, "$"),
				tok(tokenKindAssign, "="),
				tok(tokenKindSemicolon, ";"),
				tok(tokenKindStar, "*"),
				newEOFToken(Position{}),
			},
		},
		{
			caption: "the lexer skips comments and white spaces",
			src: "// line comment\n" +
				"a /* block\n comment */ b\t\r\n",
			tokens: []*token{
				tok(tokenKindID, "a"),
				tok(tokenKindID, "b"),
				newEOFToken(Position{}),
			},
		},
		{
			caption: "a literal is unquoted",
			src:     `"\"\\\n\u3042" "+"`,
			tokens: []*token{
				tok(tokenKindLiteral, "\"\\\n\u3042"),
				tok(tokenKindLiteral, "+"),
				newEOFToken(Position{}),
			},
		},
		{
			caption: "only escaped double quotes are unescaped in a regex",
			src:     `r"\"[^\"\\]*\"" r"\d+"`,
			tokens: []*token{
				tok(tokenKindRegex, `"[^"\\]*"`),
				tok(tokenKindRegex, `\d+`),
				newEOFToken(Position{}),
			},
		},
		{
			caption: "a code block can contain nested braces, strings, and comments",
			src:     "{ if x { return \"}\" } // }\n return '}' + `}` /* } */ } ;",
			tokens: []*token{
				tok(tokenKindCode, "{ if x { return \"}\" } // }\n return '}' + `}` /* } */ }"),
				tok(tokenKindSemicolon, ";"),
				newEOFToken(Position{}),
			},
		},
		{
			caption: "an identifier can contain underscores and digits",
			src:     `_foo bar_1 Baz2`,
			tokens: []*token{
				tok(tokenKindID, "_foo"),
				tok(tokenKindID, "bar_1"),
				tok(tokenKindID, "Baz2"),
				newEOFToken(Position{}),
			},
		},
		{
			caption: "an unknown character is an invalid token",
			src:     `a ? b`,
			tokens: []*token{
				tok(tokenKindID, "a"),
				tok(tokenKindInvalid, "?"),
				tok(tokenKindID, "b"),
				newEOFToken(Position{}),
			},
		},
		{
			caption: "a literal must not be empty",
			src:     `""`,
			err:     synErrEmptyTerminal,
		},
		{
			caption: "a regex must not be empty",
			src:     `r""`,
			err:     synErrEmptyTerminal,
		},
		{
			caption: "a literal must be a valid Go string",
			src:     `"\q"`,
			err:     synErrInvalidEscSeq,
		},
		{
			caption: "a code block must be closed",
			src:     `{ return {}`,
			err:     synErrUnclosedCode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l, err := newLexer(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			n := 0
			for {
				var tok *token
				tok, err = l.next()
				if err != nil {
					break
				}
				if n >= len(tt.tokens) {
					t.Fatalf("unexpected token: %+v", tok)
				}
				testToken(t, tok, tt.tokens[n])
				n++
				if tok.kind == tokenKindEOF {
					break
				}
			}
			if tt.err != nil {
				var specErr *verr.SpecError
				if !errors.As(err, &specErr) {
					t.Fatalf("an expected error didn't occur: %v", err)
				}
				if specErr.Cause != tt.err {
					t.Fatalf("unexpected error: want: %v, got: %v", tt.err, specErr.Cause)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != len(tt.tokens) {
				t.Fatalf("unexpected token count: want: %v, got: %v", len(tt.tokens), n)
			}
		})
	}
}

func TestLexer_Position(t *testing.T) {
	l, err := newLexer(strings.NewReader("a\n  bb c"))
	if err != nil {
		t.Fatal(err)
	}
	a, err := l.next()
	if err != nil {
		t.Fatal(err)
	}
	b, err := l.next()
	if err != nil {
		t.Fatal(err)
	}
	c, err := l.next()
	if err != nil {
		t.Fatal(err)
	}
	if b.pos.Row != a.pos.Row+1 || c.pos.Row != b.pos.Row {
		t.Fatalf("unexpected rows: %v, %v, %v", a.pos, b.pos, c.pos)
	}
	if c.pos.Col != b.pos.Col+3 {
		t.Fatalf("unexpected columns: %v, %v", b.pos, c.pos)
	}
}

func testToken(t *testing.T, actual, expected *token) {
	t.Helper()

	if actual.kind != expected.kind || actual.text != expected.text {
		t.Fatalf("unexpected token; want: %+v, got: %+v", expected, actual)
	}
}
