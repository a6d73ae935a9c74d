package spec

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	verr "github.com/nihei9/tarkan/error"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type tokenKind string

const (
	tokenKindID        = tokenKind("id")
	tokenKindLiteral   = tokenKind("literal")
	tokenKindRegex     = tokenKind("regex")
	tokenKindCode      = tokenKind("code")
	tokenKindColon     = tokenKind(":")
	tokenKindOr        = tokenKind("|")
	tokenKindArrow     = tokenKind("->")
	tokenKindDollar    = tokenKind("$")
	tokenKindAssign    = tokenKind("=")
	tokenKindSemicolon = tokenKind(";")
	tokenKindStar      = tokenKind("*")
	tokenKindEOF       = tokenKind("<eof>")
	tokenKindInvalid   = tokenKind("<invalid>")
)

// tokenKinds is indexed by the token type numbers lexmachine reports.
var tokenKinds = []tokenKind{
	tokenKindID,
	tokenKindLiteral,
	tokenKindRegex,
	tokenKindCode,
	tokenKindColon,
	tokenKindOr,
	tokenKindArrow,
	tokenKindDollar,
	tokenKindAssign,
	tokenKindSemicolon,
	tokenKindStar,
}

func (k tokenKind) id() int {
	for i, kind := range tokenKinds {
		if kind == k {
			return i
		}
	}
	return -1
}

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

var (
	lexOnce sync.Once
	lex     *lexmachine.Lexer
	lexErr  error
)

func compiledLexer() (*lexmachine.Lexer, error) {
	lexOnce.Do(func() {
		l := lexmachine.NewLexer()
		l.Add([]byte(`//[^\n]*`), skip)
		l.Add([]byte(`/\*([^*]|\*+[^*/])*\*+/`), skip)
		l.Add([]byte(`( |\t|\n|\r)+`), skip)
		l.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), makeToken(tokenKindID))
		l.Add([]byte(`"([^\\"]|(\\.))*"`), makeToken(tokenKindLiteral))
		l.Add([]byte(`r"([^\\"]|(\\.))*"`), makeToken(tokenKindRegex))
		l.Add([]byte(`\{`), captureCode)
		for _, kind := range []tokenKind{
			tokenKindColon,
			tokenKindOr,
			tokenKindArrow,
			tokenKindDollar,
			tokenKindAssign,
			tokenKindSemicolon,
			tokenKindStar,
		} {
			p := "\\" + strings.Join(strings.Split(string(kind), ""), "\\")
			l.Add([]byte(p), makeToken(kind))
		}
		lexErr = l.Compile()
		lex = l
	})
	return lex, lexErr
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(kind tokenKind) lexmachine.Action {
	id := kind.id()
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// captureCode consumes a brace-delimited code block. Braces inside string, rune and raw string literals
// and inside comments don't count.
func captureCode(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
	end, ok := findCodeEnd(s.Text, s.TC)
	if !ok {
		return nil, &verr.SpecError{
			Cause: synErrUnclosedCode,
			Row:   m.StartLine,
			Col:   m.StartColumn,
		}
	}
	code := string(s.Text[m.TC:end])
	s.TC = end
	return s.Token(tokenKindCode.id(), code, m), nil
}

// findCodeEnd returns the offset just after the brace closing the block opened before `from`.
func findCodeEnd(src []byte, from int) (int, bool) {
	depth := 1
	for i := from; i < len(src); i++ {
		switch c := src[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '"', '\'':
			i = skipQuoted(src, i, c)
		case '`':
			j := i + 1
			for j < len(src) && src[j] != '`' {
				j++
			}
			i = j
		case '/':
			if i+1 >= len(src) {
				continue
			}
			switch src[i+1] {
			case '/':
				for i < len(src) && src[i] != '\n' {
					i++
				}
			case '*':
				j := i + 2
				for j+1 < len(src) && !(src[j] == '*' && src[j+1] == '/') {
					j++
				}
				i = j + 1
			}
		}
	}
	return 0, false
}

func skipQuoted(src []byte, from int, quote byte) int {
	for i := from + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote, '\n':
			return i
		}
	}
	return len(src)
}

type lexer struct {
	src []byte
	s   *lexmachine.Scanner
}

func newLexer(src io.Reader) (*lexer, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	l, err := compiledLexer()
	if err != nil {
		return nil, fmt.Errorf("failed to compile the grammar lexer: %w", err)
	}
	s, err := l.Scanner(b)
	if err != nil {
		return nil, err
	}
	return &lexer{
		src: b,
		s:   s,
	}, nil
}

func (l *lexer) next() (*token, error) {
	tok, err, eof := l.s.Next()
	if err != nil {
		if specErr, ok := err.(*verr.SpecError); ok {
			return nil, specErr
		}
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			end := ui.FailTC
			if end <= ui.StartTC {
				end = ui.StartTC + 1
			}
			if end > len(l.src) {
				end = len(l.src)
			}
			l.s.TC = end
			return newInvalidToken(string(l.src[ui.StartTC:end]), newPosition(ui.StartLine, ui.StartColumn)), nil
		}
		return nil, err
	}
	if eof {
		return newEOFToken(l.posOf(len(l.src))), nil
	}

	t := tok.(*lexmachine.Token)
	kind := tokenKinds[t.Type]
	pos := newPosition(t.StartLine, t.StartColumn)
	text := t.Value.(string)
	switch kind {
	case tokenKindLiteral:
		v, err := strconv.Unquote(text)
		if err != nil {
			return nil, &verr.SpecError{
				Cause:  synErrInvalidEscSeq,
				Detail: text,
				Row:    pos.Row,
				Col:    pos.Col,
			}
		}
		if v == "" {
			return nil, &verr.SpecError{
				Cause: synErrEmptyTerminal,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		text = v
	case tokenKindRegex:
		v := strings.ReplaceAll(text[2:len(text)-1], `\"`, `"`)
		if v == "" {
			return nil, &verr.SpecError{
				Cause: synErrEmptyTerminal,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		text = v
	}
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}, nil
}

// readRaw returns the source text from the current offset up to, but excluding, the first `stop` byte
// outside of brackets. Go types contain tokens the grammar language doesn't know, so they are taken verbatim.
func (l *lexer) readRaw(stop byte) (string, Position, error) {
	start := l.s.TC
	for start < len(l.src) && isSpace(l.src[start]) {
		start++
	}
	pos := l.posOf(start)
	depth := 0
	for i := start; i < len(l.src); i++ {
		switch c := l.src[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		default:
			if c == stop && depth == 0 {
				l.s.TC = i
				return strings.TrimSpace(string(l.src[start:i])), pos, nil
			}
		}
	}
	return "", pos, &verr.SpecError{
		Cause: synErrUnclosedType,
		Row:   pos.Row,
		Col:   pos.Col,
	}
}

func (l *lexer) posOf(offset int) Position {
	row := 1
	col := 1
	for _, c := range l.src[:offset] {
		if c == '\n' {
			row++
			col = 1
			continue
		}
		col++
	}
	return newPosition(row, col)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
