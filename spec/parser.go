package spec

import (
	"io"
	"strings"

	verr "github.com/nihei9/tarkan/error"
)

type RootNode struct {
	Rules   []*RuleNode
	Members []*MemberNode
}

type RuleNode struct {
	Name         string
	Type         string
	Alternatives []*AlternativeNode
	Pos          Position
}

type AlternativeNode struct {
	Components []*ComponentNode
	Code       string
	Pos        Position
}

type ComponentKind string

const (
	ComponentKindRule     = ComponentKind("rule")
	ComponentKindLiteral  = ComponentKind("literal")
	ComponentKindRegex    = ComponentKind("regex")
	ComponentKindWildcard = ComponentKind("wildcard")
)

type ComponentNode struct {
	Kind    ComponentKind
	Value   string
	Binding string
	Pos     Position
}

// MemberNode is a `$name: Type;` declaration. It gives the type of the values bound to `$name`.
type MemberNode struct {
	Name string
	Type string
	Pos  Position
}

func raiseSyntaxError(pos Position, synErr *SyntaxError) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   pos.Row,
		Col:   pos.Col,
	})
}

// Parse reads a grammar. Syntax errors are reported as verr.SpecErrors.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		switch err := recover().(type) {
		case nil:
		case *verr.SpecError:
			retErr = verr.SpecErrors{err}
		case error:
			retErr = err
		default:
			panic(err)
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		if p.consume(tokenKindEOF) {
			break
		}
		if p.consume(tokenKindDollar) {
			root.Members = append(root.Members, p.parseMember())
			continue
		}
		root.Rules = append(root.Rules, p.parseRule())
	}
	if len(root.Rules) == 0 {
		raiseSyntaxError(p.lastTok.pos, synErrNoRule)
	}
	return root
}

func (p *parser) parseMember() *MemberNode {
	pos := p.lastTok.pos
	if !p.consume(tokenKindID) {
		raiseSyntaxError(p.peekPos(), synErrNoMemberName)
	}
	name := p.lastTok.text
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(p.peekPos(), synErrNoMemberColon)
	}
	typ := p.readType(';')
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(p.peekPos(), synErrNoMemberSemicolon)
	}
	return &MemberNode{
		Name: name,
		Type: typ,
		Pos:  pos,
	}
}

func (p *parser) parseRule() *RuleNode {
	if !p.consume(tokenKindID) {
		raiseSyntaxError(p.peekPos(), synErrNoRuleName)
	}
	name := p.lastTok.text
	pos := p.lastTok.pos
	var typ string
	if p.consume(tokenKindArrow) {
		typ = p.readType(':')
	}
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(p.peekPos(), synErrNoColon)
	}
	alts := []*AlternativeNode{p.parseAlternative()}
	for p.consume(tokenKindOr) {
		alts = append(alts, p.parseAlternative())
	}
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(p.peekPos(), synErrNoSemicolon)
	}
	return &RuleNode{
		Name:         name,
		Type:         typ,
		Alternatives: alts,
		Pos:          pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	alt := &AlternativeNode{
		Pos: p.peekPos(),
	}
	for {
		comp := p.parseComponent()
		if comp == nil {
			break
		}
		alt.Components = append(alt.Components, comp)
	}
	if p.consume(tokenKindCode) {
		alt.Code = p.lastTok.text
		if comp := p.parseComponent(); comp != nil {
			raiseSyntaxError(comp.Pos, synErrCodeNotLast)
		}
	}
	return alt
}

func (p *parser) parseComponent() *ComponentNode {
	if p.consume(tokenKindDollar) {
		pos := p.lastTok.pos
		if !p.consume(tokenKindID) {
			raiseSyntaxError(p.peekPos(), synErrNoBindingName)
		}
		binding := p.lastTok.text
		if !p.consume(tokenKindAssign) {
			raiseSyntaxError(p.peekPos(), synErrNoAssign)
		}
		comp := p.parseBareComponent()
		if comp == nil {
			raiseSyntaxError(p.peekPos(), synErrNoBoundComponent)
		}
		comp.Binding = binding
		comp.Pos = pos
		return comp
	}
	return p.parseBareComponent()
}

func (p *parser) parseBareComponent() *ComponentNode {
	var kind ComponentKind
	switch {
	case p.consume(tokenKindID):
		kind = ComponentKindRule
	case p.consume(tokenKindLiteral):
		kind = ComponentKindLiteral
	case p.consume(tokenKindRegex):
		kind = ComponentKindRegex
	case p.consume(tokenKindStar):
		kind = ComponentKindWildcard
	default:
		return nil
	}
	comp := &ComponentNode{
		Kind: kind,
		Pos:  p.lastTok.pos,
	}
	if kind != ComponentKindWildcard {
		comp.Value = p.lastTok.text
	}
	return comp
}

// readType reads a type written in the target language. It must be called right after a successful
// consume so that no token has been peeked yet.
func (p *parser) readType(stop byte) string {
	typ, pos, err := p.lex.readRaw(stop)
	if err != nil {
		panic(err)
	}
	if typ == "" {
		raiseSyntaxError(pos, synErrNoType)
	}
	return typ
}

func (p *parser) peekPos() Position {
	if p.peekedTok == nil {
		tok, err := p.lex.next()
		if err != nil {
			panic(err)
		}
		p.peekedTok = tok
	}
	return p.peekedTok.pos
}

func (p *parser) consume(expected tokenKind) bool {
	var tok *token
	var err error
	if p.peekedTok != nil {
		tok = p.peekedTok
		p.peekedTok = nil
	} else {
		tok, err = p.lex.next()
		if err != nil {
			panic(err)
		}
	}
	p.lastTok = tok
	if tok.kind == tokenKindInvalid {
		if strings.HasPrefix(tok.text, `"`) || strings.HasPrefix(tok.text, `r"`) {
			raiseSyntaxError(tok.pos, synErrUnclosedTerminal)
		}
		raiseSyntaxError(tok.pos, synErrInvalidToken)
	}
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	p.lastTok = nil

	return false
}
