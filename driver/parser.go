package driver

import (
	"fmt"
	"strings"
)

type SyntaxError struct {
	Row            int
	Col            int
	Message        string
	Token          VToken
	ExpectedTokens []string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v", e.Row+1, e.Col+1, e.Message)
	switch {
	case e.Token.EOF():
		fmt.Fprintf(&b, ": <eof>")
	default:
		fmt.Fprintf(&b, ": '%v'", string(e.Token.Lexeme()))
	}
	if len(e.ExpectedTokens) > 0 {
		fmt.Fprintf(&b, ": expected: %v", strings.Join(e.ExpectedTokens, ", "))
	}
	return b.String()
}

type ParserOption func(p *Parser) error

func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		p.semAct = semAct
		return nil
	}
}

type frame struct {
	state int
	value any

	// start is set when value comes from a reduction of the start rule.
	start bool
}

type Parser struct {
	toks    TokenStream
	gram    Grammar
	stack   []*frame
	semAct  SemanticActionSet
	synErrs []*SyntaxError
	result  any
}

func NewParser(toks TokenStream, gram Grammar, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		toks: toks,
		gram: gram,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	if p.semAct == nil {
		p.semAct = &nopActionSet{}
	}

	return p, nil
}

// Parse runs the parser until it accepts the input or finds a syntax error. A syntax error doesn't make
// Parse fail; see SyntaxErrors. Parse fails when the token stream or a semantic action does.
func (p *Parser) Parse() error {
	p.stack = []*frame{
		{
			state: p.gram.InitialState(),
		},
	}
	tok, err := p.toks.Next()
	if err != nil {
		return err
	}

	for {
		if tok.Invalid() {
			p.raiseSyntaxError(tok, "invalid token")
			return nil
		}

		act := p.gram.Action(p.top(), p.tokenID(tok))
		switch {
		case act > 0: // Shift
			v, err := p.semAct.Shift(tok)
			if err != nil {
				return err
			}
			p.push(act-1, v, false)

			tok, err = p.toks.Next()
			if err != nil {
				return err
			}
		case act < 0: // Reduce
			red := act*-1 - 1
			n := p.gram.Arity(red)
			args := make([]any, n)
			for i, f := range p.stack[len(p.stack)-n:] {
				args[i] = f.value
			}

			var v any
			if p.gram.PassThrough(red) {
				v = args[0]
			} else {
				v, err = p.semAct.Reduce(red, args)
				if err != nil {
					return err
				}
			}
			p.pop(n)

			start := p.gram.StartReduction(red)
			next := p.gram.GoTo(p.top(), red)
			if next == 0 {
				if start && len(p.stack) == 1 && tok.EOF() {
					p.result = v
					return nil
				}
				return fmt.Errorf("no goto entry for reduction %v (%v) in state %v", red, p.gram.RuleName(red), p.top())
			}
			p.push(next, v, start)
		default: // Halt
			if tok.EOF() && len(p.stack) == 2 && p.stack[1].start {
				p.result = p.stack[1].value
				return nil
			}
			p.raiseSyntaxError(tok, "unexpected token")
			return nil
		}
	}
}

func (p *Parser) raiseSyntaxError(tok VToken, msg string) {
	row, col := tok.Position()
	p.synErrs = append(p.synErrs, &SyntaxError{
		Row:            row,
		Col:            col,
		Message:        msg,
		Token:          tok,
		ExpectedTokens: p.searchLookahead(p.top()),
	})
}

func (p *Parser) tokenID(tok VToken) int {
	if tok.EOF() {
		return p.gram.EOF()
	}
	return tok.TokenID()
}

func (p *Parser) top() int {
	return p.stack[len(p.stack)-1].state
}

func (p *Parser) push(state int, v any, start bool) {
	p.stack = append(p.stack, &frame{
		state: state,
		value: v,
		start: start,
	})
}

func (p *Parser) pop(n int) {
	p.stack = p.stack[:len(p.stack)-n]
}

// Result returns the value of the accepted input. It is nil until the parser accepts.
func (p *Parser) Result() any {
	return p.result
}

func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

// searchLookahead lists the tokens the parser can act on in a state. EOF is listed only when the state can
// accept or reduce on it.
func (p *Parser) searchLookahead(state int) []string {
	toks := []string{}
	for tok := 0; tok < p.gram.TokenCount(); tok++ {
		act := p.gram.Action(state, tok)
		if act == 0 {
			if tok == p.gram.EOF() && len(p.stack) == 2 && p.stack[1].start {
				toks = append(toks, p.gram.Token(tok))
			}
			continue
		}
		toks = append(toks, p.gram.Token(tok))
	}
	return toks
}
