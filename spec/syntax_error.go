package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrUnclosedTerminal = newSyntaxError("unclosed terminal")
	synErrEmptyTerminal    = newSyntaxError("a terminal must contain at least one character")
	synErrInvalidEscSeq    = newSyntaxError("invalid escape sequence")
	synErrUnclosedCode     = newSyntaxError("unclosed code block")
	synErrUnclosedType     = newSyntaxError("a type is not terminated")

	// syntax errors
	synErrInvalidToken      = newSyntaxError("invalid token")
	synErrNoRule            = newSyntaxError("a grammar must have at least one rule")
	synErrNoRuleName        = newSyntaxError("a rule name is missing")
	synErrNoColon           = newSyntaxError("the colon must precede alternatives")
	synErrNoSemicolon       = newSyntaxError("the semicolon is missing at the last of an alternative")
	synErrNoType            = newSyntaxError("a type is missing")
	synErrNoMemberName      = newSyntaxError("a member needs a name")
	synErrNoMemberColon     = newSyntaxError("a member name must be followed by a colon")
	synErrNoMemberSemicolon = newSyntaxError("a member declaration must end with a semicolon")
	synErrNoBindingName     = newSyntaxError("a binding needs a name")
	synErrNoAssign          = newSyntaxError("a binding name must be followed by '='")
	synErrNoBoundComponent  = newSyntaxError("a binding must be followed by a component")
	synErrCodeNotLast       = newSyntaxError("a code block must be the last element of an alternative")
)
