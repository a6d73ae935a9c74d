package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	SemErrUnknownRule          = newSemanticError("unknown rule")
	SemErrMissingStartRule     = newSemanticError("start rule is missing")
	SemErrUninferableType      = newSemanticError("uninferable type")
	SemErrMissingReductionBody = newSemanticError("an alternative without a reduction body must have exactly one component")

	semErrDuplicateRule    = newSemanticError("duplicate rule")
	semErrDuplicateMember  = newSemanticError("duplicate member")
	semErrDuplicateBinding = newSemanticError("duplicate binding")
	semErrTypeMismatch     = newSemanticError("pass-through type mismatch")
	semErrEmptyWildcard    = newSemanticError("a wildcard needs at least one terminal in the grammar")
)
