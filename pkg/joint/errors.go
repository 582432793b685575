package joint

import "errors"

var (
	// ErrUnknownVariable indicates a reference to an undeclared variable.
	ErrUnknownVariable = errors.New("joint: unknown variable")
	// ErrDuplicateVariable indicates a name that is already declared.
	ErrDuplicateVariable = errors.New("joint: variable already declared")
	// ErrInvalidName indicates a name that is not a plain identifier or is
	// reserved by the rule languages.
	ErrInvalidName = errors.New("joint: invalid variable name")
	// ErrTooManyVariables indicates the configured capacity is exhausted.
	ErrTooManyVariables = errors.New("joint: too many variables")
	// ErrImpossibleEvidence indicates evidence with zero probability.
	ErrImpossibleEvidence = errors.New("joint: evidence has probability zero")
)
