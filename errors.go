package vars

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidProbability indicates a probability outside the closed unit
	// interval (or NaN).
	ErrInvalidProbability = errors.New("vars: probability must be within [0, 1]")
	// ErrDuplicationUnsupported indicates a value type that cannot produce an
	// independent copy of itself.
	ErrDuplicationUnsupported = errors.New("vars: value type cannot be duplicated")
	// ErrNonBooleanRule indicates a rule evaluated to something other than a bool.
	ErrNonBooleanRule = errors.New("vars: rule must evaluate to a boolean")
)

// ProbabilityError reports the offending value and the operation that
// received it.
type ProbabilityError struct {
	Op    string
	Value float64
}

func (e *ProbabilityError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v: %s got %v", ErrInvalidProbability, e.Op, e.Value)
}

func (e *ProbabilityError) Unwrap() error {
	return ErrInvalidProbability
}

// ValidateProbability returns a *ProbabilityError when p is not a valid
// probability. op names the caller for the error message.
func ValidateProbability(op string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return &ProbabilityError{Op: op, Value: p}
	}
	return nil
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine   string
	Expr     string
	Variable string
	Err      error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("vars: %s evaluator %s variable=%s: %v", e.Engine, describeExpression(e.Expr), describeVariable(e.Variable), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func describeVariable(name string) string {
	if name == "" {
		return "<none>"
	}
	return name
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "vars:") {
		return err
	}
	return fmt.Errorf("vars: %s evaluator: %w", engine, err)
}

// WrapEvaluationError attaches engine, expression and variable metadata to
// err, filling only the fields an existing *EvaluationError leaves empty.
func WrapEvaluationError(engine, expr, variable string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Variable == "" {
			evalErr.Variable = variable
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:   engine,
		Expr:     expr,
		Variable: variable,
		Err:      err,
	}
}
