package vars

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoEvaluator = errors.New("vars: evaluator not configured")

// Evaluator engine names.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// NewEvaluator builds the evaluator registered under engine, sharing cache
// and registry when given. JS requires the js_eval build tag.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	var evaluator Evaluator
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		evaluator = NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
	case EngineCEL:
		evaluator = NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
	case EngineJS:
		evaluator = NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, engine)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: engine %q not compiled in", ErrNoEvaluator, engine)
	}
	return evaluator, nil
}

// EvaluateBool runs expr once and requires a boolean result.
func EvaluateBool(evaluator Evaluator, ctx RuleContext, expr string) (bool, error) {
	if evaluator == nil {
		return false, ErrNoEvaluator
	}
	if expr == "" {
		return false, fmt.Errorf("expression must not be empty")
	}
	engine := EngineName(evaluator)
	value, err := evaluator.Evaluate(ctx, expr)
	if err != nil {
		return false, WrapEvaluationError(engine, expr, ctx.Variable, err)
	}
	return asBool(engine, expr, ctx.Variable, value)
}

// RunBool evaluates a compiled rule and requires a boolean result. expr is
// only used for error metadata.
func RunBool(rule CompiledRule, engine, expr string, ctx RuleContext) (bool, error) {
	if rule == nil {
		return false, ErrNoEvaluator
	}
	value, err := rule.Evaluate(ctx)
	if err != nil {
		return false, WrapEvaluationError(engine, expr, ctx.Variable, err)
	}
	return asBool(engine, expr, ctx.Variable, value)
}

func asBool(engine, expr, variable string, value any) (bool, error) {
	result, ok := value.(bool)
	if !ok {
		return false, WrapEvaluationError(engine, expr, variable,
			fmt.Errorf("%w: got %T", ErrNonBooleanRule, value))
	}
	return result, nil
}

// EngineName reports the engine behind e: expr, cel, js or custom.
func EngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*vars.exprEvaluator":
		return EngineExpr
	case "*vars.celEvaluator":
		return EngineCEL
	case "*vars.jsEvaluator":
		return EngineJS
	default:
		return "custom"
	}
}
