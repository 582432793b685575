package vars

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celMaxArity bounds the overloads generated for registry functions.
const celMaxArity = 4

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaultMaps()
	program, err := e.loadOrCompile(expression, ctx.worldNames(), celgo.DynType)
	if err != nil {
		return nil, err
	}
	return e.run(program, ctx, expression)
}

// Compile type checks expression eagerly when variables are declared;
// otherwise the program is built from the world seen on each evaluation.
func (e *celEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	cfg := applyCompileOptions(opts)
	rule := &celCompiledRule{
		evaluator:  e,
		expression: expression,
	}
	if len(cfg.variables) > 0 {
		program, err := e.loadOrCompile(expression, cfg.variables, celgo.BoolType)
		if err != nil {
			return nil, err
		}
		rule.program = program
	}
	return rule, nil
}

func (e *celEvaluator) loadOrCompile(expression string, variables []string, varType *celgo.Type) (*celProgram, error) {
	key := programCacheKey(expression, variables)
	if varType == celgo.BoolType {
		key = "bool:" + key
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(variables, varType)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, WrapEvaluationError("cel", expression, "", issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, WrapEvaluationError("cel", expression, "", issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, WrapEvaluationError("cel", expression, "", err)
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(key, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(variables []string, varType *celgo.Type) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	if e.registry != nil {
		opts = append(opts, e.registryFunctions()...)
	}
	for _, name := range variables {
		opts = append(opts, celgo.Variable(name, varType))
	}
	return celgo.NewEnv(opts...)
}

// registryFunctions exposes every registered function directly plus a
// generic call(name, ...) form, each with fixed arity dyn overloads.
func (e *celEvaluator) registryFunctions() []celgo.EnvOption {
	callOverloads := make([]celgo.FunctionOpt, 0, celMaxArity+1)
	for arity := 0; arity <= celMaxArity; arity++ {
		argTypes := append([]*celgo.Type{celgo.StringType}, dynTypes(arity)...)
		callOverloads = append(callOverloads, celgo.Overload(
			fmt.Sprintf("call_string_dyn_%d", arity),
			argTypes,
			celgo.DynType,
			celgo.FunctionBinding(e.callBinding()),
		))
	}
	opts := []celgo.EnvOption{celgo.Function("call", callOverloads...)}

	for _, name := range e.registry.Names() {
		overloads := make([]celgo.FunctionOpt, 0, celMaxArity)
		for arity := 1; arity <= celMaxArity; arity++ {
			overloads = append(overloads, celgo.Overload(
				fmt.Sprintf("%s_dyn_%d", name, arity),
				dynTypes(arity),
				celgo.DynType,
				celgo.FunctionBinding(e.namedBinding(name)),
			))
		}
		opts = append(opts, celgo.Function(name, overloads...))
	}
	return opts
}

func dynTypes(n int) []*celgo.Type {
	out := make([]*celgo.Type, n)
	for i := range out {
		out[i] = celgo.DynType
	}
	return out
}

func (e *celEvaluator) run(program *celProgram, ctx RuleContext, expression string) (any, error) {
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, WrapEvaluationError("cel", expression, ctx.Variable, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) activation(ctx RuleContext) map[string]any {
	activation := map[string]any{
		"args": ctx.Args,
	}
	for key, value := range ctx.World {
		activation[key] = value
	}
	return activation
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
	program    *celProgram
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled rule missing evaluator"))
	}
	ctx = ctx.withDefaultMaps()
	program := r.program
	if program == nil {
		var err error
		program, err = r.evaluator.loadOrCompile(r.expression, ctx.worldNames(), celgo.DynType)
		if err != nil {
			return nil, err
		}
	}
	return r.evaluator.run(program, ctx, r.expression)
}

func (e *celEvaluator) callBinding() func(values ...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if len(values) == 0 {
			return types.NewErr("vars: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("vars: call name must be string")
		}
		return e.invoke(name, values[1:])
	}
}

func (e *celEvaluator) namedBinding(name string) func(values ...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		return e.invoke(name, values)
	}
}

func (e *celEvaluator) invoke(name string, values []ref.Val) ref.Val {
	if e.registry == nil {
		return types.NewErr("vars: function registry not configured")
	}
	args := make([]any, 0, len(values))
	for _, val := range values {
		args = append(args, val.Value())
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}
