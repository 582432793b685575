package vars

import (
	"slices"
	"sort"
	"strings"
)

// RuleContext carries the inputs visible to a rule. World maps every variable
// name to its truth value in the assignment being evaluated; Args holds
// caller supplied values exposed as `args`. Variable names the variable a
// rule defines and is only used for error metadata.
type RuleContext struct {
	World    map[string]any
	Args     map[string]any
	Variable string
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.World == nil {
		ctx.World = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) worldNames() []string {
	names := make([]string, 0, len(ctx.World))
	for name := range ctx.World {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct {
	variables []string
}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// WithDeclaredVariables declares the boolean variables a rule may reference.
// Engines with a type checker reject references to anything else at compile
// time instead of failing per world.
func WithDeclaredVariables(names ...string) CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.variables = append(cfg.variables, names...)
	})
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	cfg := compileConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	if len(cfg.variables) > 0 {
		cfg.variables = slices.Clone(cfg.variables)
		sort.Strings(cfg.variables)
		cfg.variables = slices.Compact(cfg.variables)
	}
	return cfg
}

func programCacheKey(expression string, variables []string) string {
	if len(variables) == 0 {
		return expression
	}
	return expression + "\x00" + strings.Join(variables, ",")
}
