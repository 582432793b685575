package joint

import (
	vars "github.com/goliatone/go-variables"
	"github.com/goliatone/go-variables/pkg/activity"
	"github.com/google/uuid"
)

const (
	// DefaultMaxVariables is the capacity of a System unless configured.
	DefaultMaxVariables = 16
	// HardMaxVariables bounds WithMaxVariables; 2^24 weights is ~128MiB.
	HardMaxVariables = 24
)

// Option configures a System.
type Option func(*config)

type config struct {
	id           string
	source       vars.Source
	evaluator    vars.Evaluator
	logger       vars.ObservationLogger
	emitter      *activity.Emitter
	maxVariables int
}

func applyOptions(opts []Option) config {
	cfg := config{maxVariables: DefaultMaxVariables}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	if cfg.source == nil {
		cfg.source = vars.DefaultSource()
	}
	if cfg.evaluator == nil {
		cfg.evaluator = DefaultEvaluator()
	}
	if cfg.logger == nil {
		cfg.logger = vars.ObservationLoggerFunc(nil)
	}
	return cfg
}

// DefaultEvaluator returns an expr evaluator with a program cache and the
// vars.BooleanFunctions helpers.
func DefaultEvaluator() vars.Evaluator {
	return vars.NewExprEvaluator(
		vars.ExprWithProgramCache(vars.NewMemoryProgramCache()),
		vars.ExprWithFunctionRegistry(vars.BooleanFunctions()),
	)
}

// WithID sets the system identifier used in logs and activity events.
func WithID(id string) Option {
	return func(cfg *config) {
		cfg.id = id
	}
}

// WithSource sets the sampling source consumed by Observe.
func WithSource(source vars.Source) Option {
	return func(cfg *config) {
		if source != nil {
			cfg.source = source
		}
	}
}

// WithSeed is shorthand for WithSource(vars.NewSeededSource(seed)).
func WithSeed(seed uint64) Option {
	return WithSource(vars.NewSeededSource(seed))
}

// WithEvaluator sets the rule evaluator used by Derive and Query.
func WithEvaluator(evaluator vars.Evaluator) Option {
	return func(cfg *config) {
		if evaluator != nil {
			cfg.evaluator = evaluator
		}
	}
}

// WithObservationLogger attaches an observation logger.
func WithObservationLogger(logger vars.ObservationLogger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithActivityHooks attaches hooks notified on declarations, derivations,
// observations and conditioning. Events without a channel are sent on
// activity.DefaultChannel.
func WithActivityHooks(hooks activity.Hooks) Option {
	return func(cfg *config) {
		cfg.emitter = activity.NewEmitter(hooks, activity.Config{Enabled: true})
	}
}

// WithMaxVariables sets the capacity, clamped to [1, HardMaxVariables].
func WithMaxVariables(n int) Option {
	return func(cfg *config) {
		switch {
		case n < 1:
			cfg.maxVariables = 1
		case n > HardMaxVariables:
			cfg.maxVariables = HardMaxVariables
		default:
			cfg.maxVariables = n
		}
	}
}
