package vars

import (
	"context"
	"log/slog"
)

// Kinds of variables reported in observation log events.
const (
	KindRandomBool = "random_bool"
	KindJoint      = "joint"
)

// Operations reported in observation log events.
const (
	OpObserve   = "observe"
	OpAssign    = "assign"
	OpPrepare   = "prepare"
	OpDeclare   = "declare"
	OpDerive    = "derive"
	OpCondition = "condition"
	OpQuery     = "query"
)

// ObservationLogEvent describes one state transition of a random variable.
// Prior is the probability of true immediately before the operation.
type ObservationLogEvent struct {
	Kind      string
	Operation string
	ID        string
	Variable  string
	Expr      string
	Prior     float64
	Outcome   bool
	Err       error
}

// ObservationLogger records observation events.
type ObservationLogger interface {
	LogObservation(ObservationLogEvent)
}

// ObservationLoggerFunc adapts a function to ObservationLogger.
type ObservationLoggerFunc func(ObservationLogEvent)

// LogObservation implements ObservationLogger.
func (f ObservationLoggerFunc) LogObservation(event ObservationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopObservationLogger struct{}

func (noopObservationLogger) LogObservation(ObservationLogEvent) {}

// WithObservationLogger attaches an observation logger.
func WithObservationLogger(logger ObservationLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopObservationLogger{}
			return
		}
		cfg.logger = logger
	}
}

// SlogObservationLogger emits observation events to a slog.Logger. The
// operation becomes the message; failed operations are logged at warn level.
type SlogObservationLogger struct {
	logger *slog.Logger
}

// NewSlogObservationLogger creates a logger that writes to logger, falling
// back to slog.Default when nil.
func NewSlogObservationLogger(logger *slog.Logger) *SlogObservationLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObservationLogger{logger: logger}
}

// LogObservation implements ObservationLogger.
func (l *SlogObservationLogger) LogObservation(event ObservationLogEvent) {
	attrs := []slog.Attr{
		slog.String("kind", event.Kind),
		slog.String("id", event.ID),
		slog.Float64("prior", event.Prior),
		slog.Bool("outcome", event.Outcome),
	}
	if event.Variable != "" {
		attrs = append(attrs, slog.String("variable", event.Variable))
	}
	if event.Expr != "" {
		attrs = append(attrs, slog.String("expr", event.Expr))
	}
	level := slog.LevelDebug
	if event.Err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, event.Operation, attrs...)
}
