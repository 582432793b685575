package joint

import (
	"fmt"
	"regexp"
	"slices"

	vars "github.com/goliatone/go-variables"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Identifiers the rule engines treat specially. A variable named after one
// of them declares fine but breaks every later Derive or Query, so admit
// rejects them up front.
var reservedNames = reserve(
	// bindings and helpers
	"args", "call", "implies", "xor", "exactly_one", "at_least",
	// expr
	"true", "false", "nil", "and", "or", "not", "in", "matches", "contains",
	"startsWith", "endsWith", "let", "len", "all", "none", "one", "filter", "count",
	// cel
	"null", "int", "uint", "double", "bool", "string", "bytes", "list", "map",
	"type", "null_type", "dyn", "has", "timestamp", "duration", "as", "break",
	"const", "continue", "else", "for", "function", "if", "import", "loop",
	"package", "namespace", "return", "var", "void", "while",
	// javascript
	"await", "case", "catch", "class", "debugger", "default", "delete", "do",
	"enum", "export", "extends", "finally", "implements", "instanceof",
	"interface", "new", "private", "protected", "public", "static", "super",
	"switch", "this", "throw", "try", "typeof", "with", "yield", "undefined",
	"NaN", "Infinity", "arguments", "eval",
)

func reserve(names ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, name := range names {
		out[name] = struct{}{}
	}
	return out
}

type variable struct {
	name    string
	prior   float64
	expr    string
	inputs  []string
	derived bool
}

// System is a joint distribution over named boolean variables.
//
// Weights are indexed by bitmask: bit i of a world's index is the value of
// the i-th declared variable. Weights are non-negative and sum to one.
//
// A System is not safe for concurrent use.
type System struct {
	vars    []variable
	index   map[string]int
	weights []float64
	history History
	cfg     config
}

// World is one truth assignment with non-zero probability.
type World struct {
	Mask        uint64          `json:"mask"`
	Values      map[string]bool `json:"values"`
	Probability float64         `json:"probability"`
}

// New returns an empty system: a single world with probability one.
func New(opts ...Option) *System {
	cfg := applyOptions(opts)
	return &System{
		index:   make(map[string]int),
		weights: []float64{1},
		history: History{SystemID: cfg.id},
		cfg:     cfg,
	}
}

// ID returns the system identifier.
func (s *System) ID() string {
	return s.cfg.id
}

// Declare adds an independent variable that is true with probability
// probTrue.
func (s *System) Declare(name string, probTrue float64) error {
	if err := s.admit(name); err != nil {
		s.logFailure(vars.OpDeclare, name, "", err)
		return err
	}
	if err := vars.ValidateProbability("declare "+name, probTrue); err != nil {
		s.logFailure(vars.OpDeclare, name, "", err)
		return err
	}

	s.extend(variable{name: name, prior: probTrue}, func(_ int, w float64) (float64, float64) {
		return w * (1 - probTrue), w * probTrue
	})

	s.record(Entry{Kind: EntryDeclare, Variable: name, Probability: probTrue})
	s.logEvent(vars.OpDeclare, name, "", probTrue, false, nil)
	s.notify(s.buildDeclared(name, probTrue))
	return nil
}

// admit checks that name can be appended.
func (s *System) admit(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, reserved := reservedNames[name]; reserved {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	if _, exists := s.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateVariable, name)
	}
	if len(s.vars) >= s.cfg.maxVariables {
		return fmt.Errorf("%w: limit is %d", ErrTooManyVariables, s.cfg.maxVariables)
	}
	return nil
}

// extend appends v as the next bit, splitting every world's weight between
// its false and true continuation.
func (s *System) extend(v variable, split func(mask int, w float64) (float64, float64)) {
	bit := len(s.vars)
	next := make([]float64, len(s.weights)*2)
	for mask, w := range s.weights {
		if w == 0 {
			continue
		}
		wFalse, wTrue := split(mask, w)
		next[mask] = wFalse
		next[mask|1<<bit] = wTrue
	}
	s.weights = next
	s.vars = append(s.vars, v)
	s.index[v.name] = bit
}

func (s *System) lookup(name string) (int, error) {
	bit, ok := s.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return bit, nil
}

// masses returns the total weight of worlds where bit is false and true.
func (s *System) masses(bit int) (float64, float64) {
	var wFalse, wTrue float64
	for mask, w := range s.weights {
		if mask&(1<<bit) != 0 {
			wTrue += w
		} else {
			wFalse += w
		}
	}
	return wFalse, wTrue
}

// marginal is exact at the boundaries: a variable with no mass on one side
// reports exactly 0 or 1.
func (s *System) marginal(bit int) float64 {
	wFalse, wTrue := s.masses(bit)
	switch {
	case wTrue == 0:
		return 0
	case wFalse == 0:
		return 1
	default:
		return wTrue / (wFalse + wTrue)
	}
}

// Probability reports the marginal probability that name is true without
// observing it.
func (s *System) Probability(name string) (float64, error) {
	bit, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	return s.marginal(bit), nil
}

// Marginal projects name onto an independent vars.RandomBool. Correlation
// with the rest of the system is dropped. The system's source and the
// variable name are used unless opts override them.
func (s *System) Marginal(name string, opts ...vars.Option) (*vars.RandomBool, error) {
	p, err := s.Probability(name)
	if err != nil {
		return nil, err
	}
	base := []vars.Option{vars.WithSource(s.cfg.source), vars.WithLabel(name)}
	return vars.NewRandomBool(p, append(base, opts...)...)
}

// Variables returns the variable names in declaration order.
func (s *System) Variables() []string {
	names := make([]string, len(s.vars))
	for i, v := range s.vars {
		names[i] = v.name
	}
	return names
}

// Len returns the number of variables.
func (s *System) Len() int {
	return len(s.vars)
}

// Worlds returns every world with non-zero probability ordered by mask.
func (s *System) Worlds() []World {
	out := make([]World, 0, len(s.weights))
	for mask, w := range s.weights {
		if w == 0 {
			continue
		}
		out = append(out, World{
			Mask:        uint64(mask),
			Values:      s.assignment(mask),
			Probability: w,
		})
	}
	return out
}

// Support returns the number of worlds with non-zero probability.
func (s *System) Support() int {
	n := 0
	for _, w := range s.weights {
		if w != 0 {
			n++
		}
	}
	return n
}

func (s *System) assignment(mask int) map[string]bool {
	values := make(map[string]bool, len(s.vars))
	for bit, v := range s.vars {
		values[v.name] = mask&(1<<bit) != 0
	}
	return values
}

func (s *System) world(mask int) map[string]any {
	values := make(map[string]any, len(s.vars))
	for bit, v := range s.vars {
		values[v.name] = mask&(1<<bit) != 0
	}
	return values
}

// Clone returns an independent copy sharing only the configuration (source,
// evaluator, logger and hooks).
func (s *System) Clone() *System {
	clone := &System{
		vars:    make([]variable, len(s.vars)),
		index:   make(map[string]int, len(s.index)),
		weights: slices.Clone(s.weights),
		history: s.history.clone(),
		cfg:     s.cfg,
	}
	for i, v := range s.vars {
		v.inputs = slices.Clone(v.inputs)
		clone.vars[i] = v
	}
	for name, bit := range s.index {
		clone.index[name] = bit
	}
	return clone
}

func (s *System) String() string {
	return fmt.Sprintf("joint.System(%d variables, %d/%d worlds)", len(s.vars), s.Support(), len(s.weights))
}
