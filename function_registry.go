package vars

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable registered against evaluators.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("vars: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("vars: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("vars: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("vars: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("vars: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BooleanFunctions returns a registry with connectives the rule languages
// lack as operators: implies(a, b), xor(a, b), exactly_one(...) and
// at_least(k, ...). Registered names are matched case-insensitively.
func BooleanFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("implies", func(args ...any) (any, error) {
		values, err := boolArgs("implies", args, 2)
		if err != nil {
			return nil, err
		}
		return !values[0] || values[1], nil
	})
	_ = registry.Register("xor", func(args ...any) (any, error) {
		values, err := boolArgs("xor", args, 2)
		if err != nil {
			return nil, err
		}
		return values[0] != values[1], nil
	})
	_ = registry.Register("exactly_one", func(args ...any) (any, error) {
		values, err := boolArgs("exactly_one", args, -1)
		if err != nil {
			return nil, err
		}
		return countTrue(values) == 1, nil
	})
	_ = registry.Register("at_least", func(args ...any) (any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("vars: at_least expects a count")
		}
		k, ok := asInt(args[0])
		if !ok {
			return nil, fmt.Errorf("vars: at_least count must be an integer, got %T", args[0])
		}
		values, err := boolArgs("at_least", args[1:], -1)
		if err != nil {
			return nil, err
		}
		return countTrue(values) >= k, nil
	})
	return registry
}

func boolArgs(name string, args []any, want int) ([]bool, error) {
	if want >= 0 && len(args) != want {
		return nil, fmt.Errorf("vars: %s expects %d args, got %d", name, want, len(args))
	}
	values := make([]bool, len(args))
	for i, arg := range args {
		value, ok := arg.(bool)
		if !ok {
			return nil, fmt.Errorf("vars: %s arg %d must be bool, got %T", name, i, arg)
		}
		values[i] = value
	}
	return values, nil
}

func countTrue(values []bool) int {
	n := 0
	for _, value := range values {
		if value {
			n++
		}
	}
	return n
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
