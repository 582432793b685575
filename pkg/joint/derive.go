package joint

import (
	"fmt"
	"strings"

	vars "github.com/goliatone/go-variables"
)

// Derive adds a variable defined by a boolean rule over the existing
// variables. The rule is evaluated once per world with the configured
// evaluator; nothing is observed and the system gains a deterministic
// column.
func (s *System) Derive(name, expression string) error {
	if err := s.admit(name); err != nil {
		s.logFailure(vars.OpDerive, name, expression, err)
		return err
	}
	outcomes, err := s.evaluateWorlds(name, expression)
	if err != nil {
		s.logFailure(vars.OpDerive, name, expression, err)
		return err
	}
	s.addDerived(variable{name: name, expr: expression, inputs: s.Variables(), derived: true}, outcomes)
	return nil
}

// DeriveFunc adds a variable computed by fn from the listed inputs, in
// order.
func (s *System) DeriveFunc(name string, inputs []string, fn func([]bool) bool) error {
	return s.deriveFunc(name, inputs, "", fn)
}

// Not derives name as the negation of operand.
func (s *System) Not(name, operand string) error {
	return s.deriveFunc(name, []string{operand}, "!"+operand, func(v []bool) bool {
		return !v[0]
	})
}

// And derives name as left && right.
func (s *System) And(name, left, right string) error {
	return s.deriveFunc(name, []string{left, right}, left+" && "+right, func(v []bool) bool {
		return v[0] && v[1]
	})
}

// Or derives name as left || right.
func (s *System) Or(name, left, right string) error {
	return s.deriveFunc(name, []string{left, right}, left+" || "+right, func(v []bool) bool {
		return v[0] || v[1]
	})
}

// Xor derives name as left != right.
func (s *System) Xor(name, left, right string) error {
	return s.deriveFunc(name, []string{left, right}, left+" != "+right, func(v []bool) bool {
		return v[0] != v[1]
	})
}

func (s *System) deriveFunc(name string, inputs []string, label string, fn func([]bool) bool) error {
	if label == "" {
		label = "func(" + strings.Join(inputs, ", ") + ")"
	}
	if err := s.admit(name); err != nil {
		s.logFailure(vars.OpDerive, name, label, err)
		return err
	}
	if fn == nil {
		err := fmt.Errorf("joint: derive %q: function is nil", name)
		s.logFailure(vars.OpDerive, name, label, err)
		return err
	}
	bitsIn := make([]int, len(inputs))
	for i, input := range inputs {
		bit, err := s.lookup(input)
		if err != nil {
			s.logFailure(vars.OpDerive, name, label, err)
			return err
		}
		bitsIn[i] = bit
	}

	outcomes := make([]bool, len(s.weights))
	args := make([]bool, len(inputs))
	for mask, w := range s.weights {
		if w == 0 {
			continue
		}
		for i, bit := range bitsIn {
			args[i] = mask&(1<<bit) != 0
		}
		outcomes[mask] = fn(args)
	}
	s.addDerived(variable{name: name, expr: label, inputs: append([]string(nil), inputs...), derived: true}, outcomes)
	return nil
}

func (s *System) addDerived(v variable, outcomes []bool) {
	s.extend(v, func(mask int, w float64) (float64, float64) {
		if outcomes[mask] {
			return 0, w
		}
		return w, 0
	})
	p := s.marginal(s.index[v.name])
	s.record(Entry{Kind: EntryDerive, Variable: v.name, Expr: v.expr, Inputs: v.inputs, Probability: p})
	s.logEvent(vars.OpDerive, v.name, v.expr, p, false, nil)
	s.notify(s.buildDerived(v.name, v.expr, p))
}

// evaluateWorlds compiles expression against the declared variables and
// evaluates it in every world with non-zero weight.
func (s *System) evaluateWorlds(name, expression string) ([]bool, error) {
	engine := vars.EngineName(s.cfg.evaluator)
	rule, err := s.cfg.evaluator.Compile(expression, vars.WithDeclaredVariables(s.Variables()...))
	if err != nil {
		return nil, vars.WrapEvaluationError(engine, expression, name, err)
	}
	outcomes := make([]bool, len(s.weights))
	for mask, w := range s.weights {
		if w == 0 {
			continue
		}
		ctx := vars.RuleContext{World: s.world(mask), Variable: name}
		value, err := vars.RunBool(rule, engine, expression, ctx)
		if err != nil {
			return nil, err
		}
		outcomes[mask] = value
	}
	return outcomes, nil
}

// Query reports the probability that expression holds, without adding a
// variable or observing anything.
func (s *System) Query(expression string) (float64, error) {
	outcomes, err := s.evaluateWorlds("", expression)
	if err != nil {
		s.logFailure(vars.OpQuery, "", expression, err)
		return 0, err
	}
	var hit, total float64
	for mask, w := range s.weights {
		total += w
		if outcomes[mask] {
			hit += w
		}
	}
	p := 0.0
	if hit > 0 {
		p = min(hit/total, 1)
	}
	s.logEvent(vars.OpQuery, "", expression, p, false, nil)
	return p, nil
}
