// Package joint models correlated boolean variables as a single probability
// distribution over every truth assignment ("world") of the declared
// variables.
//
// Unlike vars.RandomBool, which only stores a marginal, a System keeps the
// full joint. Observing one variable conditions the whole distribution, so
// correlated variables update their marginals without collapsing, and
// observing a derived variable propagates back into its inputs:
//
//	sys := joint.New(joint.WithSource(vars.NewSeededSource(1)))
//	_ = sys.Declare("rain", 0.3)
//	_ = sys.Declare("sprinkler", 0.4)
//	_ = sys.Derive("wet", "rain || sprinkler")
//	_ = sys.Condition("wet", true)
//	p, _ := sys.Probability("rain") // ~0.52
//
// Derived variables are defined by boolean rules evaluated with a
// vars.Evaluator (expr by default, CEL or JavaScript when configured) or by
// Go functions via DeriveFunc.
//
// The state grows as 2^n, so the number of variables is capped
// (DefaultMaxVariables, adjustable up to HardMaxVariables).
package joint
