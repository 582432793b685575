package joint

import (
	"fmt"

	vars "github.com/goliatone/go-variables"
)

// Observe samples name from the joint, which already reflects every earlier
// observation, then conditions the system on the outcome. Observing a
// derived variable constrains its inputs. Exactly one sample is drawn.
func (s *System) Observe(name string) (bool, error) {
	bit, err := s.lookup(name)
	if err != nil {
		s.logFailure(vars.OpObserve, name, "", err)
		return false, err
	}
	prior := s.marginal(bit)
	outcome := s.cfg.source.Float64() < prior
	s.restrict(bit, outcome)

	s.record(Entry{Kind: EntryObserve, Variable: name, Probability: prior, Outcome: &outcome})
	s.logEvent(vars.OpObserve, name, "", prior, outcome, nil)
	s.notify(s.buildObserved(name, prior, outcome))
	return outcome, nil
}

// Condition applies evidence that name equals value without sampling. It
// fails with ErrImpossibleEvidence, leaving the system unchanged, when the
// evidence has probability zero.
func (s *System) Condition(name string, value bool) error {
	bit, err := s.lookup(name)
	if err != nil {
		s.logFailure(vars.OpCondition, name, "", err)
		return err
	}
	prior := s.marginal(bit)
	if (value && prior == 0) || (!value && prior == 1) {
		err := fmt.Errorf("%w: %s=%t", ErrImpossibleEvidence, name, value)
		s.logFailure(vars.OpCondition, name, "", err)
		return err
	}
	s.restrict(bit, value)

	s.record(Entry{Kind: EntryCondition, Variable: name, Probability: prior, Outcome: &value})
	s.logEvent(vars.OpCondition, name, "", prior, value, nil)
	s.notify(s.buildConditioned(name, prior, value))
	return nil
}

// restrict zeroes every world where bit disagrees with value and
// renormalizes the rest. The caller guarantees the kept mass is positive.
func (s *System) restrict(bit int, value bool) {
	var kept float64
	for mask, w := range s.weights {
		if (mask&(1<<bit) != 0) != value {
			s.weights[mask] = 0
			continue
		}
		kept += w
	}
	for mask, w := range s.weights {
		if w != 0 {
			s.weights[mask] = w / kept
		}
	}
}
