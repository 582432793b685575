package joint

import (
	"context"

	vars "github.com/goliatone/go-variables"
	"github.com/goliatone/go-variables/pkg/activity"
)

func (s *System) logEvent(op, name, expr string, prior float64, outcome bool, err error) {
	s.cfg.logger.LogObservation(vars.ObservationLogEvent{
		Kind:      vars.KindJoint,
		Operation: op,
		ID:        s.cfg.id,
		Variable:  name,
		Expr:      expr,
		Prior:     prior,
		Outcome:   outcome,
		Err:       err,
	})
}

func (s *System) logFailure(op, name, expr string, err error) {
	prior := 0.0
	if bit, ok := s.index[name]; ok {
		prior = s.marginal(bit)
	}
	s.logEvent(op, name, expr, prior, false, err)
}

func (s *System) notify(event activity.Event) {
	if !s.cfg.emitter.Enabled() {
		return
	}
	if err := s.cfg.emitter.Emit(context.Background(), event); err != nil {
		s.logEvent(event.Verb, event.ObjectID, "", 0, false, err)
	}
}

func (s *System) eventInput(name, expr string, prior float64, outcome *bool) activity.VariableEventInput {
	return activity.VariableEventInput{
		ObjectType: activity.ObjectTypeJointVariable,
		ID:         s.cfg.id + "/" + name,
		Label:      name,
		SourceID:   s.cfg.id,
		Expr:       expr,
		Prior:      prior,
		Outcome:    outcome,
	}
}

func (s *System) buildDeclared(name string, prior float64) activity.Event {
	return activity.BuildDeclaredEvent(s.eventInput(name, "", prior, nil))
}

func (s *System) buildDerived(name, expr string, prior float64) activity.Event {
	return activity.BuildDerivedEvent(s.eventInput(name, expr, prior, nil))
}

func (s *System) buildObserved(name string, prior float64, outcome bool) activity.Event {
	return activity.BuildObservedEvent(s.eventInput(name, "", prior, &outcome))
}

func (s *System) buildConditioned(name string, prior float64, value bool) activity.Event {
	return activity.BuildConditionedEvent(s.eventInput(name, "", prior, &value))
}
