package vars

import (
	"fmt"

	"github.com/goliatone/go-variables/pkg/activity"
)

// RandomBool is a boolean whose outcome does not exist until it is observed.
//
// It stores only the marginal probability of true, so it cannot express any
// correlation with other variables. Observation is destructive: Get draws an
// outcome and collapses the distribution onto it, after which every further
// Get returns the same value until the variable is reassigned.
//
// A RandomBool is not safe for concurrent use.
type RandomBool struct {
	probTrue float64
	cfg      config
}

// NewRandomBool allocates an unobserved variable that is true with
// probability probTrue. It fails with ErrInvalidProbability when probTrue is
// outside [0, 1].
func NewRandomBool(probTrue float64, opts ...Option) (*RandomBool, error) {
	if err := ValidateProbability("new random bool", probTrue); err != nil {
		return nil, err
	}
	b := &RandomBool{probTrue: probTrue, cfg: applyOptions(opts)}
	b.notify(activity.BuildDeclaredEvent(b.eventInput(probTrue, nil)))
	return b, nil
}

// Certain allocates a variable that is already resolved to outcome.
func Certain(outcome bool, opts ...Option) *RandomBool {
	b := &RandomBool{probTrue: probabilityOf(outcome), cfg: applyOptions(opts)}
	b.notify(activity.BuildDeclaredEvent(b.eventInput(b.probTrue, nil)))
	return b
}

// Get observes the variable. It consumes one sample u from the source,
// resolves the outcome as u < p, collapses the distribution onto that outcome
// and returns it.
func (b *RandomBool) Get() bool {
	prior := b.probTrue
	result := b.cfg.source.Float64() < prior
	b.probTrue = probabilityOf(result)

	b.cfg.logger.LogObservation(ObservationLogEvent{
		Kind:      KindRandomBool,
		Operation: OpObserve,
		ID:        b.cfg.id,
		Variable:  b.cfg.label,
		Prior:     prior,
		Outcome:   result,
	})
	b.notify(activity.BuildObservedEvent(b.eventInput(prior, &result)))
	return result
}

// Set forces an observation of other and stores the realized outcome. Both
// variables agree on every later observation.
func (b *RandomBool) Set(other *RandomBool) {
	outcome := other.Get()
	prior := b.probTrue
	b.probTrue = probabilityOf(outcome)

	b.cfg.logger.LogObservation(ObservationLogEvent{
		Kind:      KindRandomBool,
		Operation: OpAssign,
		ID:        b.cfg.id,
		Variable:  b.cfg.label,
		Prior:     prior,
		Outcome:   outcome,
	})
	input := b.eventInput(prior, &outcome)
	input.SourceID = other.cfg.id
	b.notify(activity.BuildAssignedEvent(input))
}

// SetProbability discards the current distribution and prepares a fresh,
// unobserved one.
func (b *RandomBool) SetProbability(probTrue float64) error {
	if err := ValidateProbability("set probability", probTrue); err != nil {
		b.cfg.logger.LogObservation(ObservationLogEvent{
			Kind:      KindRandomBool,
			Operation: OpPrepare,
			ID:        b.cfg.id,
			Variable:  b.cfg.label,
			Prior:     b.probTrue,
			Err:       err,
		})
		return err
	}
	prior := b.probTrue
	b.probTrue = probTrue

	b.cfg.logger.LogObservation(ObservationLogEvent{
		Kind:      KindRandomBool,
		Operation: OpPrepare,
		ID:        b.cfg.id,
		Variable:  b.cfg.label,
		Prior:     prior,
	})
	b.notify(activity.BuildPreparedEvent(b.eventInput(probTrue, nil)))
	return nil
}

// Probability reports the current probability of true without observing.
func (b *RandomBool) Probability() float64 {
	return b.probTrue
}

// Observed reports whether the outcome is already certain.
func (b *RandomBool) Observed() bool {
	return b.probTrue == 0 || b.probTrue == 1
}

// ID returns the variable identifier.
func (b *RandomBool) ID() string {
	return b.cfg.id
}

// Label returns the optional human-friendly label.
func (b *RandomBool) Label() string {
	return b.cfg.label
}

func (b *RandomBool) String() string {
	if b.cfg.label != "" {
		return fmt.Sprintf("%s(p=%g)", b.cfg.label, b.probTrue)
	}
	return fmt.Sprintf("RandomBool(p=%g)", b.probTrue)
}

func (b *RandomBool) eventInput(prior float64, outcome *bool) activity.VariableEventInput {
	return activity.VariableEventInput{
		ObjectType: activity.ObjectTypeRandomBool,
		ID:         b.cfg.id,
		Label:      b.cfg.label,
		Prior:      prior,
		Outcome:    outcome,
	}
}

func probabilityOf(outcome bool) float64 {
	if outcome {
		return 1
	}
	return 0
}
