package activity

import (
	"strings"
	"time"
)

// Verbs emitted for variable lifecycle events.
const (
	VerbDeclared    = "variable.declared"
	VerbPrepared    = "variable.prepared"
	VerbAssigned    = "variable.assigned"
	VerbObserved    = "variable.observed"
	VerbDerived     = "variable.derived"
	VerbConditioned = "variable.conditioned"
)

// Object types used by the variable packages.
const (
	ObjectTypeRandomBool    = "random_bool"
	ObjectTypeJointVariable = "joint.variable"
)

// VariableEventInput describes the common fields for variable lifecycle events.
type VariableEventInput struct {
	ActorID    string
	TenantID   string
	Channel    string
	ObjectType string
	ID         string
	Label      string
	SourceID   string
	Expr       string
	Prior      float64
	Outcome    *bool
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildDeclaredEvent describes a new variable entering a state.
func BuildDeclaredEvent(input VariableEventInput) Event {
	return buildVariableEvent(VerbDeclared, input)
}

// BuildPreparedEvent describes a variable receiving a fresh distribution.
func BuildPreparedEvent(input VariableEventInput) Event {
	return buildVariableEvent(VerbPrepared, input)
}

// BuildAssignedEvent describes a variable copying another variable's outcome.
func BuildAssignedEvent(input VariableEventInput) Event {
	return buildVariableEvent(VerbAssigned, input)
}

// BuildObservedEvent describes an observation that resolved a variable.
func BuildObservedEvent(input VariableEventInput) Event {
	return buildVariableEvent(VerbObserved, input)
}

// BuildDerivedEvent describes a variable defined from other variables.
func BuildDerivedEvent(input VariableEventInput) Event {
	return buildVariableEvent(VerbDerived, input)
}

// BuildConditionedEvent describes evidence applied to a variable.
func BuildConditionedEvent(input VariableEventInput) Event {
	return buildVariableEvent(VerbConditioned, input)
}

func buildVariableEvent(verb string, input VariableEventInput) Event {
	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["prior"] = input.Prior
	if label := strings.TrimSpace(input.Label); label != "" {
		metadata["label"] = label
	}
	if input.Outcome != nil {
		metadata["outcome"] = *input.Outcome
	}
	if sourceID := strings.TrimSpace(input.SourceID); sourceID != "" {
		metadata["source_id"] = sourceID
	}
	if expr := strings.TrimSpace(input.Expr); expr != "" {
		metadata["expr"] = expr
	}

	objectType := strings.TrimSpace(input.ObjectType)
	if objectType == "" {
		objectType = ObjectTypeRandomBool
	}

	objectID := strings.TrimSpace(input.ID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Label)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
