package activity

import (
	"context"
	"testing"
)

func TestBuildObservedEventIncludesOutcomeMetadata(t *testing.T) {
	meta := map[string]any{"custom": "value"}
	outcome := true
	input := VariableEventInput{
		ActorID:  " actor ",
		TenantID: " tenant ",
		ID:       " 4f0c ",
		Label:    " coin ",
		Prior:    0.5,
		Outcome:  &outcome,
		Metadata: meta,
		Channel:  "variables",
	}

	event := BuildObservedEvent(input)

	if event.Verb != VerbObserved {
		t.Fatalf("expected verb %s got %s", VerbObserved, event.Verb)
	}
	if event.ObjectType != ObjectTypeRandomBool || event.ObjectID != "4f0c" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" || event.TenantID != "tenant" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	if event.Metadata["prior"] != 0.5 || event.Metadata["outcome"] != true {
		t.Fatalf("expected prior/outcome metadata, got %+v", event.Metadata)
	}
	if event.Metadata["label"] != "coin" || event.Metadata["custom"] != "value" {
		t.Fatalf("expected label and custom metadata, got %+v", event.Metadata)
	}
	event.Metadata["custom"] = "changed"
	if meta["custom"] != "value" {
		t.Fatalf("expected input metadata untouched")
	}
}

func TestBuildAssignedEventRecordsSource(t *testing.T) {
	event := BuildAssignedEvent(VariableEventInput{ID: "dime", SourceID: "nickel", Prior: 0})
	if event.Verb != VerbAssigned {
		t.Fatalf("expected verb %s got %s", VerbAssigned, event.Verb)
	}
	if event.Metadata["source_id"] != "nickel" {
		t.Fatalf("expected source_id metadata, got %+v", event.Metadata)
	}
	if _, ok := event.Metadata["outcome"]; ok {
		t.Fatalf("expected no outcome without input outcome")
	}
}

func TestBuildDerivedEventFallsBackToLabelThenType(t *testing.T) {
	event := BuildDerivedEvent(VariableEventInput{
		ObjectType: ObjectTypeJointVariable,
		Label:      "both",
		Expr:       "a && b",
	})
	if event.ObjectID != "both" {
		t.Fatalf("expected label fallback, got %q", event.ObjectID)
	}
	if event.Metadata["expr"] != "a && b" {
		t.Fatalf("expected expr metadata, got %+v", event.Metadata)
	}

	event = BuildConditionedEvent(VariableEventInput{})
	if event.ObjectID != ObjectTypeRandomBool || event.ObjectType != ObjectTypeRandomBool {
		t.Fatalf("expected object type fallback, got %+v", event)
	}
}

func TestBuildVariableEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	for _, event := range []Event{
		BuildDeclaredEvent(VariableEventInput{ID: "x"}),
		BuildPreparedEvent(VariableEventInput{ID: "x", Prior: 0.3}),
		BuildObservedEvent(VariableEventInput{ID: "x"}),
	} {
		if err := hooks.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	got := capture.Verbs()
	want := []string{VerbDeclared, VerbPrepared, VerbObserved}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d verb = %s, want %s", i, got[i], want[i])
		}
	}
}
