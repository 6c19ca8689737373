package workflow_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/workflow"
)

func TestApprovalDefinitionIsValid(t *testing.T) {
	def := workflow.ApprovalDefinition()
	if err := def.Validate(); err != nil {
		t.Fatalf("approval definition invalid: %v", err)
	}
	if def.InitialState != domain.ApprovalDraft {
		t.Fatalf("expected draft initial state, got %s", def.InitialState)
	}
	if len(def.Transitions) != 7 {
		t.Fatalf("expected 7 approval edges, got %d", len(def.Transitions))
	}
	for _, name := range domain.ApprovalVocabulary() {
		found := false
		for _, state := range def.States {
			if state.Name == name {
				found = true
			}
		}
		if !found {
			t.Fatalf("approval state %q missing from definition", name)
		}
	}
}

func TestDefinitionValidateErrors(t *testing.T) {
	base := func() workflow.Definition {
		return workflow.Definition{
			Domain:       domain.DomainApproval,
			InitialState: "a",
			States:       []workflow.StateDefinition{{Name: "a"}, {Name: "b"}},
			Transitions:  []workflow.Transition{{Name: "go", From: "a", To: "b"}},
		}
	}

	cases := []struct {
		name   string
		mutate func(*workflow.Definition)
		want   error
	}{
		{"no states", func(d *workflow.Definition) { d.States = nil }, workflow.ErrDefinitionStatesRequired},
		{"blank state", func(d *workflow.Definition) { d.States[1].Name = " " }, workflow.ErrStateNameRequired},
		{"duplicate state", func(d *workflow.Definition) { d.States[1].Name = "a" }, workflow.ErrDuplicateState},
		{"unknown initial", func(d *workflow.Definition) { d.InitialState = "z" }, workflow.ErrInitialStateInvalid},
		{"unnamed transition", func(d *workflow.Definition) { d.Transitions[0].Name = "" }, workflow.ErrTransitionNameRequired},
		{"unknown target", func(d *workflow.Definition) { d.Transitions[0].To = "z" }, workflow.ErrTransitionStateUnknown},
		{"duplicate edge", func(d *workflow.Definition) {
			d.Transitions = append(d.Transitions, workflow.Transition{Name: "again", From: "a", To: "b"})
		}, workflow.ErrDuplicateTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := base()
			tc.mutate(&def)
			if err := def.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
