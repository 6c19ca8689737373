package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-lifecycle/internal/domain"
)

var (
	// ErrDefinitionStatesRequired indicates the workflow definition does not declare any states.
	ErrDefinitionStatesRequired = errors.New("workflow: definition requires at least one state")
	// ErrStateNameRequired indicates a workflow state is missing its name.
	ErrStateNameRequired = errors.New("workflow: state name required")
	// ErrDuplicateState indicates duplicate workflow state names were declared.
	ErrDuplicateState = errors.New("workflow: duplicate state")
	// ErrTransitionNameRequired indicates a transition lacks a name.
	ErrTransitionNameRequired = errors.New("workflow: transition name required")
	// ErrTransitionStateUnknown indicates a transition references a state that was not declared.
	ErrTransitionStateUnknown = errors.New("workflow: transition references unknown state")
	// ErrDuplicateTransition indicates the same edge is declared twice.
	ErrDuplicateTransition = errors.New("workflow: duplicate transition")
	// ErrInitialStateInvalid indicates the supplied initial state is unknown.
	ErrInitialStateInvalid = errors.New("workflow: invalid initial state")
)

// StateDefinition describes one state of a workflow.
type StateDefinition struct {
	Name        domain.StatusName
	Description string
	Terminal    bool
}

// Transition is a directed edge between two states. Guard is an expression
// evaluated against GuardEnv; an empty guard always passes.
type Transition struct {
	Name        string
	From        domain.StatusName
	To          domain.StatusName
	Guard       string
	Description string
}

// Definition is a closed state machine for a single status domain.
type Definition struct {
	Domain       domain.StatusDomain
	InitialState domain.StatusName
	States       []StateDefinition
	Transitions  []Transition
}

// Validate checks state and transition integrity.
func (d Definition) Validate() error {
	if len(d.States) == 0 {
		return fmt.Errorf("%w: %s", ErrDefinitionStatesRequired, d.Domain)
	}

	states := make(map[domain.StatusName]struct{}, len(d.States))
	for idx, state := range d.States {
		name := domain.NormalizeStatusName(string(state.Name))
		if name == "" {
			return fmt.Errorf("%w at index %d", ErrStateNameRequired, idx)
		}
		if _, exists := states[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateState, name)
		}
		states[name] = struct{}{}
	}

	if _, ok := states[d.InitialState]; !ok {
		return fmt.Errorf("%w: %s", ErrInitialStateInvalid, d.InitialState)
	}

	seen := make(map[string]struct{}, len(d.Transitions))
	for idx, transition := range d.Transitions {
		if strings.TrimSpace(transition.Name) == "" {
			return fmt.Errorf("%w at index %d", ErrTransitionNameRequired, idx)
		}
		if _, ok := states[transition.From]; !ok {
			return fmt.Errorf("%w: %s", ErrTransitionStateUnknown, transition.From)
		}
		if _, ok := states[transition.To]; !ok {
			return fmt.Errorf("%w: %s", ErrTransitionStateUnknown, transition.To)
		}
		key := edgeKey(transition.From, transition.To)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("%w: %s -> %s", ErrDuplicateTransition, transition.From, transition.To)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ApprovalDefinition returns the fixed approval edge table. Guards refer to
// the actor capabilities exposed by GuardEnv.
func ApprovalDefinition() Definition {
	return Definition{
		Domain:       domain.DomainApproval,
		InitialState: domain.ApprovalDraft,
		States: []StateDefinition{
			{Name: domain.ApprovalDraft, Description: "Being prepared by its owner"},
			{Name: domain.ApprovalSubmitted, Description: "Waiting for an approver"},
			{Name: domain.ApprovalApproved, Description: "Accepted by an approver"},
			{Name: domain.ApprovalRejected, Description: "Sent back by an approver"},
			{Name: domain.ApprovalClosed, Description: "Finished"},
			{Name: domain.ApprovalReopened, Description: "Reopened after closing"},
		},
		Transitions: []Transition{
			{Name: "submit", From: domain.ApprovalDraft, To: domain.ApprovalSubmitted, Guard: "owner"},
			{Name: "approve", From: domain.ApprovalSubmitted, To: domain.ApprovalApproved, Guard: "approver"},
			{Name: "reject", From: domain.ApprovalSubmitted, To: domain.ApprovalRejected, Guard: "approver"},
			{Name: "close", From: domain.ApprovalApproved, To: domain.ApprovalClosed, Guard: "approver || owner"},
			{Name: "revise", From: domain.ApprovalRejected, To: domain.ApprovalDraft, Guard: "owner"},
			{Name: "reopen", From: domain.ApprovalClosed, To: domain.ApprovalReopened, Guard: "approver"},
			{Name: "resubmit", From: domain.ApprovalReopened, To: domain.ApprovalSubmitted, Guard: "owner"},
		},
	}
}

func edgeKey(from, to domain.StatusName) string {
	return string(from) + "::" + string(to)
}
