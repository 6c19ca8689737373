package workflow_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-lifecycle/internal/domain"
	"github.com/goliatone/go-lifecycle/internal/workflow"
	"github.com/google/uuid"
)

func actor(role domain.Role, owner, approver bool) domain.Actor {
	return domain.Actor{
		ID:            uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Role:          role,
		Authenticated: true,
		Owner:         owner,
		Approver:      approver,
	}
}

func TestEngineLookup(t *testing.T) {
	engine := workflow.MustNewEngine(workflow.ApprovalDefinition())

	transition, err := engine.Lookup(domain.ApprovalSubmitted, domain.ApprovalApproved)
	if err != nil {
		t.Fatalf("lookup submitted->approved: %v", err)
	}
	if transition.Name != "approve" || transition.Guard != "approver" {
		t.Fatalf("unexpected transition %+v", transition)
	}

	if _, err := engine.Lookup(domain.ApprovalDraft, domain.ApprovalApproved); !errors.Is(err, workflow.ErrIllegalEdge) {
		t.Fatalf("expected ErrIllegalEdge, got %v", err)
	}
	if _, err := engine.Lookup(domain.ApprovalClosed, domain.ApprovalDraft); !errors.Is(err, workflow.ErrIllegalEdge) {
		t.Fatalf("expected ErrIllegalEdge for closed->draft, got %v", err)
	}
}

func TestEngineTransitionsFrom(t *testing.T) {
	engine := workflow.MustNewEngine(workflow.ApprovalDefinition())
	edges := engine.TransitionsFrom(domain.ApprovalSubmitted)
	if len(edges) != 2 {
		t.Fatalf("expected two edges out of submitted, got %d", len(edges))
	}
	if edges[0].To != domain.ApprovalApproved || edges[1].To != domain.ApprovalRejected {
		t.Fatalf("unexpected edge order %+v", edges)
	}
	if len(engine.TransitionsFrom("unknown")) != 0 {
		t.Fatalf("expected no edges from unknown state")
	}
}

func TestEngineGuards(t *testing.T) {
	engine := workflow.MustNewEngine(workflow.ApprovalDefinition())

	cases := []struct {
		name  string
		from  domain.StatusName
		to    domain.StatusName
		actor domain.Actor
		want  bool
	}{
		{"owner submits", domain.ApprovalDraft, domain.ApprovalSubmitted, actor(domain.RoleMember, true, false), true},
		{"stranger cannot submit", domain.ApprovalDraft, domain.ApprovalSubmitted, actor(domain.RoleMember, false, false), false},
		{"designated approver approves", domain.ApprovalSubmitted, domain.ApprovalApproved, actor(domain.RoleMember, false, true), true},
		{"approver role approves", domain.ApprovalSubmitted, domain.ApprovalApproved, actor(domain.RoleApprover, false, false), true},
		{"admin approves", domain.ApprovalSubmitted, domain.ApprovalApproved, actor(domain.RoleAdmin, false, false), true},
		{"owner cannot approve", domain.ApprovalSubmitted, domain.ApprovalApproved, actor(domain.RoleMember, true, false), false},
		{"owner closes", domain.ApprovalApproved, domain.ApprovalClosed, actor(domain.RoleMember, true, false), true},
		{"approver closes", domain.ApprovalApproved, domain.ApprovalClosed, actor(domain.RoleApprover, false, false), true},
		{"member cannot close", domain.ApprovalApproved, domain.ApprovalClosed, actor(domain.RoleMember, false, false), false},
		{"owner cannot reopen", domain.ApprovalClosed, domain.ApprovalReopened, actor(domain.RoleMember, true, false), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			transition, err := engine.Lookup(tc.from, tc.to)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			allowed, err := engine.Allowed(transition, tc.actor)
			if err != nil {
				t.Fatalf("evaluate guard: %v", err)
			}
			if allowed != tc.want {
				t.Fatalf("expected allowed=%v, got %v", tc.want, allowed)
			}
		})
	}
}

func TestEngineGuardsRequireAuthentication(t *testing.T) {
	engine := workflow.MustNewEngine(workflow.ApprovalDefinition())
	anonymous := actor(domain.RoleAdmin, true, true)
	anonymous.Authenticated = false

	for _, transition := range workflow.ApprovalDefinition().Transitions {
		allowed, err := engine.Allowed(transition, anonymous)
		if err != nil {
			t.Fatalf("evaluate %s: %v", transition.Name, err)
		}
		if allowed {
			t.Fatalf("expected unauthenticated actor to be denied %s", transition.Name)
		}
	}
}

func TestNewEngineRejectsInvalidGuard(t *testing.T) {
	def := workflow.ApprovalDefinition()
	def.Transitions[0].Guard = "owner &&"
	if _, err := workflow.NewEngine(def); !errors.Is(err, workflow.ErrGuardInvalid) {
		t.Fatalf("expected ErrGuardInvalid, got %v", err)
	}

	def = workflow.ApprovalDefinition()
	def.Transitions[0].Guard = "role"
	if _, err := workflow.NewEngine(def); !errors.Is(err, workflow.ErrGuardInvalid) {
		t.Fatalf("expected non-boolean guard to be rejected, got %v", err)
	}
}

func TestGuardEvaluatorEmptyGuardPasses(t *testing.T) {
	evaluator := workflow.NewGuardEvaluator()
	allowed, err := evaluator.Evaluate("  ", workflow.GuardEnv{})
	if err != nil || !allowed {
		t.Fatalf("expected empty guard to pass, got %v %v", allowed, err)
	}
	allowed, err = evaluator.Evaluate(`role == "admin" && to == "closed"`, workflow.GuardEnv{Role: "admin", To: "closed"})
	if err != nil || !allowed {
		t.Fatalf("expected expression guard to pass, got %v %v", allowed, err)
	}
}
