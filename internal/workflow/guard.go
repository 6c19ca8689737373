package workflow

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goliatone/go-lifecycle/internal/domain"
)

// ErrGuardInvalid indicates a guard expression failed to compile.
var ErrGuardInvalid = errors.New("workflow: guard expression invalid")

// GuardEnv is the environment guard expressions are evaluated against.
type GuardEnv struct {
	Authenticated bool   `expr:"authenticated"`
	Owner         bool   `expr:"owner"`
	Assignee      bool   `expr:"assignee"`
	Contributor   bool   `expr:"contributor"`
	Approver      bool   `expr:"approver"`
	Admin         bool   `expr:"admin"`
	Role          string `expr:"role"`
	From          string `expr:"from"`
	To            string `expr:"to"`
}

// GuardEnvFor derives the guard environment for an actor attempting from -> to.
// Capabilities of unauthenticated actors are always false.
func GuardEnvFor(actor domain.Actor, from, to domain.StatusName) GuardEnv {
	return GuardEnv{
		Authenticated: actor.Authenticated,
		Owner:         actor.IsOwner(),
		Assignee:      actor.Authenticated && actor.Assignee,
		Contributor:   actor.IsContributor(),
		Approver:      actor.IsApprover(),
		Admin:         actor.IsAdmin(),
		Role:          string(actor.Role),
		From:          string(from),
		To:            string(to),
	}
}

// GuardEvaluator compiles guard expressions once and caches the programs.
type GuardEvaluator struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

// NewGuardEvaluator constructs an empty evaluator.
func NewGuardEvaluator() *GuardEvaluator {
	return &GuardEvaluator{programs: make(map[string]*vm.Program)}
}

// Compile validates a guard expression and caches its program.
func (g *GuardEvaluator) Compile(guard string) error {
	_, err := g.program(guard)
	return err
}

// Evaluate runs guard against env. Empty guards pass.
func (g *GuardEvaluator) Evaluate(guard string, env GuardEnv) (bool, error) {
	guard = strings.TrimSpace(guard)
	if guard == "" {
		return true, nil
	}
	program, err := g.program(guard)
	if err != nil {
		return false, err
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("workflow: evaluate guard %q: %w", guard, err)
	}
	allowed, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q did not return a boolean", ErrGuardInvalid, guard)
	}
	return allowed, nil
}

func (g *GuardEvaluator) program(guard string) (*vm.Program, error) {
	guard = strings.TrimSpace(guard)
	g.mu.RLock()
	if program, ok := g.programs[guard]; ok {
		g.mu.RUnlock()
		return program, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if program, ok := g.programs[guard]; ok {
		return program, nil
	}
	program, err := expr.Compile(guard, expr.Env(GuardEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrGuardInvalid, guard, err)
	}
	g.programs[guard] = program
	return program, nil
}
