package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-lifecycle/internal/domain"
)

var (
	// ErrIllegalEdge indicates the requested edge is not part of the definition.
	ErrIllegalEdge = errors.New("workflow: transition not allowed")
	// ErrUnknownState indicates a state outside the definition.
	ErrUnknownState = errors.New("workflow: unknown state")
)

// Engine answers edge and guard questions for one compiled definition. It
// holds no entity state.
type Engine struct {
	definition Definition
	edges      map[string]Transition
	byState    map[domain.StatusName][]Transition
	states     map[domain.StatusName]StateDefinition
	guards     *GuardEvaluator
}

// NewEngine validates the definition and precompiles every guard.
func NewEngine(definition Definition) (*Engine, error) {
	if err := definition.Validate(); err != nil {
		return nil, err
	}
	engine := &Engine{
		definition: definition,
		edges:      make(map[string]Transition, len(definition.Transitions)),
		byState:    make(map[domain.StatusName][]Transition),
		states:     make(map[domain.StatusName]StateDefinition, len(definition.States)),
		guards:     NewGuardEvaluator(),
	}
	for _, state := range definition.States {
		engine.states[state.Name] = state
	}
	for _, transition := range definition.Transitions {
		if strings.TrimSpace(transition.Guard) != "" {
			if err := engine.guards.Compile(transition.Guard); err != nil {
				return nil, err
			}
		}
		engine.edges[edgeKey(transition.From, transition.To)] = transition
		engine.byState[transition.From] = append(engine.byState[transition.From], transition)
	}
	return engine, nil
}

// MustNewEngine is NewEngine for definitions known to be valid at compile time.
func MustNewEngine(definition Definition) *Engine {
	engine, err := NewEngine(definition)
	if err != nil {
		panic(err)
	}
	return engine
}

// Definition returns the definition the engine was built from.
func (e *Engine) Definition() Definition {
	return e.definition
}

// HasState reports whether name is a state of the definition.
func (e *Engine) HasState(name domain.StatusName) bool {
	_, ok := e.states[name]
	return ok
}

// Lookup returns the edge from -> to.
func (e *Engine) Lookup(from, to domain.StatusName) (Transition, error) {
	transition, ok := e.edges[edgeKey(from, to)]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s -> %s", ErrIllegalEdge, from, to)
	}
	return transition, nil
}

// TransitionsFrom lists the edges leaving state in declaration order.
func (e *Engine) TransitionsFrom(state domain.StatusName) []Transition {
	transitions := e.byState[state]
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// Allowed evaluates the guard of transition for actor.
func (e *Engine) Allowed(transition Transition, actor domain.Actor) (bool, error) {
	return e.guards.Evaluate(transition.Guard, GuardEnvFor(actor, transition.From, transition.To))
}
