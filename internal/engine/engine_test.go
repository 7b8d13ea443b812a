package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/cognition"
	"github.com/talgya/mini-market/internal/config"
)

// scripted is a Decider with canned answers.
type scripted struct {
	mu        sync.Mutex
	decisions map[agents.AgentID]cognition.Decision
	plans     map[agents.AgentID]cognition.DailyPlan
	change    float64

	planCalls   int
	decideCalls int
	convCalls   int
	lastItems   map[agents.AgentID]agents.PlanItem
}

func (s *scripted) PlanDaily(_ context.Context, _ cognition.View, list []*agents.Agent) map[agents.AgentID]cognition.DailyPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.planCalls++
	out := make(map[agents.AgentID]cognition.DailyPlan, len(list))
	for _, a := range list {
		out[a.ID] = s.plans[a.ID]
	}
	return out
}

func (s *scripted) DecideActions(_ context.Context, _ cognition.View, list []*agents.Agent, items map[agents.AgentID]agents.PlanItem) map[agents.AgentID]cognition.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decideCalls++
	s.lastItems = items
	out := make(map[agents.AgentID]cognition.Decision, len(list))
	for _, a := range list {
		if d, ok := s.decisions[a.ID]; ok {
			out[a.ID] = d
		}
	}
	return out
}

func (s *scripted) Converse(_ context.Context, _ cognition.View, a, b *agents.Agent) cognition.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convCalls++
	return cognition.Conversation{
		Dialogue:           a.Name + ": hello " + b.Name,
		Topic:              "weather",
		RelationshipChange: s.change,
	}
}

// newTown builds the starter town with the given decider.
func newTown(t *testing.T, d Decider, mutate ...func(*Options)) *Simulation {
	t.Helper()
	sc, err := config.DefaultScenario()
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Decider = d
	for _, m := range mutate {
		m(&opts)
	}
	sim, err := NewSimulation(sc, opts)
	require.NoError(t, err)
	return sim
}

func memoryOfType(a *agents.Agent, t agents.EventType) []agents.MemoryEvent {
	return a.Memory.ByType(t, a.Memory.MaxEvents)
}
