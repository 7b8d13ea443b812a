package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/cognition"
)

func TestCollapseResetsAgentAtHome(t *testing.T) {
	sim := newTown(t, &scripted{})
	maria := sim.Agent("agent_1")
	require.True(t, sim.Resolve(maria, cognition.Move{Location: "Chicken Shop"}).Success)
	shop := sim.Places.Get("Chicken Shop")
	require.True(t, shop.IsOccupant("agent_1"))

	maria.Energy = 0
	sim.AdvanceTick()

	assert.Equal(t, agents.CollapseEnergy, maria.Energy)
	assert.Equal(t, "home", maria.CurrentLocation)
	assert.Equal(t, sim.Places.Get("home").Coord, maria.Coord)
	assert.False(t, shop.IsOccupant("agent_1"))
	assert.True(t, sim.Places.Get("home").IsOccupant("agent_1"))
	assert.Len(t, memoryOfType(maria, agents.EventCollapse), 1)
	assert.Equal(t, []agents.AgentID{"agent_1"}, sim.collapsed)

	// The next tick decays normally and does not collapse again.
	sim.AdvanceTick()
	assert.Equal(t, 48.0, maria.Energy)
	assert.Len(t, memoryOfType(maria, agents.EventCollapse), 1)
	assert.Empty(t, sim.collapsed)
}

func TestCollapseAfterDecay(t *testing.T) {
	sim := newTown(t, &scripted{})
	david := sim.Agent("agent_2")
	david.Energy = 1.5

	sim.AdvanceTick()

	assert.Equal(t, agents.CollapseEnergy, david.Energy)
	assert.Len(t, memoryOfType(david, agents.EventCollapse), 1)
}

func TestHourlyDecay(t *testing.T) {
	sim := newTown(t, &scripted{})
	maria, david, lisa := sim.Agent("agent_1"), sim.Agent("agent_2"), sim.Agent("agent_3")

	require.True(t, sim.Resolve(maria, cognition.Move{Location: "office"}).Success)
	maria.Energy = 100
	david.GroceryLevel = 10
	maria.GroceryLevel = 10

	sim.AdvanceTick()

	assert.Equal(t, 90.0, maria.Energy, "base + work + hunger")
	assert.Equal(t, 95.0, david.Energy, "base + hunger")
	assert.Equal(t, 98.0, lisa.Energy, "base")
}

func TestDecayScalesWithTickLength(t *testing.T) {
	sim := newTown(t, &scripted{}, func(o *Options) { o.TickMinutes = 30 })
	lisa := sim.Agent("agent_3")

	sim.AdvanceTick()
	assert.Equal(t, 99.0, lisa.Energy)
	assert.Equal(t, 7, sim.Clock.Hour)
	assert.Equal(t, 30, sim.Clock.Minute)
}

func TestAdvanceTickSignalsPlanningHour(t *testing.T) {
	sim := newTown(t, &scripted{})

	assert.False(t, sim.AdvanceTick(), "7:00 → 8:00")

	sim.Clock.Hour = 6
	assert.True(t, sim.AdvanceTick(), "6:00 → 7:00")
	assert.False(t, sim.AdvanceTick(), "7:00 → 8:00")
}

func TestAdvanceTickPlanningWithShortTicks(t *testing.T) {
	sim := newTown(t, &scripted{}, func(o *Options) { o.TickMinutes = 20 })
	sim.Clock.Hour, sim.Clock.Minute = 6, 40

	assert.True(t, sim.AdvanceTick(), "6:40 → 7:00")
	assert.False(t, sim.AdvanceTick(), "7:00 → 7:20 stays in the planning hour")
}

func TestAdvanceTickEmitsDayEvent(t *testing.T) {
	sim := newTown(t, &scripted{})
	sim.Clock.Hour = 23

	sim.AdvanceTick()

	assert.Equal(t, 1, sim.Clock.Day)
	ev := sim.RecentEvents(1)
	require.Len(t, ev, 1)
	assert.Equal(t, CategoryDay, ev[0].Category)
	assert.Contains(t, ev[0].Description, "Tuesday")
}

func TestCampaignTransitions(t *testing.T) {
	sim := newTown(t, &scripted{})
	sim.Clock.Day, sim.Clock.Hour = 2, 11

	sim.AdvanceTick() // 12:00 Wednesday
	started, ended := sim.evaluateCampaigns()
	require.Len(t, started, 1)
	assert.Empty(t, ended)
	assert.Equal(t, "Chicken Shop", started[0].Location)

	sim.AdvanceTick() // 13:00
	started, ended = sim.evaluateCampaigns()
	assert.Empty(t, started)
	assert.Empty(t, ended)

	sim.AdvanceTick() // 14:00, window closed
	started, ended = sim.evaluateCampaigns()
	assert.Empty(t, started)
	require.Len(t, ended, 1)

	var campaignEvents int
	for _, e := range sim.Events {
		if e.Category == CategoryCampaign {
			campaignEvents++
		}
	}
	assert.Equal(t, 2, campaignEvents)
}

func TestStep(t *testing.T) {
	d := &scripted{
		change: 0.25,
		plans: map[agents.AgentID]cognition.DailyPlan{
			"agent_1": {Items: []agents.PlanItem{{Time: "07:00", Action: "work", Location: "office", Purpose: "early start"}}},
		},
		decisions: map[agents.AgentID]cognition.Decision{
			"agent_1": cognition.Work{},
			"agent_2": cognition.Rest{},
		},
	}
	sim := newTown(t, d, func(o *Options) { o.StartHour = 6 })

	rep := sim.Step(context.Background())

	assert.True(t, rep.Planned)
	assert.Equal(t, uint64(1), rep.Tick)
	assert.Equal(t, 7, rep.Time.Hour)
	assert.Equal(t, 1, d.planCalls)
	assert.Equal(t, 1, d.decideCalls)

	maria := sim.Agent("agent_1")
	require.Len(t, maria.DailyPlan, 1)
	assert.Equal(t, "early start", d.lastItems["agent_1"].Purpose)
	assert.NotContains(t, d.lastItems, agents.AgentID("agent_2"))

	require.Len(t, rep.Outcomes, 3)
	assert.Equal(t, agents.AgentID("agent_1"), rep.Outcomes[0].AgentID)
	assert.ErrorIs(t, rep.Outcomes[0].Err, ErrNotAtWork)
	assert.True(t, rep.Outcomes[1].Success)
	assert.Equal(t, cognition.ActionRest, rep.Outcomes[2].Action, "missing decision defaults to rest")
	assert.Equal(t, 2, rep.Succeeded())

	// Everyone is home: María and David talk, Lisa has nobody left.
	require.Len(t, rep.Conversations, 1)
	assert.Equal(t, 1, d.convCalls)
	assert.Equal(t, 0.25, maria.Affinity("agent_2"))
	assert.Equal(t, 0.25, sim.Agent("agent_2").Affinity("agent_1"))
	assert.Empty(t, sim.Agent("agent_3").Relationships)
}

func TestStepReflectsAtPlanningHour(t *testing.T) {
	sim := newTown(t, &scripted{}, func(o *Options) { o.StartHour = 6 })
	lisa := sim.Agent("agent_3")
	for i := 0; i < 2; i++ {
		require.True(t, sim.Resolve(lisa, cognition.Buy{Location: "Coffee Shop", Product: "coffee"}).Success)
	}

	sim.Step(context.Background())

	r, ok := lisa.Memory.LatestReflection()
	require.True(t, ok)
	assert.Contains(t, r.Habits, "regular at Coffee Shop")
}

func TestAutomatonRunKeepsInvariants(t *testing.T) {
	sim := newTown(t, nil)
	ctx := context.Background()

	worked := false
	for i := 0; i < 72; i++ {
		rep := sim.Step(ctx)
		for _, o := range rep.Outcomes {
			if o.Action == cognition.ActionWork && o.Success {
				worked = true
			}
		}

		for _, a := range sim.Agents {
			require.GreaterOrEqual(t, a.Energy, 0.0)
			require.LessOrEqual(t, a.Energy, agents.MaxEnergy)
			require.GreaterOrEqual(t, a.Money, 0.0)
			require.LessOrEqual(t, a.Memory.Len(), a.Memory.MaxEvents)
			for _, v := range a.Relationships {
				require.True(t, v >= -1 && v <= 1)
			}
		}
		for _, l := range sim.Places.All() {
			require.LessOrEqual(t, len(l.Occupants()), l.Capacity)
			for _, p := range l.Products {
				require.GreaterOrEqual(t, p.Stock, 0)
			}
		}
		require.LessOrEqual(t, len(sim.Events), 100)
	}
	assert.True(t, worked)
	assert.Equal(t, 3, sim.Clock.Day)
}
