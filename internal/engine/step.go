package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/cognition"
	"github.com/talgya/mini-market/internal/world"
)

// TickReport summarizes one call to Step.
type TickReport struct {
	Tick          uint64               `json:"tick"`
	Time          world.Timestamp      `json:"time"`
	Planned       bool                 `json:"planned"`
	Collapsed     []agents.AgentID     `json:"collapsed,omitempty"`
	Started       []world.Campaign     `json:"campaigns_started,omitempty"`
	Ended         []world.Campaign     `json:"campaigns_ended,omitempty"`
	Outcomes      []Outcome            `json:"outcomes"`
	Conversations []ConversationRecord `json:"conversations,omitempty"`
	Duration      time.Duration        `json:"duration"`
}

// Succeeded counts the successful outcomes.
func (r TickReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Step runs one full tick: advance and decay, plan at the planning hour,
// evaluate campaigns, decide in parallel, resolve in agent order, then let
// co-located agents talk.
func (s *Simulation) Step(ctx context.Context) TickReport {
	start := time.Now()

	planning := s.AdvanceTick()
	rep := TickReport{Tick: s.LastTick, Time: s.Clock.Now(), Planned: planning}
	rep.Collapsed = append(rep.Collapsed, s.collapsed...)

	if planning {
		s.Reflect()
		s.PlanDaily(ctx)
	}
	rep.Started, rep.Ended = s.evaluateCampaigns()

	decisions := s.DecideActions(ctx, s.CurrentPlanItems())
	for _, a := range s.Agents {
		d, ok := decisions[a.ID]
		if !ok {
			d = cognition.DefaultDecision("no decision returned")
		}
		rep.Outcomes = append(rep.Outcomes, s.Resolve(a, d))
	}

	rep.Conversations = s.socialStep(ctx)
	rep.Duration = time.Since(start)

	s.metrics.RecordTick(s.Clock.Day, rep.Duration)
	sum := s.Summary()
	s.logger.Info("tick",
		"tick", rep.Tick,
		"time", rep.Time.String(),
		"planned", planning,
		"succeeded", rep.Succeeded(),
		"outcomes", len(rep.Outcomes),
		"conversations", len(rep.Conversations),
		"avg_energy", fmt.Sprintf("%.1f", sum.AvgEnergy),
		"sales", fmt.Sprintf("%.2f", sum.TotalSales),
		"duration", rep.Duration,
	)
	return rep
}

// AdvanceTick moves the clock one tick, applies energy decay scaled to the
// tick length and resets collapsed agents. It returns true when the clock
// has just reached the planning hour.
func (s *Simulation) AdvanceTick() bool {
	oldHour, oldDay := s.Clock.Hour, s.Clock.Day
	s.Clock.Advance()
	s.LastTick++
	s.collapsed = s.collapsed[:0]

	if s.Clock.Day != oldDay {
		s.EmitEvent(Event{Category: CategoryDay, Description: fmt.Sprintf("%s begins", s.Clock.Now().String())})
	}

	scale := float64(s.tickMinutes) / world.MinutesPerHour
	for _, a := range s.Agents {
		if a.IsCollapsed() {
			continue
		}
		a.Decay(a.HourlyDecay() * scale)
	}
	for _, a := range s.Agents {
		if a.IsCollapsed() {
			s.collapse(a)
		}
	}

	return s.Clock.Hour == s.PlanningHour && oldHour != s.PlanningHour
}

// collapse resets an exhausted agent: half energy, back home.
func (s *Simulation) collapse(a *agents.Agent) {
	if cur := s.Places.Get(a.CurrentLocation); cur != nil {
		cur.Leave(string(a.ID))
	}
	a.Energy = agents.CollapseEnergy
	a.CurrentLocation = ""
	a.Coord = world.Coord{}
	if home := s.Places.Get(a.HomeLocation); home != nil {
		a.Coord = home.Coord
		if home.Enter(string(a.ID)) {
			a.CurrentLocation = home.Name
		}
	}

	s.collapsed = append(s.collapsed, a.ID)
	desc := fmt.Sprintf("%s collapsed from exhaustion and went home", a.Name)
	s.remember(a, agents.EventCollapse, desc, a.HomeLocation, "", nil)
	s.metrics.RecordCollapse()
	s.EmitEvent(Event{Category: CategoryCollapse, Agent: a.ID, Location: a.HomeLocation, Description: desc})
	s.logger.Warn("agent collapsed", "agent", a.Name, "home", a.HomeLocation)
}

// Reflect stores a fresh reflection in every agent's memory.
func (s *Simulation) Reflect() {
	now := s.Clock.Now()
	for _, a := range s.Agents {
		r, ok := a.Memory.Reflect(now)
		if !ok {
			continue
		}
		a.Memory.AddReflection(r)
		if len(r.Habits) > 0 {
			s.EmitEvent(Event{
				Category:    CategoryReflection,
				Agent:       a.ID,
				Description: fmt.Sprintf("%s: %s", a.Name, strings.Join(r.Habits, ", ")),
			})
		}
	}
}

// PlanDaily asks the decider for every agent's daily plan and installs it.
func (s *Simulation) PlanDaily(ctx context.Context) map[agents.AgentID]cognition.DailyPlan {
	s.EmitEvent(Event{Category: CategoryPlan, Description: "agents plan their day"})
	plans := s.Decider.PlanDaily(ctx, s.View(), s.Agents)
	for _, a := range s.Agents {
		if p, ok := plans[a.ID]; ok {
			a.DailyPlan = p.Items
		}
	}
	return plans
}

// CurrentPlanItems returns each agent's plan entry for the current hour.
func (s *Simulation) CurrentPlanItems() map[agents.AgentID]agents.PlanItem {
	items := make(map[agents.AgentID]agents.PlanItem)
	for _, a := range s.Agents {
		if it, ok := cognition.PlanItemAt(a.DailyPlan, s.Clock.Hour); ok {
			items[a.ID] = it
		}
	}
	return items
}

// DecideActions asks the decider for one decision per agent.
func (s *Simulation) DecideActions(ctx context.Context, items map[agents.AgentID]agents.PlanItem) map[agents.AgentID]cognition.Decision {
	return s.Decider.DecideActions(ctx, s.View(), s.Agents, items)
}

// evaluateCampaigns emits an event for every campaign that switched on or
// off since the last evaluation.
func (s *Simulation) evaluateCampaigns() (started, ended []world.Campaign) {
	now := s.Clock.Now()
	for i, c := range s.Clock.Campaigns {
		if i >= len(s.campaignActive) {
			s.campaignActive = append(s.campaignActive, false)
		}
		active := c.ActiveAt(now)
		switch {
		case active && !s.campaignActive[i]:
			started = append(started, c)
			s.EmitEvent(Event{
				Category:    CategoryCampaign,
				Location:    c.Location,
				Description: fmt.Sprintf("%.0f%% off at %s from %02d:00 to %02d:00", c.DiscountPercent, c.Location, c.StartHour, c.EndHour),
			})
		case !active && s.campaignActive[i]:
			ended = append(ended, c)
			s.EmitEvent(Event{
				Category:    CategoryCampaign,
				Location:    c.Location,
				Description: fmt.Sprintf("campaign at %s ended", c.Location),
			})
		}
		s.campaignActive[i] = active
	}
	return started, ended
}
