package cognition

import (
	"context"
	"fmt"

	"github.com/talgya/mini-market/internal/agents"
)

// Thresholds for the rule-based decider.
const (
	lowEnergy    = 20.0
	lowGroceries = 20.0
	treatBudget  = 50.0 // money needed before chasing a discount

	workStart = 9
	workEnd   = 17
)

// Automaton decides with fixed needs-driven rules and no reasoning
// service. Needs are evaluated bottom-up: a starving agent eats before it
// works.
type Automaton struct{}

// PlanDaily builds a fixed itinerary around the agent's workplace.
func (Automaton) PlanDaily(_ context.Context, v View, list []*agents.Agent) map[agents.AgentID]DailyPlan {
	out := make(map[agents.AgentID]DailyPlan, len(list))
	for _, a := range list {
		out[a.ID] = routinePlan(a, v)
	}
	return out
}

// DecideActions picks one action per agent.
func (Automaton) DecideActions(_ context.Context, v View, list []*agents.Agent, items map[agents.AgentID]agents.PlanItem) map[agents.AgentID]Decision {
	out := make(map[agents.AgentID]Decision, len(list))
	for _, a := range list {
		var item *agents.PlanItem
		if it, ok := items[a.ID]; ok {
			item = &it
		}
		out[a.ID] = decide(a, v, item)
	}
	return out
}

// Converse produces a friendly exchange; shared traits bring agents closer.
func (Automaton) Converse(_ context.Context, v View, a, b *agents.Agent) Conversation {
	change := 0.05
	topic := "small talk"
	for _, t := range a.Traits {
		if b.HasTrait(t) {
			change = 0.1
			topic = t
			break
		}
	}
	if a.HasTrait("introvert") && b.HasTrait("introvert") {
		change = 0.02
	}
	return Conversation{
		Dialogue:           fmt.Sprintf("%s: Hi %s, nice to see you at %s!", a.Name, b.Name, a.CurrentLocation),
		Topic:              topic,
		RelationshipChange: change,
		Reasoning:          "routine greeting",
	}
}

func decide(a *agents.Agent, v View, item *agents.PlanItem) Decision {
	hour := v.Time.Hour

	if a.Energy < lowEnergy {
		if a.Inventory.Len() > 0 {
			return Eat{Meta: Meta{Reasoning: "exhausted, eating what I have", Urgency: UrgencyHigh}}
		}
		return Rest{Meta: Meta{Reasoning: "exhausted", Urgency: UrgencyHigh}}
	}

	if a.GroceryLevel < lowGroceries && a.Money > 0 {
		if shop, food, ok := foodShop(v, a); ok {
			return goAndBuy(a, shop, food, "running out of groceries", UrgencyHigh)
		}
	}

	if item != nil {
		if d, ok := fromPlan(a, *item); ok {
			return d
		}
	}

	if a.WorkLocation != "" && hour >= workStart && hour < workEnd {
		if a.AtWork() {
			return Work{Meta: Meta{Reasoning: "working hours", Urgency: UrgencyMedium}}
		}
		return Move{Meta: Meta{Reasoning: "heading to work", Urgency: UrgencyMedium}, Location: a.WorkLocation}
	}

	if a.Money > treatBudget && !a.HasTrait("thrifty") {
		for _, d := range v.Discounts {
			if info, ok := v.location(d.Location); ok && len(info.Food) > 0 {
				return goAndBuy(a, info.Name, info.Food[0], fmt.Sprintf("%.0f%% off at %s", d.Percent, d.Location), UrgencyMedium)
			}
		}
	}

	if a.CurrentLocation != a.HomeLocation {
		return Move{Meta: Meta{Reasoning: "going home", Urgency: UrgencyLow}, Location: a.HomeLocation}
	}
	return Rest{Meta: Meta{Reasoning: "nothing to do", Urgency: UrgencyLow}}
}

func goAndBuy(a *agents.Agent, shop, food, why string, u Urgency) Decision {
	if a.CurrentLocation == shop {
		return Buy{Meta: Meta{Reasoning: why, Urgency: u}, Location: shop, Product: food}
	}
	return Move{Meta: Meta{Reasoning: why, Urgency: u}, Location: shop}
}

func fromPlan(a *agents.Agent, it agents.PlanItem) (Decision, bool) {
	meta := Meta{Reasoning: "following plan: " + it.Purpose, Urgency: UrgencyMedium}
	switch ActionKind(it.Action) {
	case ActionMove:
		if it.Location == "" || it.Location == a.CurrentLocation {
			return nil, false
		}
		return Move{Meta: meta, Location: it.Location}, true
	case ActionBuy:
		if it.Location == "" || it.Product == "" {
			return nil, false
		}
		if a.CurrentLocation != it.Location {
			return Move{Meta: meta, Location: it.Location}, true
		}
		return Buy{Meta: meta, Location: it.Location, Product: it.Product}, true
	case ActionWork:
		if !a.AtWork() {
			return nil, false
		}
		return Work{Meta: meta}, true
	case ActionEat:
		if a.Inventory.Len() == 0 {
			return nil, false
		}
		return Eat{Meta: meta}, true
	case ActionRest:
		return Rest{Meta: meta}, true
	}
	return nil, false
}

// foodShop returns the first location selling food, preferring one with an
// active discount.
func foodShop(v View, a *agents.Agent) (string, string, bool) {
	for _, d := range v.Discounts {
		if info, ok := v.location(d.Location); ok && len(info.Food) > 0 {
			return info.Name, info.Food[0], true
		}
	}
	for _, l := range v.Locations {
		if len(l.Food) > 0 && l.Name != a.HomeLocation {
			return l.Name, l.Food[0], true
		}
	}
	return "", "", false
}

func routinePlan(a *agents.Agent, v View) DailyPlan {
	var items []agents.PlanItem
	add := func(hour int, action, location, product, purpose string) {
		items = append(items, agents.PlanItem{
			Time:     fmt.Sprintf("%02d:00", hour),
			Action:   action,
			Location: location,
			Product:  product,
			Purpose:  purpose,
		})
	}

	if a.WorkLocation != "" {
		add(8, string(ActionMove), a.WorkLocation, "", "go to work")
		add(workStart, string(ActionWork), a.WorkLocation, "", "work")
	}
	if shop, food, ok := foodShop(v, a); ok {
		add(12, string(ActionBuy), shop, food, "lunch")
	}
	if a.WorkLocation != "" {
		add(13, string(ActionMove), a.WorkLocation, "", "back to work")
		add(14, string(ActionWork), a.WorkLocation, "", "work")
	}
	add(workEnd, string(ActionMove), a.HomeLocation, "", "head home")
	add(19, string(ActionRest), a.HomeLocation, "", "rest")

	return DailyPlan{Items: items, Reasoning: "usual routine"}
}

func (v View) location(name string) (LocationInfo, bool) {
	for _, l := range v.Locations {
		if l.Name == name {
			return l, true
		}
	}
	return LocationInfo{}, false
}
