package cognition

import (
	"fmt"
	"strings"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/world"
)

const systemPrompt = "You are a helpful assistant that always answers with valid JSON when asked."

// memoryWindow is how many recent events each prompt carries.
const memoryWindow = 10

// LocationInfo is the prompt-facing description of a location.
type LocationInfo struct {
	Name     string
	Type     string
	Coord    world.Coord
	Products []string
	Food     []string // in-stock products that restore energy
}

// DiscountInfo is one active campaign discount.
type DiscountInfo struct {
	Location string
	Percent  float64
}

// View is a read-only snapshot of the world used to build prompts.
// It is assembled on the driver goroutine before any request is issued.
type View struct {
	Time      world.Timestamp
	Locations []LocationInfo
	Discounts []DiscountInfo
	// Nearby lists the names of agents sharing each agent's location.
	Nearby map[agents.AgentID][]string
}

// NewView snapshots the clock and the places.
func NewView(clock *world.Clock, places *world.Places) View {
	v := View{Time: clock.Now()}
	for _, loc := range places.All() {
		info := LocationInfo{
			Name:     loc.Name,
			Type:     loc.Type,
			Coord:    loc.Coord,
			Products: loc.ProductNames(),
		}
		for _, name := range info.Products {
			if p := loc.Product(name); p.SatisfiesNeed == world.NeedEnergy && p.Stock > 0 {
				info.Food = append(info.Food, name)
			}
		}
		v.Locations = append(v.Locations, info)
		if d := clock.DiscountFor(loc.Name); d > 0 {
			v.Discounts = append(v.Discounts, DiscountInfo{Location: loc.Name, Percent: d * 100})
		}
	}
	return v
}

// Prompt is a system and user prompt pair.
type Prompt struct {
	System string
	User   string
}

func (v View) worldInfo() string {
	return fmt.Sprintf("World state:\n- Date: %s\n", v.Time)
}

func (v View) locationsInfo() string {
	var b strings.Builder
	b.WriteString("Available locations:\n")
	for _, l := range v.Locations {
		products := "none"
		if len(l.Products) > 0 {
			products = strings.Join(l.Products, ", ")
		}
		fmt.Fprintf(&b, "- %s (%s) at %s\n  Products: %s\n", l.Name, l.Type, l.Coord, products)
	}
	return b.String()
}

func (v View) discountsInfo() string {
	if len(v.Discounts) == 0 {
		return "No discounts are active right now.\n"
	}
	var b strings.Builder
	b.WriteString("Active discounts:\n")
	for _, d := range v.Discounts {
		fmt.Fprintf(&b, "- %s: %.0f%% off\n", d.Location, d.Percent)
	}
	return b.String()
}

func (v View) nearbyInfo(id agents.AgentID) string {
	names := v.Nearby[id]
	if len(names) == 0 {
		return "Nobody else is here.\n"
	}
	return fmt.Sprintf("People here with you: %s\n", strings.Join(names, ", "))
}

func profile(a *agents.Agent) string {
	traits := "none"
	if len(a.Traits) > 0 {
		traits = strings.Join(a.Traits, ", ")
	}
	return fmt.Sprintf(`Agent profile:
- Name: %s
- Age: %d
- Profession: %s
- Personality: %s
- Money: $%.2f
- Energy: %.1f/100
- Groceries: %.1f/100
`, a.Name, a.Age, a.Profession, traits, a.Money, a.Energy, a.GroceryLevel)
}

// PlanPrompt asks for the agent's itinerary for the rest of the day.
func PlanPrompt(a *agents.Agent, v View) Prompt {
	user := fmt.Sprintf(`You are %s, a consumer in a town simulation.

%s
%s
%s
%s
Task: plan your day. It is %s. Produce hourly activities from %02d:00 until 23:00.

Answer ONLY with valid JSON in this format:
{
  "plan": [
    {"time": "08:00", "action": "move", "location": "office", "purpose": "go to work"},
    {"time": "12:00", "action": "buy", "location": "Coffee Shop", "product": "coffee", "purpose": "lunch"},
    {"time": "17:00", "action": "move", "location": "home", "purpose": "head home"},
    {"time": "19:00", "action": "rest", "location": "home", "purpose": "rest"}
  ],
  "reasoning": "short explanation of the plan"
}

Available actions: move, buy, rest, eat, work (only at your workplace).
Be realistic about your energy and money, and keep your habits in mind.`,
		a.Name, profile(a), v.worldInfo(), v.locationsInfo(), a.Memory.Context(memoryWindow),
		v.Time, v.Time.Hour)
	return Prompt{System: systemPrompt, User: user}
}

// ActionPrompt asks what the agent does right now. item is the plan entry
// for the current hour, if any.
func ActionPrompt(a *agents.Agent, v View, item *agents.PlanItem) Prompt {
	plan := ""
	switch {
	case item != nil:
		plan = fmt.Sprintf("Your plan for this hour: %s at %s (%s)\n", item.Action, item.Location, item.Purpose)
	case len(a.DailyPlan) > 0:
		plan = "You have a daily plan, but nothing scheduled for this hour.\n"
	}
	location := a.CurrentLocation
	if location == "" {
		location = "in transit"
	}

	user := fmt.Sprintf(`You are %s, a consumer in a town simulation.

Current state:
- Energy: %.1f/100
- Money: $%.2f
- Groceries: %.1f/100
- Location: %s
- Coordinates: %s
- Inventory: %d items

%s
%s
%s
%s
%s
%s
Task: decide what to do NOW (%s).
If your energy is low, consider resting or eating. Spend wisely. You may follow your plan or adapt.

Answer ONLY with valid JSON in this format:
{
  "action": "buy|move|rest|eat|work|chat",
  "target_location": "location name or null",
  "target_product": "product name or null (buy only)",
  "target_agent": "agent id or null (chat only)",
  "reasoning": "short explanation",
  "urgency": "high|medium|low"
}`,
		a.Name, a.Energy, a.Money, a.GroceryLevel, location, a.Coord, a.Inventory.Total(),
		v.worldInfo(), v.locationsInfo(), v.discountsInfo(), v.nearbyInfo(a.ID), plan,
		a.Memory.Context(memoryWindow), v.Time.Clock())
	return Prompt{System: systemPrompt, User: user}
}

// ConversationPrompt asks for a short dialogue between a and other.
func ConversationPrompt(a, other *agents.Agent, v View) Prompt {
	affinity := a.Affinity(other.ID)
	relation := "neutral"
	switch {
	case affinity > 0.3:
		relation = "positive"
	case affinity <= -0.3:
		relation = "negative"
	}

	var history strings.Builder
	if past := a.Memory.Conversations(other.ID, 5); len(past) > 0 {
		history.WriteString("Previous conversations:\n")
		for _, e := range past {
			fmt.Fprintf(&history, "- %s\n", e.Description)
		}
	}

	user := fmt.Sprintf(`You are %s, a consumer in a town simulation.

You meet %s (%d years old, %s) at %s on %s.
Your relationship with %s is %s (affinity %.2f).
%s
Your energy: %.1f/100. Your money: $%.2f.

Write a short, natural dialogue between you and %s.

Answer ONLY with valid JSON in this format:
{
  "dialogue": "what is said",
  "topic": "conversation_topic",
  "relationship_change": 0.1,
  "reasoning": "short explanation"
}
relationship_change is positive when you grow closer, negative when you drift apart, near 0 when neutral.`,
		a.Name, other.Name, other.Age, other.Profession, a.CurrentLocation, v.Time,
		other.Name, relation, affinity, history.String(), a.Energy, a.Money, other.Name)
	return Prompt{System: systemPrompt, User: user}
}
