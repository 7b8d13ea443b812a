// Package cognition turns reasoning-service replies into typed agent decisions.
package cognition

import (
	"fmt"

	"github.com/talgya/mini-market/internal/agents"
)

// ActionKind names one of the six agent actions.
type ActionKind string

const (
	ActionBuy  ActionKind = "buy"
	ActionMove ActionKind = "move"
	ActionRest ActionKind = "rest"
	ActionEat  ActionKind = "eat"
	ActionWork ActionKind = "work"
	ActionChat ActionKind = "chat"
)

// Urgency is the optional urgency hint attached to a decision.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Meta carries the fields shared by every decision.
type Meta struct {
	Reasoning string  `json:"reasoning"`
	Urgency   Urgency `json:"urgency,omitempty"`
}

func (m Meta) info() Meta { return m }

// Decision is one of Buy, Move, Rest, Eat, Work or Chat.
type Decision interface {
	Kind() ActionKind
	info() Meta
}

// Info returns the shared fields of d.
func Info(d Decision) Meta {
	if d == nil {
		return Meta{}
	}
	return d.info()
}

// Buy purchases one unit of Product at Location.
type Buy struct {
	Meta
	Location string `json:"target_location"`
	Product  string `json:"target_product"`
}

// Move walks to Location.
type Move struct {
	Meta
	Location string `json:"target_location"`
}

// Rest recovers energy. Invalid marks a rest substituted for a reply that
// could not be understood; Note says why.
type Rest struct {
	Meta
	Invalid bool   `json:"invalid,omitempty"`
	Note    string `json:"note,omitempty"`
}

// Eat consumes one held item.
type Eat struct{ Meta }

// Work earns the wage at the agent's workplace.
type Work struct{ Meta }

// Chat signals the wish to talk; TargetAgent is advisory.
type Chat struct {
	Meta
	TargetAgent string `json:"target_agent,omitempty"`
}

func (Buy) Kind() ActionKind  { return ActionBuy }
func (Move) Kind() ActionKind { return ActionMove }
func (Rest) Kind() ActionKind { return ActionRest }
func (Eat) Kind() ActionKind  { return ActionEat }
func (Work) Kind() ActionKind { return ActionWork }
func (Chat) Kind() ActionKind { return ActionChat }

// Describe renders a decision for logs.
func Describe(d Decision) string {
	switch v := d.(type) {
	case Buy:
		return fmt.Sprintf("buy %q at %q", v.Product, v.Location)
	case Move:
		return fmt.Sprintf("move to %q", v.Location)
	case Rest:
		if v.Invalid {
			return "rest (decision invalid)"
		}
		return "rest"
	case Chat:
		if v.TargetAgent != "" {
			return "chat with " + v.TargetAgent
		}
		return "chat"
	case nil:
		return "none"
	default:
		return string(d.Kind())
	}
}

// DefaultDecision is substituted when the service fails for an agent.
func DefaultDecision(reason string) Decision {
	return Rest{Meta: Meta{Reasoning: reason}}
}

// invalid is substituted when a reply cannot be understood.
func invalid(note string) Decision {
	return Rest{
		Meta:    Meta{Reasoning: "decision invalid, resting"},
		Invalid: true,
		Note:    note,
	}
}

// DailyPlan is the itinerary produced at the planning hour.
type DailyPlan struct {
	Items     []agents.PlanItem `json:"plan"`
	Reasoning string            `json:"reasoning"`
}

// ItemAt returns the first plan item scheduled for hour.
func (p DailyPlan) ItemAt(hour int) (agents.PlanItem, bool) {
	return PlanItemAt(p.Items, hour)
}

// PlanItemAt returns the first item of plan whose HH equals hour.
func PlanItemAt(plan []agents.PlanItem, hour int) (agents.PlanItem, bool) {
	for _, it := range plan {
		if it.Hour() == hour {
			return it, true
		}
	}
	return agents.PlanItem{}, false
}

// DefaultPlan is substituted when planning fails.
func DefaultPlan(reason string) DailyPlan {
	return DailyPlan{Reasoning: reason}
}

// Conversation is the result of a chat between two co-located agents.
type Conversation struct {
	Dialogue           string  `json:"dialogue"`
	Topic              string  `json:"topic"`
	RelationshipChange float64 `json:"relationship_change"`
	Reasoning          string  `json:"reasoning"`
}

// DefaultConversation is a neutral greeting used when generation fails.
func DefaultConversation(a, b, reason string) Conversation {
	return Conversation{
		Dialogue:  fmt.Sprintf("%s: Hi, %s!", a, b),
		Topic:     "greeting",
		Reasoning: reason,
	}
}
