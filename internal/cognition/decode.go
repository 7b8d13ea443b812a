package cognition

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talgya/mini-market/internal/agents"
)

// extractObject decodes the text between the first '{' and the last '}'.
// Anything that is not a JSON object yields an empty object.
func extractObject(raw string) map[string]any {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil || obj == nil {
		return map[string]any{}
	}
	return obj
}

// DecodeAction turns a raw action reply into a Decision. It never fails:
// undecodable or ill-shaped replies become an invalid Rest.
func DecodeAction(raw string) Decision {
	obj := extractObject(raw)

	action, _ := obj["action"].(string)
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return invalid("missing action")
	}
	obj["action"] = action

	if err := actionSchema.Validate(obj); err != nil {
		if !isKnownAction(action) {
			return invalid(fmt.Sprintf("unknown action %q", action))
		}
		return invalid(fmt.Sprintf("malformed %s decision: %v", action, firstLine(err.Error())))
	}

	meta := Meta{
		Reasoning: str(obj, "reasoning"),
		Urgency:   urgency(str(obj, "urgency")),
	}
	switch ActionKind(action) {
	case ActionBuy:
		return Buy{Meta: meta, Location: str(obj, "target_location"), Product: str(obj, "target_product")}
	case ActionMove:
		return Move{Meta: meta, Location: str(obj, "target_location")}
	case ActionEat:
		return Eat{Meta: meta}
	case ActionWork:
		return Work{Meta: meta}
	case ActionChat:
		return Chat{Meta: meta, TargetAgent: str(obj, "target_agent")}
	default:
		return Rest{Meta: meta}
	}
}

// DecodeDailyPlan turns a raw plan reply into a DailyPlan; anything
// ill-shaped yields an empty plan.
func DecodeDailyPlan(raw string) DailyPlan {
	obj := extractObject(raw)
	if err := planSchema.Validate(obj); err != nil {
		return DefaultPlan("no valid plan")
	}

	plan := DailyPlan{Reasoning: str(obj, "reasoning")}
	items, _ := obj["plan"].([]any)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		plan.Items = append(plan.Items, agents.PlanItem{
			Time:     str(m, "time"),
			Action:   strings.ToLower(str(m, "action")),
			Location: str(m, "location"),
			Product:  str(m, "product"),
			Purpose:  str(m, "purpose"),
		})
	}
	return plan
}

// DecodeConversation turns a raw conversation reply into a Conversation.
// ok is false when the reply has no usable dialogue.
func DecodeConversation(raw string) (Conversation, bool) {
	obj := extractObject(raw)
	if err := conversationSchema.Validate(obj); err != nil {
		return Conversation{}, false
	}
	change, _ := obj["relationship_change"].(float64)
	return Conversation{
		Dialogue:           str(obj, "dialogue"),
		Topic:              str(obj, "topic"),
		RelationshipChange: change,
		Reasoning:          str(obj, "reasoning"),
	}, true
}

func isKnownAction(a string) bool {
	switch ActionKind(a) {
	case ActionBuy, ActionMove, ActionRest, ActionEat, ActionWork, ActionChat:
		return true
	}
	return false
}

func urgency(s string) Urgency {
	switch u := Urgency(strings.ToLower(s)); u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return u
	}
	return ""
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
