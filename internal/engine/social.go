package engine

import (
	"context"
	"fmt"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/cognition"
)

// ConversationRecord is one conversation held during the social step.
type ConversationRecord struct {
	A, B         agents.AgentID
	Location     string
	Conversation cognition.Conversation
}

// DetectCoLocated returns the other agents sharing the agent's location.
func (s *Simulation) DetectCoLocated(a *agents.Agent) []*agents.Agent {
	return DetectSameLocation(a, s.Agents)
}

// DetectNearby returns the other agents within the proximity threshold.
func (s *Simulation) DetectNearby(a *agents.Agent) []*agents.Agent {
	return DetectProximity(a, s.Agents, s.ProximityThreshold)
}

// GenerateConversation asks the decider for a conversation between a and b.
func (s *Simulation) GenerateConversation(ctx context.Context, a, b *agents.Agent) cognition.Conversation {
	return s.Decider.Converse(ctx, s.View(), a, b)
}

// socialStep pairs each agent with its first co-located peer not already
// engaged this tick. Every agent joins at most one conversation.
func (s *Simulation) socialStep(ctx context.Context) []ConversationRecord {
	engaged := make(map[agents.AgentID]bool, len(s.Agents))
	var out []ConversationRecord

	for _, a := range s.Agents {
		if engaged[a.ID] {
			continue
		}
		var peer *agents.Agent
		for _, o := range s.DetectCoLocated(a) {
			if !engaged[o.ID] {
				peer = o
				break
			}
		}
		if peer == nil {
			continue
		}
		engaged[a.ID], engaged[peer.ID] = true, true

		conv := s.GenerateConversation(ctx, a, peer)
		s.applyConversation(a, peer, conv)
		out = append(out, ConversationRecord{A: a.ID, B: peer.ID, Location: a.CurrentLocation, Conversation: conv})
	}
	return out
}

// applyConversation updates both affinities by the same delta and records
// the chat in both memories.
func (s *Simulation) applyConversation(a, b *agents.Agent, conv cognition.Conversation) {
	a.UpdateRelationship(b.ID, conv.RelationshipChange)
	b.UpdateRelationship(a.ID, conv.RelationshipChange)

	var meta map[string]string
	if conv.Topic != "" {
		meta = map[string]string{"topic": conv.Topic}
	}
	s.remember(a, agents.EventChat, conv.Dialogue, a.CurrentLocation, b.ID, meta)
	s.remember(b, agents.EventChat, conv.Dialogue, a.CurrentLocation, a.ID, meta)

	s.metrics.RecordConversation()
	s.EmitEvent(Event{
		Category:    CategoryChat,
		Agent:       a.ID,
		Location:    a.CurrentLocation,
		Description: fmt.Sprintf("%s and %s talked about %s: %s", a.Name, b.Name, conv.Topic, conv.Dialogue),
	})
}
