package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talgya/mini-market/internal/world"
)

// Memory limits.
const (
	DefaultMaxEvents      = 100
	DefaultMaxReflections = 10
	contextEvents         = 10
)

// EventType classifies a memory event.
type EventType string

const (
	EventPurchase EventType = "Purchase"
	EventMove     EventType = "Move"
	EventRest     EventType = "Rest"
	EventEat      EventType = "Eat"
	EventWork     EventType = "Work"
	EventChat     EventType = "Chat"
	EventCollapse EventType = "Collapse"
)

// MemoryEvent records one thing that happened to an agent.
type MemoryEvent struct {
	Time        world.Timestamp   `json:"time"`
	Type        EventType         `json:"type"`
	Description string            `json:"description"`
	Location    string            `json:"location,omitempty"`
	OtherAgent  AgentID           `json:"other_agent,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Reflection summarizes a period of an agent's life.
type Reflection struct {
	Time     world.Timestamp `json:"time"`
	Summary  string          `json:"summary"`
	Insights []string        `json:"insights"`
	Habits   []string        `json:"habits"`
}

// MemoryStream is a bounded log of events plus periodic reflections.
// The oldest event is evicted first once MaxEvents is reached.
type MemoryStream struct {
	MaxEvents      int
	MaxReflections int

	events      []MemoryEvent
	reflections []Reflection
}

// NewMemoryStream creates a stream holding at most maxEvents events.
func NewMemoryStream(maxEvents int) *MemoryStream {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &MemoryStream{MaxEvents: maxEvents, MaxReflections: DefaultMaxReflections}
}

// Add appends an event, evicting the oldest events beyond MaxEvents.
func (m *MemoryStream) Add(e MemoryEvent) {
	m.events = append(m.events, e)
	if over := len(m.events) - m.MaxEvents; over > 0 {
		copy(m.events, m.events[over:])
		m.events = m.events[:m.MaxEvents]
	}
}

// Len returns the number of stored events.
func (m *MemoryStream) Len() int {
	return len(m.events)
}

// Events returns a copy of all stored events, oldest first.
func (m *MemoryStream) Events() []MemoryEvent {
	return m.Recent(len(m.events))
}

// Recent returns the last n events, oldest first.
func (m *MemoryStream) Recent(n int) []MemoryEvent {
	return lastN(m.events, n)
}

// ByType returns the last limit events of the given type.
func (m *MemoryStream) ByType(t EventType, limit int) []MemoryEvent {
	return m.filter(limit, func(e MemoryEvent) bool { return e.Type == t })
}

// AtLocation returns the last limit events that happened at location.
func (m *MemoryStream) AtLocation(location string, limit int) []MemoryEvent {
	return m.filter(limit, func(e MemoryEvent) bool { return e.Location == location })
}

// Purchases returns the last limit purchase events.
func (m *MemoryStream) Purchases(limit int) []MemoryEvent {
	return m.ByType(EventPurchase, limit)
}

// Conversations returns the last limit chats, only those with other when it
// is non-empty.
func (m *MemoryStream) Conversations(other AgentID, limit int) []MemoryEvent {
	return m.filter(limit, func(e MemoryEvent) bool {
		return e.Type == EventChat && (other == "" || e.OtherAgent == other)
	})
}

func (m *MemoryStream) filter(limit int, keep func(MemoryEvent) bool) []MemoryEvent {
	var out []MemoryEvent
	for _, e := range m.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return lastN(out, limit)
}

// AddReflection stores a reflection, keeping at most MaxReflections.
func (m *MemoryStream) AddReflection(r Reflection) {
	m.reflections = append(m.reflections, r)
	if over := len(m.reflections) - m.MaxReflections; over > 0 && m.MaxReflections > 0 {
		m.reflections = append([]Reflection(nil), m.reflections[over:]...)
	}
}

// Reflections returns all stored reflections, oldest first.
func (m *MemoryStream) Reflections() []Reflection {
	return lastN(m.reflections, len(m.reflections))
}

// LatestReflection returns the most recent reflection.
func (m *MemoryStream) LatestReflection() (Reflection, bool) {
	if len(m.reflections) == 0 {
		return Reflection{}, false
	}
	return m.reflections[len(m.reflections)-1], true
}

// Reflect derives a reflection from the stored events: counts per type and
// the places the agent keeps coming back to. Returns false with no events.
func (m *MemoryStream) Reflect(now world.Timestamp) (Reflection, bool) {
	if len(m.events) == 0 {
		return Reflection{}, false
	}

	counts := make(map[EventType]int)
	shops := make(map[string]int)
	for _, e := range m.events {
		counts[e.Type]++
		if e.Type == EventPurchase && e.Location != "" {
			shops[e.Location]++
		}
	}

	types := make([]string, 0, len(counts))
	for t, n := range counts {
		types = append(types, fmt.Sprintf("%d %s", n, strings.ToLower(string(t))))
	}
	sort.Strings(types)

	r := Reflection{
		Time:    now,
		Summary: fmt.Sprintf("Lately: %s.", strings.Join(types, ", ")),
	}

	if fav, n := favourite(shops); n >= 2 {
		r.Habits = append(r.Habits, "regular at "+fav)
		r.Insights = append(r.Insights, fmt.Sprintf("bought at %s %d times", fav, n))
	}
	if counts[EventCollapse] > 0 {
		r.Habits = append(r.Habits, "overexerts")
		r.Insights = append(r.Insights, "ran out of energy and had to go home")
	}
	if counts[EventWork] >= 3 {
		r.Habits = append(r.Habits, "hard worker")
	}
	if counts[EventChat] >= 3 {
		r.Habits = append(r.Habits, "sociable")
	}
	return r, true
}

// Context renders the last n events and the latest reflection as prompt text.
func (m *MemoryStream) Context(n int) string {
	if n <= 0 {
		n = contextEvents
	}
	var b strings.Builder
	b.WriteString("Recent memory:\n")
	recent := m.Recent(n)
	if len(recent) == 0 {
		b.WriteString("- nothing yet\n")
	}
	for _, e := range recent {
		fmt.Fprintf(&b, "- Day %d, %s - %s: %s\n", e.Time.Day, e.Time.Clock(), e.Type, e.Description)
	}
	if r, ok := m.LatestReflection(); ok {
		fmt.Fprintf(&b, "\nLatest reflection:\n%s\n", r.Summary)
		if len(r.Habits) > 0 {
			fmt.Fprintf(&b, "Habits: %s\n", strings.Join(r.Habits, ", "))
		}
	}
	return b.String()
}

func favourite(counts map[string]int) (string, int) {
	best, n := "", 0
	for name, c := range counts {
		if c > n || (c == n && name < best) {
			best, n = name, c
		}
	}
	return best, n
}

func lastN[T any](s []T, n int) []T {
	if n <= 0 || len(s) == 0 {
		return nil
	}
	if n > len(s) {
		n = len(s)
	}
	out := make([]T, n)
	copy(out, s[len(s)-n:])
	return out
}
