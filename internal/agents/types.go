// Package agents provides the consumer agent data model, needs and memory.
package agents

import (
	"github.com/talgya/mini-market/internal/world"
)

// AgentID is a unique identifier for an agent.
type AgentID string

// Need bounds.
const (
	MaxEnergy       = 100.0
	MaxGroceryLevel = 100.0
	CollapseEnergy  = 50.0 // energy after a collapse reset

	DefaultEnergy       = 100.0
	DefaultMoney        = 500.0
	DefaultGroceryLevel = 50.0
	DefaultHome         = "home"
)

// PlanItem is one timed intent of a daily plan.
type PlanItem struct {
	Time     string `json:"time"` // HH:MM
	Action   string `json:"action"`
	Location string `json:"location"`
	Product  string `json:"product,omitempty"`
	Purpose  string `json:"purpose"`
}

// Hour returns the HH part of Time, or -1 if it does not parse.
func (p PlanItem) Hour() int {
	if len(p.Time) < 2 {
		return -1
	}
	h := 0
	for _, r := range p.Time[:2] {
		if r < '0' || r > '9' {
			return -1
		}
		h = h*10 + int(r-'0')
	}
	if h > 23 {
		return -1
	}
	return h
}

// Agent is a consumer living in the market town.
type Agent struct {
	ID         AgentID  `json:"id"`
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Profession string   `json:"profession"`
	Traits     []string `json:"traits"`

	// Needs
	Energy       float64    `json:"energy"` // 0–100
	Money        float64    `json:"money"`
	Inventory    *Inventory `json:"inventory"`
	GroceryLevel float64    `json:"grocery_level"` // 0–100

	// Social
	Relationships map[AgentID]float64 `json:"relationships"` // -1.0 to 1.0

	// Position. CurrentLocation is empty while in transit.
	Coord           world.Coord `json:"coord"`
	CurrentLocation string      `json:"current_location"`
	HomeLocation    string      `json:"home_location"`
	WorkLocation    string      `json:"work_location,omitempty"`

	DailyPlan []PlanItem    `json:"daily_plan"`
	Memory    *MemoryStream `json:"-"`

	LastAction     string          `json:"last_action,omitempty"`
	LastActionTime world.Timestamp `json:"last_action_time"`
}

// NewAgent creates an agent with default needs and an empty memory of the
// given size.
func NewAgent(id AgentID, name string, maxMemory int) *Agent {
	return &Agent{
		ID:            id,
		Name:          name,
		Energy:        DefaultEnergy,
		Money:         DefaultMoney,
		GroceryLevel:  DefaultGroceryLevel,
		Inventory:     NewInventory(),
		Relationships: make(map[AgentID]float64),
		HomeLocation:  DefaultHome,
		Memory:        NewMemoryStream(maxMemory),
	}
}

// HasTrait reports whether the agent carries the personality tag.
func (a *Agent) HasTrait(trait string) bool {
	for _, t := range a.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// UpdateRelationship adds change to the affinity toward other, clamped to [-1,1].
func (a *Agent) UpdateRelationship(other AgentID, change float64) {
	a.Relationships[other] = clamp(a.Relationships[other]+change, -1, 1)
}

// Affinity returns the affinity toward other, 0 if unknown.
func (a *Agent) Affinity(other AgentID) float64 {
	return a.Relationships[other]
}

// SpendMoney deducts amount if the agent can afford it.
func (a *Agent) SpendMoney(amount float64) bool {
	if amount < 0 || a.Money < amount {
		return false
	}
	a.Money -= amount
	return true
}

// Earn credits money.
func (a *Agent) Earn(amount float64) {
	if amount > 0 {
		a.Money += amount
	}
}

// IsCollapsed returns true when energy has run out.
func (a *Agent) IsCollapsed() bool {
	return a.Energy <= 0
}

// AtWork reports whether the agent has a workplace and is inside it.
func (a *Agent) AtWork() bool {
	return a.WorkLocation != "" && a.CurrentLocation == a.WorkLocation
}

// Snapshot is a compact view of an agent's needs for prompts and logs.
type Snapshot struct {
	Energy         float64     `json:"energy"`
	Money          float64     `json:"money"`
	GroceryLevel   float64     `json:"grocery_level"`
	Location       string      `json:"location"`
	Coord          world.Coord `json:"coord"`
	InventoryCount int         `json:"inventory_count"`
}

// Snapshot returns the agent's current needs.
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		Energy:         a.Energy,
		Money:          a.Money,
		GroceryLevel:   a.GroceryLevel,
		Location:       a.CurrentLocation,
		Coord:          a.Coord,
		InventoryCount: a.Inventory.Total(),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
