// Simulation ties together the clock, the town and its agents and runs them
// one tick at a time.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/cognition"
	"github.com/talgya/mini-market/internal/config"
	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/metrics"
	"github.com/talgya/mini-market/internal/world"
)

// Decider produces plans, decisions and conversations. Both the
// service-backed Orchestrator and the rule-based Automaton satisfy it.
type Decider interface {
	PlanDaily(ctx context.Context, v cognition.View, list []*agents.Agent) map[agents.AgentID]cognition.DailyPlan
	DecideActions(ctx context.Context, v cognition.View, list []*agents.Agent, items map[agents.AgentID]agents.PlanItem) map[agents.AgentID]cognition.Decision
	Converse(ctx context.Context, v cognition.View, a, b *agents.Agent) cognition.Conversation
}

// Event categories.
const (
	CategoryAction     = "action"
	CategoryRejected   = "rejected"
	CategoryChat       = "chat"
	CategoryCollapse   = "collapse"
	CategoryCampaign   = "campaign"
	CategoryDay        = "day"
	CategoryPlan       = "plan"
	CategoryReflection = "reflection"
)

// Event is a notable occurrence in the town.
type Event struct {
	Tick        uint64          `json:"tick"`
	Time        world.Timestamp `json:"time"`
	Category    string          `json:"category"`
	Agent       agents.AgentID  `json:"agent,omitempty"`
	Location    string          `json:"location,omitempty"`
	Description string          `json:"description"`
}

// Options tunes a Simulation. Start from DefaultOptions.
type Options struct {
	TickMinutes        int
	StartHour          int
	PlanningHour       int
	MemoryMaxEvents    int
	MaxReflections     int
	EventLogMax        int
	ProximityThreshold float64

	Decider Decider // nil = cognition.Automaton
	Metrics *metrics.Collector
	Logger  *slog.Logger

	// OnEvent observes every emitted event, e.g. to journal it.
	OnEvent func(Event)
}

// DefaultOptions returns the standard one-hour-tick settings.
func DefaultOptions() Options {
	return Options{
		TickMinutes:        world.DefaultTickMinutes,
		StartHour:          world.DefaultStartHour,
		PlanningHour:       world.DefaultStartHour,
		MemoryMaxEvents:    agents.DefaultMaxEvents,
		MaxReflections:     agents.DefaultMaxReflections,
		EventLogMax:        100,
		ProximityThreshold: 1.0,
	}
}

// OptionsFromConfig maps the simulation section of a config onto Options.
func OptionsFromConfig(c config.SimulationConfig) Options {
	o := DefaultOptions()
	o.TickMinutes = c.TickMinutes
	o.StartHour = c.StartHour
	o.PlanningHour = c.PlanningHour
	o.MemoryMaxEvents = c.MemoryMaxEvents
	o.MaxReflections = c.MaxReflections
	o.EventLogMax = c.EventLogMax
	o.ProximityThreshold = c.ProximityThreshold
	return o
}

// Simulation holds the complete town state. It is driven from a single
// goroutine; nothing in it is safe for concurrent use.
type Simulation struct {
	Clock       *world.Clock
	Places      *world.Places
	Agents      []*agents.Agent
	AgentIndex  map[agents.AgentID]*agents.Agent
	Interaction *Interaction
	Market      *economy.TransactionSystem
	Decider     Decider

	Events   []Event // bounded, oldest first
	LastTick uint64

	PlanningHour       int
	ProximityThreshold float64

	metrics     *metrics.Collector
	logger      *slog.Logger
	onEvent     func(Event)
	eventLogMax int
	tickMinutes int

	campaignActive []bool
	collapsed      []agents.AgentID // during the last AdvanceTick
}

// NewSimulation builds a town from a scenario. Agents start at their home
// location.
func NewSimulation(sc *config.Scenario, opts Options) (*Simulation, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	clock := world.NewClock(opts.TickMinutes, opts.StartHour)
	clock.Campaigns = append([]world.Campaign(nil), sc.Marketing...)

	places := world.NewPlaces()
	for _, ls := range sc.Locations {
		loc := world.NewLocation(ls.Name, world.Coord{X: ls.X, Y: ls.Y}, ls.Type, ls.Capacity)
		for _, ps := range ls.Products {
			stock := config.DefaultStock
			if ps.Stock != nil {
				stock = *ps.Stock
			}
			loc.AddProduct(ps.Name, ps.Price, stock, ps.SatisfiesNeed)
		}
		places.Add(loc)
	}

	sim := &Simulation{
		Clock:              clock,
		Places:             places,
		AgentIndex:         make(map[agents.AgentID]*agents.Agent, len(sc.Agents)),
		Interaction:        NewInteraction(world.NewMap(sc.World.Width, sc.World.Height), places),
		Market:             economy.NewTransactionSystem(clock),
		Decider:            opts.Decider,
		PlanningHour:       opts.PlanningHour,
		ProximityThreshold: opts.ProximityThreshold,
		metrics:            opts.Metrics,
		logger:             opts.Logger,
		onEvent:            opts.OnEvent,
		eventLogMax:        opts.EventLogMax,
		tickMinutes:        clock.TickMinutes,
		campaignActive:     make([]bool, len(clock.Campaigns)),
	}
	if sim.Decider == nil {
		sim.Decider = cognition.Automaton{}
	}
	if sim.logger == nil {
		sim.logger = slog.Default()
	}
	if sim.eventLogMax <= 0 {
		sim.eventLogMax = 100
	}

	for _, spec := range sc.Agents {
		a := agents.NewAgent(agents.AgentID(spec.ID), spec.Name, opts.MemoryMaxEvents)
		if opts.MaxReflections > 0 {
			a.Memory.MaxReflections = opts.MaxReflections
		}
		a.Age = spec.Age
		a.Profession = spec.Profession
		a.Traits = append([]string(nil), spec.Traits...)
		if spec.Money != nil {
			a.Money = *spec.Money
		}
		if spec.Energy != nil {
			a.Energy = *spec.Energy
		}
		a.HomeLocation = spec.Home
		a.WorkLocation = spec.Work

		home := places.Get(a.HomeLocation)
		a.Coord = home.Coord
		if home.Enter(string(a.ID)) {
			a.CurrentLocation = home.Name
		}

		sim.Agents = append(sim.Agents, a)
		sim.AgentIndex[a.ID] = a
	}
	return sim, nil
}

// Agent returns the agent with the given id, or nil.
func (s *Simulation) Agent(id agents.AgentID) *agents.Agent {
	return s.AgentIndex[id]
}

// EmitEvent stamps the event with the current tick and time, appends it to
// the bounded event log and notifies the observer.
func (s *Simulation) EmitEvent(e Event) {
	e.Tick = s.LastTick
	e.Time = s.Clock.Now()

	s.Events = append(s.Events, e)
	if over := len(s.Events) - s.eventLogMax; over > 0 {
		s.Events = append([]Event(nil), s.Events[over:]...)
	}
	if s.onEvent != nil {
		s.onEvent(e)
	}
}

// RecentEvents returns the last n events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	if n <= 0 {
		return nil
	}
	if n > len(s.Events) {
		n = len(s.Events)
	}
	out := make([]Event, n)
	copy(out, s.Events[len(s.Events)-n:])
	return out
}

// View snapshots the world for prompt building, including who shares each
// agent's location.
func (s *Simulation) View() cognition.View {
	v := cognition.NewView(s.Clock, s.Places)
	v.Nearby = make(map[agents.AgentID][]string, len(s.Agents))
	for _, a := range s.Agents {
		for _, o := range DetectSameLocation(a, s.Agents) {
			v.Nearby[a.ID] = append(v.Nearby[a.ID], o.Name)
		}
	}
	return v
}

// Summary aggregates the state of the town.
type Summary struct {
	Tick         uint64             `json:"tick"`
	Time         string             `json:"time"`
	Agents       int                `json:"agents"`
	AvgEnergy    float64            `json:"avg_energy"`
	TotalMoney   float64            `json:"total_money"`
	InTransit    int                `json:"in_transit"`
	LowEnergy    int                `json:"low_energy"`
	Sales        map[string]float64 `json:"sales"`
	TotalSales   float64            `json:"total_sales"`
	TopLocation  string             `json:"top_location,omitempty"`
	Campaigns    int                `json:"active_campaigns"`
	EventsLogged int                `json:"events_logged"`
}

// lowEnergyMark counts agents in the Summary's LowEnergy bucket.
const lowEnergyMark = 20.0

// Summary returns aggregate statistics for logging.
func (s *Simulation) Summary() Summary {
	sum := Summary{
		Tick:         s.LastTick,
		Time:         s.Clock.Now().String(),
		Agents:       len(s.Agents),
		Sales:        make(map[string]float64, s.Places.Len()),
		Campaigns:    len(s.Clock.ActiveCampaigns()),
		EventsLogged: len(s.Events),
	}
	for _, a := range s.Agents {
		sum.AvgEnergy += a.Energy
		sum.TotalMoney += a.Money
		if a.CurrentLocation == "" {
			sum.InTransit++
		}
		if a.Energy < lowEnergyMark {
			sum.LowEnergy++
		}
	}
	if len(s.Agents) > 0 {
		sum.AvgEnergy /= float64(len(s.Agents))
	}

	names := s.Places.Names()
	sort.Strings(names)
	best := 0.0
	for _, name := range names {
		loc := s.Places.Get(name)
		if len(loc.Products) == 0 {
			continue
		}
		sum.Sales[name] = loc.TotalSales
		sum.TotalSales += loc.TotalSales
		if loc.TotalSales > best {
			best, sum.TopLocation = loc.TotalSales, name
		}
	}
	return sum
}

func (sum Summary) String() string {
	return fmt.Sprintf("%s: %d agents, avg energy %.1f, $%.2f held, $%.2f sales", sum.Time, sum.Agents, sum.AvgEnergy, sum.TotalMoney, sum.TotalSales)
}
