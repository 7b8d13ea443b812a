package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/mini-market/internal/world"
)

//go:embed default_scenario.yaml
var defaultScenarioYAML []byte

// Scenario defaults.
const (
	DefaultWidth        = 10
	DefaultHeight       = 10
	DefaultLocationType = "Shop"
	DefaultStock        = 100
	DefaultHome         = "home"
)

// ErrInvalidScenario wraps every scenario validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario describes the town: its grid, locations, agents and campaigns.
// JSON documents of the same shape load unchanged.
type Scenario struct {
	World     WorldSpec        `yaml:"world" json:"world"`
	Locations []LocationSpec   `yaml:"locations" json:"locations"`
	Agents    []AgentSpec      `yaml:"agents" json:"agents"`
	Marketing []world.Campaign `yaml:"marketing" json:"marketing"`
}

// WorldSpec is the grid size.
type WorldSpec struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// LocationSpec describes one location.
type LocationSpec struct {
	Name     string        `yaml:"name" json:"name"`
	X        int           `yaml:"x" json:"x"`
	Y        int           `yaml:"y" json:"y"`
	Type     string        `yaml:"type,omitempty" json:"type,omitempty"`
	Capacity int           `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	Products []ProductSpec `yaml:"products,omitempty" json:"products,omitempty"`
}

// ProductSpec describes one product on sale.
type ProductSpec struct {
	Name          string  `yaml:"name" json:"name"`
	Price         float64 `yaml:"price" json:"price"`
	Stock         *int    `yaml:"stock,omitempty" json:"stock,omitempty"`
	SatisfiesNeed string  `yaml:"satisfies_need,omitempty" json:"satisfies_need,omitempty"`
}

// AgentSpec describes one agent.
type AgentSpec struct {
	ID         string   `yaml:"id" json:"id"`
	Name       string   `yaml:"name" json:"name"`
	Age        int      `yaml:"age" json:"age"`
	Profession string   `yaml:"profession" json:"profession"`
	Traits     []string `yaml:"traits,omitempty" json:"traits,omitempty"`
	Money      *float64 `yaml:"money,omitempty" json:"money,omitempty"`
	Energy     *float64 `yaml:"energy,omitempty" json:"energy,omitempty"`
	Home       string   `yaml:"home,omitempty" json:"home,omitempty"`
	Work       string   `yaml:"work,omitempty" json:"work,omitempty"`
}

// DefaultScenario returns the built-in starter town.
func DefaultScenario() (*Scenario, error) {
	sc, err := ParseScenario(defaultScenarioYAML)
	if err != nil {
		return nil, fmt.Errorf("default scenario: %w", err)
	}
	return sc, nil
}

// LoadScenario reads a YAML or JSON scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario document and applies defaults. It does
// not validate.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	sc.applyDefaults()
	return &sc, nil
}

// Marshal encodes the scenario as YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Scenario) applyDefaults() {
	if s.World.Width == 0 {
		s.World.Width = DefaultWidth
	}
	if s.World.Height == 0 {
		s.World.Height = DefaultHeight
	}
	for i := range s.Locations {
		l := &s.Locations[i]
		if l.Type == "" {
			l.Type = DefaultLocationType
		}
		if l.Capacity == 0 {
			l.Capacity = world.DefaultCapacity
		}
		for j := range l.Products {
			p := &l.Products[j]
			if p.Stock == nil {
				stock := DefaultStock
				p.Stock = &stock
			}
			if p.SatisfiesNeed == "" {
				p.SatisfiesNeed = world.NeedEnergy
			}
		}
	}
	for i := range s.Agents {
		if s.Agents[i].Home == "" {
			s.Agents[i].Home = DefaultHome
		}
	}
}

// Validate checks the scenario for internal consistency.
func (s *Scenario) Validate() error {
	if s.World.Width <= 0 || s.World.Height <= 0 {
		return fmt.Errorf("%w: world size %dx%d", ErrInvalidScenario, s.World.Width, s.World.Height)
	}
	m := world.NewMap(s.World.Width, s.World.Height)

	names := make(map[string]bool, len(s.Locations))
	for _, l := range s.Locations {
		if l.Name == "" {
			return fmt.Errorf("%w: location without a name", ErrInvalidScenario)
		}
		if names[l.Name] {
			return fmt.Errorf("%w: duplicate location %q", ErrInvalidScenario, l.Name)
		}
		names[l.Name] = true
		if !m.InBounds(world.Coord{X: l.X, Y: l.Y}) {
			return fmt.Errorf("%w: location %q at (%d,%d) is outside %s", ErrInvalidScenario, l.Name, l.X, l.Y, m)
		}
		if l.Capacity < 0 {
			return fmt.Errorf("%w: location %q has negative capacity", ErrInvalidScenario, l.Name)
		}
		for _, p := range l.Products {
			if p.Name == "" {
				return fmt.Errorf("%w: product without a name at %q", ErrInvalidScenario, l.Name)
			}
			if p.Price < 0 || (p.Stock != nil && *p.Stock < 0) {
				return fmt.Errorf("%w: product %q at %q has negative price or stock", ErrInvalidScenario, p.Name, l.Name)
			}
		}
	}

	ids := make(map[string]bool, len(s.Agents))
	for _, a := range s.Agents {
		if a.ID == "" {
			return fmt.Errorf("%w: agent %q has no id", ErrInvalidScenario, a.Name)
		}
		if ids[a.ID] {
			return fmt.Errorf("%w: duplicate agent id %q", ErrInvalidScenario, a.ID)
		}
		ids[a.ID] = true
		if !names[a.Home] {
			return fmt.Errorf("%w: agent %q lives at unknown location %q", ErrInvalidScenario, a.ID, a.Home)
		}
		if a.Work != "" && !names[a.Work] {
			return fmt.Errorf("%w: agent %q works at unknown location %q", ErrInvalidScenario, a.ID, a.Work)
		}
		if a.Money != nil && *a.Money < 0 {
			return fmt.Errorf("%w: agent %q has negative money", ErrInvalidScenario, a.ID)
		}
		if a.Energy != nil && (*a.Energy < 0 || *a.Energy > 100) {
			return fmt.Errorf("%w: agent %q energy must be 0-100", ErrInvalidScenario, a.ID)
		}
	}

	for i, c := range s.Marketing {
		switch {
		case !names[c.Location]:
			return fmt.Errorf("%w: campaign %d targets unknown location %q", ErrInvalidScenario, i, c.Location)
		case c.DiscountPercent < 0 || c.DiscountPercent > 100:
			return fmt.Errorf("%w: campaign %d discount must be 0-100", ErrInvalidScenario, i)
		case c.DayOfWeek < 0 || c.DayOfWeek >= world.DaysPerWeek:
			return fmt.Errorf("%w: campaign %d day_of_week must be 0-6", ErrInvalidScenario, i)
		case c.StartHour < 0 || c.EndHour > world.HoursPerDay || c.StartHour > c.EndHour:
			return fmt.Errorf("%w: campaign %d hours must satisfy 0 <= start <= end <= 24", ErrInvalidScenario, i)
		}
	}
	return nil
}
