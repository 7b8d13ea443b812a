package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/world"
)

// Movement failures.
var (
	ErrOutOfBounds        = errors.New("target outside the map")
	ErrInsufficientEnergy = errors.New("insufficient energy")
)

// MoveCostPerUnit is the energy an agent must hold per unit of distance to
// be allowed to move. The move itself only charges the flat walk cost.
const MoveCostPerUnit = 5.0

// Interaction applies the spatial rules of the town.
type Interaction struct {
	Map    world.Map
	Places *world.Places
}

// NewInteraction creates the spatial rules for a map and its locations.
func NewInteraction(m world.Map, places *world.Places) *Interaction {
	return &Interaction{Map: m, Places: places}
}

// MoveResult describes a completed move.
type MoveResult struct {
	Required float64         // energy the distance required
	Location *world.Location // location at the target, if any
	Full     bool            // the location was full; the agent waits outside
}

// ValidateMovement returns the energy a move to target requires, or an
// error if the target is off the map or the agent is too tired.
func (in *Interaction) ValidateMovement(a *agents.Agent, target world.Coord) (float64, error) {
	if !in.Map.InBounds(target) {
		return 0, fmt.Errorf("%w: %s is outside %s", ErrOutOfBounds, target, in.Map)
	}
	required := world.Distance(a.Coord, target) * MoveCostPerUnit
	if a.Energy < required {
		return required, fmt.Errorf("%w: %s has %.1f, needs %.1f", ErrInsufficientEnergy, a.Name, a.Energy, required)
	}
	return required, nil
}

// Move walks the agent to target. The agent leaves its current location,
// pays the walk cost and enters the location at target if there is room.
// A full location does not fail the move: the agent is left in transit.
func (in *Interaction) Move(a *agents.Agent, target world.Coord) (MoveResult, error) {
	required, err := in.ValidateMovement(a, target)
	if err != nil {
		return MoveResult{}, err
	}

	if cur := in.Places.Get(a.CurrentLocation); cur != nil {
		cur.Leave(string(a.ID))
	}
	a.CurrentLocation = ""
	a.Coord = target
	a.Spend(agents.ActivityWalk)

	res := MoveResult{Required: required}
	if loc := in.Places.At(target); loc != nil {
		res.Location = loc
		if loc.Enter(string(a.ID)) {
			a.CurrentLocation = loc.Name
		} else {
			res.Full = true
		}
	}
	return res, nil
}

// DetectSameLocation returns the other agents inside the agent's location.
// An agent in transit shares a location with nobody.
func DetectSameLocation(a *agents.Agent, all []*agents.Agent) []*agents.Agent {
	if a.CurrentLocation == "" {
		return nil
	}
	var out []*agents.Agent
	for _, o := range all {
		if o.ID != a.ID && o.CurrentLocation == a.CurrentLocation {
			out = append(out, o)
		}
	}
	return out
}

// DetectProximity returns the other agents within threshold distance.
func DetectProximity(a *agents.Agent, all []*agents.Agent, threshold float64) []*agents.Agent {
	var out []*agents.Agent
	for _, o := range all {
		if o.ID != a.ID && world.Distance(a.Coord, o.Coord) <= threshold {
			out = append(out, o)
		}
	}
	return out
}

// AgentsAt returns the agents inside the named location.
func AgentsAt(location string, all []*agents.Agent) []*agents.Agent {
	var out []*agents.Agent
	for _, a := range all {
		if location != "" && a.CurrentLocation == location {
			out = append(out, a)
		}
	}
	return out
}
