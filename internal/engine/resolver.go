package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/cognition"
	"github.com/talgya/mini-market/internal/economy"
	"github.com/talgya/mini-market/internal/world"
)

// Resolution failures. Purchase failures come from the economy package.
var (
	ErrUnknownLocation    = errors.New("unknown location")
	ErrEmptyInventory     = errors.New("nothing to eat")
	ErrNotAtWork          = errors.New("not at work")
	ErrIncompleteDecision = errors.New("incomplete decision")
)

// Wage is paid for every hour worked.
const Wage = 50.0

// Outcome is the result of resolving one decision.
type Outcome struct {
	AgentID agents.AgentID       `json:"agent_id"`
	Action  cognition.ActionKind `json:"action"`
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Err     error                `json:"-"`
}

// Resolve validates a decision against the world and applies it. Unknown
// names are matched by substring before giving up. A failed decision leaves
// the world untouched.
func (s *Simulation) Resolve(a *agents.Agent, d cognition.Decision) Outcome {
	if d == nil {
		d = cognition.DefaultDecision("no decision")
	}

	var (
		msg string
		err error
	)
	switch v := d.(type) {
	case cognition.Buy:
		msg, err = s.resolveBuy(a, v)
	case cognition.Move:
		msg, err = s.resolveMove(a, v)
	case cognition.Rest:
		msg = s.resolveRest(a, v)
	case cognition.Eat:
		msg, err = s.resolveEat(a)
	case cognition.Work:
		msg, err = s.resolveWork(a)
	case cognition.Chat:
		msg = fmt.Sprintf("%s wants to chat", a.Name)
	default:
		err = fmt.Errorf("%w: unsupported action %q", ErrIncompleteDecision, d.Kind())
	}

	out := Outcome{AgentID: a.ID, Action: d.Kind(), Success: err == nil, Message: msg, Err: err}
	if err != nil {
		out.Message = fmt.Sprintf("%s could not %s: %v", a.Name, d.Kind(), err)
	}

	a.LastAction = cognition.Describe(d)
	a.LastActionTime = s.Clock.Now()

	s.metrics.RecordOutcome(string(out.Action), out.Success)
	cat := CategoryAction
	if !out.Success {
		cat = CategoryRejected
	}
	s.EmitEvent(Event{Category: cat, Agent: a.ID, Location: a.CurrentLocation, Description: out.Message})
	s.logger.Debug("decision resolved",
		"agent", a.Name,
		"decision", cognition.Describe(d),
		"success", out.Success,
		"message", out.Message,
	)
	return out
}

// findLocation resolves a location reference exactly, then by substring.
func (s *Simulation) findLocation(ref string) (*world.Location, error) {
	if loc := s.Places.Get(ref); loc != nil {
		return loc, nil
	}
	if name, ok := ResolveBySubstring(ref, s.Places.Names()); ok {
		return s.Places.Get(name), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, ref)
}

// findProduct resolves a product reference at loc exactly, then by substring.
func findProduct(loc *world.Location, ref string) (string, error) {
	if loc.Product(ref) != nil {
		return ref, nil
	}
	if name, ok := ResolveBySubstring(ref, loc.ProductNames()); ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q at %s", economy.ErrUnknownProduct, ref, loc.Name)
}

func (s *Simulation) resolveBuy(a *agents.Agent, d cognition.Buy) (string, error) {
	if d.Location == "" || d.Product == "" {
		return "", fmt.Errorf("%w: buy needs a location and a product", ErrIncompleteDecision)
	}
	loc, err := s.findLocation(d.Location)
	if err != nil {
		return "", err
	}
	product, err := findProduct(loc, d.Product)
	if err != nil {
		return "", err
	}

	r, err := s.Market.ExecutePurchase(a, loc, product, 1)
	if err != nil {
		return "", err
	}
	s.metrics.RecordSale(loc.Name, r.Paid)

	meta := map[string]string{
		"product": product,
		"paid":    strconv.FormatFloat(r.Paid, 'f', 2, 64),
	}
	if r.Discount > 0 {
		meta["discount"] = strconv.FormatFloat(r.Discount*100, 'f', 0, 64) + "%"
	}
	s.remember(a, agents.EventPurchase, r.String(), loc.Name, "", meta)
	return fmt.Sprintf("%s %s", a.Name, r), nil
}

func (s *Simulation) resolveMove(a *agents.Agent, d cognition.Move) (string, error) {
	if d.Location == "" {
		return "", fmt.Errorf("%w: move needs a location", ErrIncompleteDecision)
	}
	loc, err := s.findLocation(d.Location)
	if err != nil {
		return "", err
	}
	res, err := s.Interaction.Move(a, loc.Coord)
	if err != nil {
		return "", fmt.Errorf("cannot move to %s: %w", loc.Name, err)
	}

	desc := "moved to " + loc.Name
	if res.Full {
		desc = fmt.Sprintf("reached %s but it is full, waiting outside", loc.Name)
	}
	s.remember(a, agents.EventMove, desc, loc.Name, "", nil)
	return fmt.Sprintf("%s %s", a.Name, desc), nil
}

func (s *Simulation) resolveRest(a *agents.Agent, d cognition.Rest) string {
	a.Spend(agents.ActivityRest)
	desc := "rested"
	if d.Invalid {
		desc = "rested (decision invalid: " + d.Note + ")"
	}
	s.remember(a, agents.EventRest, desc, a.CurrentLocation, "", nil)
	return fmt.Sprintf("%s %s (energy: %.1f/100)", a.Name, desc, a.Energy)
}

func (s *Simulation) resolveEat(a *agents.Agent) (string, error) {
	item, ok := a.EatOne()
	if !ok {
		return "", fmt.Errorf("%w: %s has an empty inventory", ErrEmptyInventory, a.Name)
	}
	s.remember(a, agents.EventEat, "ate "+item, a.CurrentLocation, "", map[string]string{"item": item})
	return fmt.Sprintf("%s ate %s (energy: %.1f/100)", a.Name, item, a.Energy), nil
}

func (s *Simulation) resolveWork(a *agents.Agent) (string, error) {
	if !a.AtWork() {
		if a.WorkLocation == "" {
			return "", fmt.Errorf("%w: %s has no workplace", ErrNotAtWork, a.Name)
		}
		return "", fmt.Errorf("%w: %s is not at %s", ErrNotAtWork, a.Name, a.WorkLocation)
	}
	a.Spend(agents.ActivityWork)
	a.Earn(Wage)
	s.remember(a, agents.EventWork, fmt.Sprintf("worked and earned $%.2f", Wage), a.CurrentLocation, "", nil)
	return fmt.Sprintf("%s worked (energy: %.1f/100, money: $%.2f)", a.Name, a.Energy, a.Money), nil
}

// remember appends a memory event stamped with the current time.
func (s *Simulation) remember(a *agents.Agent, t agents.EventType, desc, location string, other agents.AgentID, meta map[string]string) {
	a.Memory.Add(agents.MemoryEvent{
		Time:        s.Clock.Now(),
		Type:        t,
		Description: desc,
		Location:    location,
		OtherAgent:  other,
		Metadata:    meta,
	})
}
