package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/cognition"
	"github.com/talgya/mini-market/internal/economy"
)

func TestResolveBuyWithInsufficientFunds(t *testing.T) {
	sim := newTown(t, &scripted{})
	lisa := sim.Agent("agent_3")
	lisa.Money = 10
	shop := sim.Places.Get("Chicken Shop")

	out := sim.Resolve(lisa, cognition.Buy{Location: "Chicken Shop", Product: "chicken"})

	assert.False(t, out.Success)
	assert.ErrorIs(t, out.Err, economy.ErrInsufficientFunds)
	assert.Contains(t, out.Message, "needs $12.00")
	assert.Equal(t, 10.0, lisa.Money)
	assert.Equal(t, 80, shop.Product("chicken").Stock)
	assert.Zero(t, shop.TotalSales)
	assert.Zero(t, lisa.Inventory.Len())
	assert.Empty(t, memoryOfType(lisa, agents.EventPurchase))

	last := sim.RecentEvents(1)
	require.Len(t, last, 1)
	assert.Equal(t, CategoryRejected, last[0].Category)
}

func TestResolveBuyMatchesNamesBySubstring(t *testing.T) {
	sim := newTown(t, &scripted{})
	lisa := sim.Agent("agent_3")
	shop := sim.Places.Get("Chicken Shop")

	out := sim.Resolve(lisa, cognition.Buy{Location: "chicken shop", Product: "Chicken"})

	require.True(t, out.Success, out.Message)
	assert.Equal(t, cognition.ActionBuy, out.Action)
	assert.Equal(t, 288.0, lisa.Money)
	assert.Equal(t, 1, lisa.Inventory.Count("chicken"))
	assert.Equal(t, 79, shop.Product("chicken").Stock)
	assert.Equal(t, 12.0, shop.TotalSales)

	buys := memoryOfType(lisa, agents.EventPurchase)
	require.Len(t, buys, 1)
	assert.Equal(t, "Chicken Shop", buys[0].Location)
	assert.Equal(t, "chicken", buys[0].Metadata["product"])
}

func TestResolveBuyDuringCampaign(t *testing.T) {
	sim := newTown(t, &scripted{})
	sim.Clock.Day, sim.Clock.Hour = 2, 12
	david := sim.Agent("agent_2")

	out := sim.Resolve(david, cognition.Buy{Location: "Chicken Shop", Product: "chicken"})

	require.True(t, out.Success, out.Message)
	assert.Contains(t, out.Message, "$9.60")
	assert.InDelta(t, 590.4, david.Money, 1e-9)
	assert.InDelta(t, 9.6, sim.Places.Get("Chicken Shop").TotalSales, 1e-9)
	assert.Equal(t, "20%", memoryOfType(david, agents.EventPurchase)[0].Metadata["discount"])
}

func TestResolveUnknownReferences(t *testing.T) {
	sim := newTown(t, &scripted{})
	a := sim.Agent("agent_1")

	out := sim.Resolve(a, cognition.Buy{Location: "Uknown Place", Product: "chicken"})
	assert.False(t, out.Success)
	assert.ErrorIs(t, out.Err, ErrUnknownLocation)
	assert.Contains(t, out.Message, "Uknown Place")

	out = sim.Resolve(a, cognition.Buy{Location: "Chicken Shop", Product: "sushi"})
	assert.ErrorIs(t, out.Err, economy.ErrUnknownProduct)
	assert.Contains(t, out.Message, "sushi")

	out = sim.Resolve(a, cognition.Move{Location: "Uknown Place"})
	assert.ErrorIs(t, out.Err, ErrUnknownLocation)
	assert.Equal(t, "home", a.CurrentLocation)
	assert.Equal(t, 100.0, a.Energy)
}

func TestResolveIncompleteDecisions(t *testing.T) {
	sim := newTown(t, &scripted{})
	a := sim.Agent("agent_1")

	for _, d := range []cognition.Decision{
		cognition.Buy{Location: "Chicken Shop"},
		cognition.Buy{Product: "chicken"},
		cognition.Move{},
	} {
		out := sim.Resolve(a, d)
		assert.False(t, out.Success)
		assert.ErrorIs(t, out.Err, ErrIncompleteDecision)
	}
}

func TestResolveMove(t *testing.T) {
	sim := newTown(t, &scripted{})
	a := sim.Agent("agent_1")

	out := sim.Resolve(a, cognition.Move{Location: "Grocery"})

	require.True(t, out.Success, out.Message)
	assert.Equal(t, "Grocery Store", a.CurrentLocation)
	assert.Equal(t, sim.Places.Get("Grocery Store").Coord, a.Coord)
	assert.Equal(t, 95.0, a.Energy)
	moves := memoryOfType(a, agents.EventMove)
	require.Len(t, moves, 1)
	assert.Equal(t, "Grocery Store", moves[0].Location)
}

func TestResolveMoveTooTired(t *testing.T) {
	sim := newTown(t, &scripted{})
	a := sim.Agent("agent_1")
	a.Energy = 30 // Chicken Shop is ~9.9 away: needs 49.5

	out := sim.Resolve(a, cognition.Move{Location: "Chicken Shop"})

	assert.ErrorIs(t, out.Err, ErrInsufficientEnergy)
	assert.Equal(t, "home", a.CurrentLocation)
	assert.Equal(t, 30.0, a.Energy)
}

func TestResolveMoveIntoFullLocation(t *testing.T) {
	sim := newTown(t, &scripted{})
	shop := sim.Places.Get("Chicken Shop")
	for i := 0; shop.CanEnter(); i++ {
		require.True(t, shop.Enter(string(rune('a'+i))))
	}
	a := sim.Agent("agent_1")

	out := sim.Resolve(a, cognition.Move{Location: "Chicken Shop"})

	require.True(t, out.Success, out.Message)
	assert.Contains(t, out.Message, "full")
	assert.Empty(t, a.CurrentLocation)
	assert.Equal(t, shop.Coord, a.Coord)
	assert.False(t, sim.Places.Get("home").IsOccupant("agent_1"))
}

func TestResolveRest(t *testing.T) {
	sim := newTown(t, &scripted{})
	a := sim.Agent("agent_1")
	a.Energy = 50

	out := sim.Resolve(a, cognition.Rest{})
	assert.True(t, out.Success)
	assert.Equal(t, 60.0, a.Energy)

	out = sim.Resolve(a, cognition.DecodeAction("I think I'll take a nap"))
	assert.True(t, out.Success)
	assert.Contains(t, out.Message, "decision invalid")
	assert.Equal(t, 70.0, a.Energy)
	assert.Len(t, memoryOfType(a, agents.EventRest), 2)
}

func TestResolveNilDecisionRests(t *testing.T) {
	sim := newTown(t, &scripted{})
	a := sim.Agent("agent_1")
	a.Energy = 40

	out := sim.Resolve(a, nil)
	assert.True(t, out.Success)
	assert.Equal(t, cognition.ActionRest, out.Action)
	assert.Equal(t, 50.0, a.Energy)
}

func TestResolveEat(t *testing.T) {
	sim := newTown(t, &scripted{})
	a := sim.Agent("agent_1")

	out := sim.Resolve(a, cognition.Eat{})
	assert.ErrorIs(t, out.Err, ErrEmptyInventory)

	a.Energy, a.GroceryLevel = 50, 95
	a.Inventory.Add("sandwich", 1)
	a.Inventory.Add("coffee", 2)

	out = sim.Resolve(a, cognition.Eat{})
	require.True(t, out.Success, out.Message)
	assert.Contains(t, out.Message, "sandwich")
	assert.Equal(t, 55.0, a.Energy)
	assert.Equal(t, 100.0, a.GroceryLevel)
	assert.Zero(t, a.Inventory.Count("sandwich"))
	assert.Equal(t, 2, a.Inventory.Count("coffee"))
}

func TestResolveWork(t *testing.T) {
	sim := newTown(t, &scripted{})
	maria := sim.Agent("agent_1")

	out := sim.Resolve(maria, cognition.Work{})
	assert.ErrorIs(t, out.Err, ErrNotAtWork)
	assert.Equal(t, 500.0, maria.Money)

	require.True(t, sim.Resolve(maria, cognition.Move{Location: "office"}).Success)
	out = sim.Resolve(maria, cognition.Work{})
	require.True(t, out.Success, out.Message)
	assert.Equal(t, 550.0, maria.Money)
	assert.Equal(t, 85.0, maria.Energy)

	lisa := sim.Agent("agent_3")
	out = sim.Resolve(lisa, cognition.Work{})
	assert.ErrorIs(t, out.Err, ErrNotAtWork)
	assert.Contains(t, out.Message, "no workplace")
}

func TestResolveChatIsAcknowledged(t *testing.T) {
	sim := newTown(t, &scripted{})
	a := sim.Agent("agent_1")

	out := sim.Resolve(a, cognition.Chat{TargetAgent: "David"})
	assert.True(t, out.Success)
	assert.Empty(t, memoryOfType(a, agents.EventChat))
	assert.Equal(t, "chat with David", a.LastAction)
}
