package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/world"
)

func chickenShop() *world.Location {
	loc := world.NewLocation("Chicken Shop", world.Coord{X: 7, Y: 7}, "Restaurant", 8)
	loc.AddProduct("chicken", 12, 80, world.NeedEnergy)
	loc.AddProduct("napkins", 1, 5, "hygiene")
	return loc
}

func lunchClock(hour int) *world.Clock {
	c := world.NewClock(60, hour)
	c.Day = 2
	c.Campaigns = []world.Campaign{{Location: "Chicken Shop", DiscountPercent: 20, DayOfWeek: 2, StartHour: 12, EndHour: 14}}
	return c
}

func TestPrice_CampaignDiscount(t *testing.T) {
	loc := chickenShop()

	outside, err := NewTransactionSystem(lunchClock(11)).Price(loc, "chicken", 1)
	require.NoError(t, err)
	assert.InDelta(t, 12.00, outside, 1e-9)

	inside, err := NewTransactionSystem(lunchClock(12)).Price(loc, "chicken", 1)
	require.NoError(t, err)
	assert.InDelta(t, 9.60, inside, 1e-9)
	assert.InDelta(t, outside*(1-20.0/100), inside, 1e-9)

	_, err = NewTransactionSystem(nil).Price(loc, "pizza", 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestPrice_DiscountRelationHolds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.Float64Range(0, 1000).Draw(rt, "base")
		qty := rapid.IntRange(1, 20).Draw(rt, "qty")
		pct := rapid.Float64Range(0, 100).Draw(rt, "pct")

		loc := world.NewLocation("Shop", world.Coord{}, "Shop", 1)
		loc.AddProduct("item", base, 100, "")
		clock := world.NewClock(60, 10)
		off, _ := NewTransactionSystem(clock).Price(loc, "item", qty)

		clock.Campaigns = []world.Campaign{{Location: "Shop", DiscountPercent: pct, DayOfWeek: 0, StartHour: 0, EndHour: 24}}
		on, _ := NewTransactionSystem(clock).Price(loc, "item", qty)

		want := off * (1 - pct/100)
		if diff := on - want; diff > 1e-6 || diff < -1e-6 {
			rt.Fatalf("discounted price %v, want %v", on, want)
		}
	})
}

func TestValidatePurchase_Reasons(t *testing.T) {
	ts := NewTransactionSystem(lunchClock(9))
	a := agents.NewAgent("a", "Lisa", 0)

	loc := chickenShop()
	loc.AddProduct("wings", 6, 0, "")

	_, err := ts.ValidatePurchase(a, loc, "pizza", 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = ts.ValidatePurchase(a, loc, "wings", 1)
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = ts.ValidatePurchase(a, loc, "chicken", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	a.Money = 11.99
	price, err := ts.ValidatePurchase(a, loc, "chicken", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.InDelta(t, 12.0, price, 1e-9)
}

func TestValidatePurchase_UsesDiscountedPrice(t *testing.T) {
	a := agents.NewAgent("a", "Lisa", 0)
	a.Money = 10

	_, err := NewTransactionSystem(lunchClock(13)).ValidatePurchase(a, chickenShop(), "chicken", 1)
	assert.NoError(t, err, "$9.60 is affordable with $10")

	_, err = NewTransactionSystem(lunchClock(14)).ValidatePurchase(a, chickenShop(), "chicken", 1)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestExecutePurchase_InsufficientFundsChangesNothing(t *testing.T) {
	ts := NewTransactionSystem(world.NewClock(60, 9))
	loc := chickenShop()
	a := agents.NewAgent("a", "Lisa", 0)
	a.Money = 10
	a.Energy = 40

	_, err := ts.ExecutePurchase(a, loc, "chicken", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "insufficient funds")
	assert.Contains(t, err.Error(), "$10.00")
	assert.Contains(t, err.Error(), "$12.00")

	assert.Equal(t, 10.0, a.Money)
	assert.Equal(t, 40.0, a.Energy)
	assert.Zero(t, a.Inventory.Total())
	assert.Equal(t, 80, loc.Product("chicken").Stock)
	assert.Zero(t, loc.TotalSales)
}

func TestExecutePurchase_AppliesAllEffects(t *testing.T) {
	ts := NewTransactionSystem(lunchClock(12))
	loc := chickenShop()
	a := agents.NewAgent("a", "Lisa", 0)
	a.Energy = 40

	r, err := ts.ExecutePurchase(a, loc, "chicken", 2)
	require.NoError(t, err)

	assert.InDelta(t, 19.2, r.Paid, 1e-9)
	assert.InDelta(t, 0.2, r.Discount, 1e-9)
	assert.InDelta(t, 500-19.2, a.Money, 1e-9)
	assert.InDelta(t, 19.2, loc.TotalSales, 1e-9)
	assert.Equal(t, 78, loc.Product("chicken").Stock)
	assert.Equal(t, 2, a.Inventory.Count("chicken"))
	assert.Equal(t, 45.0, a.Energy, "energy products restore energy")
	assert.Equal(t, "bought 2x chicken at Chicken Shop for $19.20", r.String())

	_, err = ts.ExecutePurchase(a, loc, "napkins", 1)
	require.NoError(t, err)
	assert.Equal(t, 45.0, a.Energy, "non-energy products do not")
}

func TestExecutePurchase_AllOrNothing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		loc := world.NewLocation("Shop", world.Coord{}, "Shop", 1)
		loc.AddProduct("item", rapid.Float64Range(0, 50).Draw(rt, "price"), rapid.IntRange(0, 5).Draw(rt, "stock"), "")
		a := agents.NewAgent("a", "A", 0)
		a.Money = rapid.Float64Range(0, 100).Draw(rt, "money")
		qty := rapid.IntRange(0, 6).Draw(rt, "qty")
		product := rapid.SampledFrom([]string{"item", "other"}).Draw(rt, "product")

		money, stock, sales := a.Money, loc.Product("item").Stock, loc.TotalSales
		_, err := NewTransactionSystem(nil).ExecutePurchase(a, loc, product, qty)
		if err != nil {
			if a.Money != money || loc.Product("item").Stock != stock || loc.TotalSales != sales || a.Inventory.Total() != 0 {
				rt.Fatalf("failed purchase mutated state: %v", err)
			}
			return
		}
		if a.Money < 0 || loc.Product("item").Stock != stock-qty || a.Inventory.Count("item") != qty {
			rt.Fatalf("successful purchase left inconsistent state")
		}
	})
}
