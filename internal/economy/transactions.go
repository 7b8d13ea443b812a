// Package economy provides pricing and purchases at town locations.
package economy

import (
	"errors"
	"fmt"

	"github.com/talgya/mini-market/internal/agents"
	"github.com/talgya/mini-market/internal/world"
)

// Purchase failures.
var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidQuantity   = errors.New("invalid quantity")
)

// DiscountSource reports the active discount fraction for a location.
type DiscountSource interface {
	DiscountFor(location string) float64
}

// TransactionSystem prices products and executes purchases.
type TransactionSystem struct {
	discounts DiscountSource
}

// NewTransactionSystem creates a transaction system using the given
// discount source, usually the world clock.
func NewTransactionSystem(discounts DiscountSource) *TransactionSystem {
	return &TransactionSystem{discounts: discounts}
}

// Receipt describes a completed purchase.
type Receipt struct {
	Agent     agents.AgentID `json:"agent"`
	Location  string         `json:"location"`
	Product   string         `json:"product"`
	Quantity  int            `json:"quantity"`
	BasePrice float64        `json:"base_price"`
	Discount  float64        `json:"discount"`
	Paid      float64        `json:"paid"`
}

func (r Receipt) String() string {
	return fmt.Sprintf("bought %dx %s at %s for $%.2f", r.Quantity, r.Product, r.Location, r.Paid)
}

// Discount returns the discount fraction currently applied at the location.
func (ts *TransactionSystem) Discount(loc *world.Location) float64 {
	if ts.discounts == nil {
		return 0
	}
	return ts.discounts.DiscountFor(loc.Name)
}

// Price returns base price × qty × (1 − active discount).
func (ts *TransactionSystem) Price(loc *world.Location, product string, qty int) (float64, error) {
	p := loc.Product(product)
	if p == nil {
		return 0, fmt.Errorf("%w: %q at %s", ErrUnknownProduct, product, loc.Name)
	}
	return p.Price * float64(qty) * (1 - ts.Discount(loc)), nil
}

// ValidatePurchase checks stock, product and funds and returns the price the
// agent would pay.
func (ts *TransactionSystem) ValidatePurchase(a *agents.Agent, loc *world.Location, product string, qty int) (float64, error) {
	if qty < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	price, err := ts.Price(loc, product, qty)
	if err != nil {
		return 0, err
	}
	if !loc.HasStock(product, qty) {
		return 0, fmt.Errorf("%w: %s has no %s left", ErrOutOfStock, loc.Name, product)
	}
	if a.Money < price {
		return price, fmt.Errorf("%w: %s has $%.2f, needs $%.2f", ErrInsufficientFunds, a.Name, a.Money, price)
	}
	return price, nil
}

// ExecutePurchase validates and then applies the purchase. Either every
// effect is applied or none is.
func (ts *TransactionSystem) ExecutePurchase(a *agents.Agent, loc *world.Location, product string, qty int) (Receipt, error) {
	price, err := ts.ValidatePurchase(a, loc, product, qty)
	if err != nil {
		return Receipt{}, err
	}

	p := loc.Product(product)
	if !loc.Sell(product, qty, price) {
		return Receipt{}, fmt.Errorf("%w: %s has no %s left", ErrOutOfStock, loc.Name, product)
	}
	a.SpendMoney(price)
	a.Inventory.Add(product, qty)
	if p.SatisfiesNeed == world.NeedEnergy {
		a.Spend(agents.ActivityEat)
	}

	return Receipt{
		Agent:     a.ID,
		Location:  loc.Name,
		Product:   product,
		Quantity:  qty,
		BasePrice: p.Price,
		Discount:  ts.Discount(loc),
		Paid:      price,
	}, nil
}
